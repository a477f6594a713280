package clock

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassaes67/engine/shared"
)

const (
	lwSampleSetSize     = 28
	lwMicroticksPerFrame = 3072
	lwNsPerMicrotick     = 81.380e-9 // seconds per microtick (81.38 ns)
	lwKp                 = 0.15
	lwKi                 = 0.01
	lwUMax               = 100e-6 // +/-100 ppm in fractional units
	lwLockThresholdPPB   = 50_000.0
	lwLockCount          = 3
	lwUnlockCount        = 5
	lwLargeOffsetBatches = 3
)

// LivewireServo implements the Axia-compatible PI controller: it batches
// 28 wraparound-corrected frame/tick deltas, takes the minimum-magnitude
// delta as its jitter-rejecting filter output, and drives a PI controller
// from the sub-frame remainder.
type LivewireServo struct {
	mu sync.Mutex

	offsetMicroticks int32
	frequencyPPB     float64
	integralSum      int64
	sampleCount      uint64

	locked           bool
	samplesInLock    uint32
	samplesOutOfLock uint32

	samples       [lwSampleSetSize]int32
	currentSample int

	lfOffset      uint8
	lfOffsetCount uint32
}

func NewLivewireServo() *LivewireServo {
	return &LivewireServo{}
}

// Update processes one received clock packet's remote frame/tick against
// the locally captured frame/tick at receipt. Returns true when a batch of
// 28 samples completed and the frequency estimate was updated.
func (s *LivewireServo) Update(remoteFrame uint32, remoteTicks uint16, localFrame uint32, localTicks uint16) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sampleCount++

	rf := int32(remoteFrame & 0xFF)
	rt := int32(remoteTicks)
	lf := int32(localFrame & 0xFF)
	lt := int32(localTicks)

	lf = mod256(lf - int32(s.lfOffset))

	rfval := rf*lwMicroticksPerFrame + rt
	lfval := lf*lwMicroticksPerFrame + lt

	delta := calculateDelta(rfval, lfval)

	s.samples[s.currentSample] = delta
	s.currentSample++

	if s.currentSample >= lwSampleSetSize {
		s.processBatch(rf, lf)
		s.currentSample = 0
		return true
	}
	return false
}

func mod256(v int32) int32 {
	v &= 0xFF
	if v < 0 {
		v += 0x100
	}
	return v
}

// calculateDelta finds the minimum-magnitude interpretation of the
// difference between local and remote combined microtick values, testing
// all four candidate 8-bit-frame wraparound cases.
func calculateDelta(rfval, lfval int32) int32 {
	const bsize = 256 * lwMicroticksPerFrame
	smallest := bsize * 2
	var delta int32

	if test1 := lfval - rfval; test1 >= 0 && test1 < smallest {
		delta = test1
		smallest = test1
	}
	if test2 := lfval + bsize - rfval; test2 >= 0 && test2 < smallest {
		delta = test2
		smallest = test2
	}
	if test3 := rfval - lfval; test3 >= 0 && test3 < smallest {
		smallest = test3
		delta = -test3
	}
	if test4 := rfval + bsize - lfval; test4 >= 0 && test4 < smallest {
		delta = -test4
	}

	return delta
}

func (s *LivewireServo) processBatch(rfLast, lfLast int32) {
	deltaMin := s.samples[0]
	for _, d := range s.samples[1:] {
		if d < deltaMin {
			deltaMin = d
		}
	}

	const lockRange = lwMicroticksPerFrame

	if abs32(deltaMin) > 64*lockRange {
		s.lfOffsetCount++
		if s.lfOffsetCount > lwLargeOffsetBatches {
			s.lfOffsetCount = 0
			if s.lfOffset != 0 {
				s.lfOffset = 0
				s.lfOffsetCount = 2 // speed up the next rotation decision
			} else {
				s.lfOffset = uint8(mod256(lfLast - rfLast))
			}
		}
	} else {
		s.lfOffsetCount = 0
	}

	delta := deltaMin
	if delta < 0 {
		delta += 256 * lwMicroticksPerFrame
	}

	dframe := delta % lockRange
	if dframe > lockRange/2 {
		dframe -= lockRange
	}

	s.offsetMicroticks = dframe
	s.integralSum += int64(dframe)

	ep := float64(dframe) * lwNsPerMicrotick
	ei := float64(s.integralSum) * lwNsPerMicrotick
	u := lwKp*ep + lwKi*ei

	if u > lwUMax {
		u = lwUMax
	} else if u < -lwUMax {
		u = -lwUMax
	}

	s.frequencyPPB = -(u * 1e9)

	if abs64(s.frequencyPPB) < lwLockThresholdPPB {
		s.samplesInLock++
		s.samplesOutOfLock = 0
		if s.samplesInLock >= lwLockCount {
			s.locked = true
		}
	} else {
		s.samplesInLock = 0
		if s.locked {
			s.samplesOutOfLock++
			if s.samplesOutOfLock >= lwUnlockCount {
				s.locked = false
				s.samplesOutOfLock = 0
			}
		}
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func (s *LivewireServo) Sample() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sample{Locked: s.locked, FreqPPB: s.frequencyPPB}
}

func (s *LivewireServo) OffsetNs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(float64(s.offsetMicroticks) * lwNsPerMicrotick * 1e9)
}

func (s *LivewireServo) SampleCount() uint64 {
	return atomic.LoadUint64(&s.sampleCount)
}

// livewirePacket is the Axia clock train payload: a remote frame counter
// and microtick value per packet.
type livewirePacket struct {
	frame  uint32
	ticks  uint16
}

// LivewireClient receives the Axia clock packet train over UDP and drives
// a LivewireServo, capturing the local frame/tick at receipt time.
type LivewireClient struct {
	log  shared.LoggerAdapter
	addr *net.UDPAddr

	servo *LivewireServo

	conn    *net.UDPConn
	running atomic.Bool

	localEpoch time.Time
}

func NewLivewireClient(log shared.LoggerAdapter, addr *net.UDPAddr) *LivewireClient {
	return &LivewireClient{
		log:        log,
		addr:       addr,
		servo:      NewLivewireServo(),
		localEpoch: time.Now(),
	}
}

func (c *LivewireClient) Sample() Sample {
	return c.servo.Sample()
}

func (c *LivewireClient) Running() bool {
	return c.running.Load()
}

func (c *LivewireClient) Start(ctx context.Context) error {
	conn, err := net.ListenUDP("udp4", c.addr)
	if err != nil {
		return err
	}
	c.conn = conn
	c.running.Store(true)

	go c.readLoop(ctx)
	return nil
}

func (c *LivewireClient) Stop() {
	c.running.Store(false)
	if c.conn != nil {
		c.conn.Close()
	}
}

// localFrameTick derives the local frame/tick pair from the monotonic
// elapsed time since the client's epoch, at lwMicroticksPerFrame resolution.
func (c *LivewireClient) localFrameTick() (uint32, uint16) {
	elapsed := time.Since(c.localEpoch)
	totalMicroticks := int64(elapsed.Seconds() / lwNsPerMicrotick)
	frame := uint32(totalMicroticks / lwMicroticksPerFrame)
	ticks := uint16(totalMicroticks % lwMicroticksPerFrame)
	return frame, ticks
}

func (c *LivewireClient) readLoop(ctx context.Context) {
	buf := make([]byte, 64)
	for c.running.Load() {
		c.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}
		if n < 6 {
			continue
		}
		pkt := decodeLivewirePacket(buf[:n])
		localFrame, localTicks := c.localFrameTick()
		if c.servo.Update(pkt.frame, pkt.ticks, localFrame, localTicks) {
			c.log.Debug("livewire batch complete")
		}
	}
}

func decodeLivewirePacket(b []byte) livewirePacket {
	frame := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	ticks := uint16(b[4])<<8 | uint16(b[5])
	return livewirePacket{frame: frame, ticks: ticks}
}
