package clock

import (
	"context"
	"encoding/binary"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bassaes67/engine/shared"
)

// PTPState is the PTP client's connection state machine.
type PTPState int32

const (
	PTPDisabled PTPState = iota
	PTPListening
	PTPUncalibrated
	PTPSlave
)

func (s PTPState) String() string {
	switch s {
	case PTPDisabled:
		return "DISABLED"
	case PTPListening:
		return "LISTENING"
	case PTPUncalibrated:
		return "UNCALIBRATED"
	case PTPSlave:
		return "SLAVE"
	default:
		return "UNKNOWN"
	}
}

const (
	ptpEventPort   = 319
	ptpGeneralPort = 320

	ptpHistoryLen    = 32
	ptpMinHistory    = 8
	ptpEWMAAlpha     = 0.1
	ptpLockThreshold = 50_000.0 // ppb, 50 ppm
	ptpClampPPB      = 500_000.0
	ptpLockCount     = 3
	ptpUnlockCount   = 5

	// Absence of Announce for this long reverts LISTENING and drops lock.
	ptpAnnounceTimeout = 4 * time.Second
)

// ptpSample is a (t_elapsed_ns, offset_ns) regression point.
type ptpSample struct {
	tNs int64
	yNs int64
}

// PtpServo is a drift-rate estimator: it does not discipline a wall clock,
// it estimates the slope of offset versus elapsed time via ordinary least
// squares over a sliding window, then low-pass filters that slope.
type PtpServo struct {
	mu sync.Mutex

	offsetNs        int64
	meanPathDelayNs int64
	sampleCount     uint64

	locked           bool
	samplesInLock    uint32
	samplesOutOfLock uint32

	startTime time.Time

	history      [ptpHistoryLen]ptpSample
	historyPos   int
	historyCount int

	filteredDriftPPB float64
	frequencyPPB     float64
}

// NewPtpServo constructs a servo with its elapsed-time clock zeroed now.
func NewPtpServo() *PtpServo {
	return &PtpServo{startTime: time.Now()}
}

// Update feeds a new offset/path-delay measurement and recomputes the
// frequency estimate in place, mirroring the original drift-rate servo:
// 32-sample ring, >=8 samples before regressing, alpha=0.1 EWMA, clamped to
// +/-500000 ppb, with 3-good/5-bad lock hysteresis at a 50ppm threshold.
func (p *PtpServo) Update(offsetNs, pathDelayNs int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sampleCount++
	p.offsetNs = offsetNs
	p.meanPathDelayNs = pathDelayNs

	nowNs := time.Since(p.startTime).Nanoseconds()

	p.history[p.historyPos] = ptpSample{tNs: nowNs, yNs: offsetNs}
	p.historyPos = (p.historyPos + 1) % ptpHistoryLen
	if p.historyCount < ptpHistoryLen {
		p.historyCount++
	}

	if p.historyCount >= ptpMinHistory {
		driftPPB := p.regressionSlope()
		p.filteredDriftPPB = ptpEWMAAlpha*driftPPB + (1-ptpEWMAAlpha)*p.filteredDriftPPB
		p.frequencyPPB = -p.filteredDriftPPB
	}

	if p.frequencyPPB > ptpClampPPB {
		p.frequencyPPB = ptpClampPPB
	} else if p.frequencyPPB < -ptpClampPPB {
		p.frequencyPPB = -ptpClampPPB
	}

	if abs64(p.filteredDriftPPB) < ptpLockThreshold {
		p.samplesInLock++
		p.samplesOutOfLock = 0
		if p.samplesInLock >= ptpLockCount {
			p.locked = true
		}
	} else {
		p.samplesInLock = 0
		if p.locked {
			p.samplesOutOfLock++
			if p.samplesOutOfLock >= ptpUnlockCount {
				p.locked = false
				p.samplesOutOfLock = 0
			}
		}
	}
}

// regressionSlope computes the OLS slope of offset (ns) against elapsed
// time (s) over the valid ring-buffer window; the slope is in ns/s = ppb.
func (p *PtpServo) regressionSlope() float64 {
	if p.historyCount < 2 {
		return 0
	}

	var sumT, sumY, sumTT, sumTY float64
	n := float64(p.historyCount)

	for i := 0; i < p.historyCount; i++ {
		idx := (p.historyPos + ptpHistoryLen - p.historyCount + i) % ptpHistoryLen
		s := p.history[idx]
		t := float64(s.tNs) / 1e9
		y := float64(s.yNs)

		sumT += t
		sumY += y
		sumTT += t * t
		sumTY += t * y
	}

	denom := n*sumTT - sumT*sumT
	if abs64(denom) < 1e-10 {
		return 0
	}
	return (n*sumTY - sumT*sumY) / denom
}

func (p *PtpServo) Sample() Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Sample{Locked: p.locked, FreqPPB: p.frequencyPPB}
}

func (p *PtpServo) OffsetNs() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offsetNs
}

func (p *PtpServo) MeanPathDelayNs() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.meanPathDelayNs
}

func (p *PtpServo) SampleCount() uint64 {
	return atomic.LoadUint64(&p.sampleCount)
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ptp message types per IEEE 1588v2, low nibble of the first message byte.
const (
	ptpMsgSync     = 0x0
	ptpMsgDelayReq = 0x1
	ptpMsgFollowUp = 0x8
	ptpMsgDelayResp = 0x9
	ptpMsgAnnounce = 0xB
)

// PTPClient listens for PTPv2 traffic on the event/general ports for a
// configured domain and drives a PtpServo. It is the only writer of its
// state field; readers use State().
type PTPClient struct {
	log    shared.LoggerAdapter
	iface  string
	domain uint8

	servo *PtpServo

	state int32 // PTPState, atomic

	eventConn   *net.UDPConn
	generalConn *net.UDPConn

	lastAnnounce atomic.Int64 // unix nano

	running atomic.Bool

	// baseline from the most recent Sync/Follow_Up pair
	mu          sync.Mutex
	syncRecvNs  int64
	haveSync    bool
}

// NewPTPClient constructs a disabled client bound to no sockets yet.
func NewPTPClient(log shared.LoggerAdapter, iface string, domain uint8) *PTPClient {
	return &PTPClient{
		log:    log,
		iface:  iface,
		domain: domain,
		servo:  NewPtpServo(),
	}
}

func (c *PTPClient) State() PTPState {
	return PTPState(atomic.LoadInt32(&c.state))
}

func (c *PTPClient) setState(s PTPState) {
	atomic.StoreInt32(&c.state, int32(s))
}

func (c *PTPClient) Sample() Sample {
	if c.State() != PTPSlave {
		return Sample{Locked: false}
	}
	return c.servo.Sample()
}

func (c *PTPClient) Running() bool {
	return c.running.Load()
}

// Start opens the event/general multicast sockets and runs the listener
// and announce-timeout loops until ctx is canceled.
func (c *PTPClient) Start(ctx context.Context) error {
	eventAddr := &net.UDPAddr{IP: net.IPv4(224, 0, 1, 129), Port: ptpEventPort}
	generalAddr := &net.UDPAddr{IP: net.IPv4(224, 0, 1, 129), Port: ptpGeneralPort}

	var err error
	c.eventConn, err = net.ListenMulticastUDP("udp4", resolveIface(c.iface), eventAddr)
	if err != nil {
		return err
	}
	c.generalConn, err = net.ListenMulticastUDP("udp4", resolveIface(c.iface), generalAddr)
	if err != nil {
		c.eventConn.Close()
		return err
	}

	c.running.Store(true)
	c.setState(PTPListening)

	go c.readLoop(ctx, c.eventConn)
	go c.readLoop(ctx, c.generalConn)
	go c.timeoutLoop(ctx)

	return nil
}

func (c *PTPClient) Stop() {
	c.running.Store(false)
	c.setState(PTPDisabled)
	if c.eventConn != nil {
		c.eventConn.Close()
	}
	if c.generalConn != nil {
		c.generalConn.Close()
	}
}

func resolveIface(name string) *net.Interface {
	if name == "" {
		return nil
	}
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	return ifi
}

func (c *PTPClient) readLoop(ctx context.Context, conn *net.UDPConn) {
	buf := make([]byte, 1500)
	for c.running.Load() {
		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, err := conn.Read(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}
		recvNs := time.Now().UnixNano()
		c.handleMessage(buf[:n], recvNs)
	}
}

func (c *PTPClient) handleMessage(msg []byte, recvNs int64) {
	if len(msg) < 34 {
		return
	}
	msgType := msg[0] & 0x0F
	domain := msg[4]
	if domain != c.domain {
		return
	}

	switch msgType {
	case ptpMsgAnnounce:
		c.lastAnnounce.Store(time.Now().UnixNano())
		if c.State() == PTPListening {
			c.setState(PTPUncalibrated)
			c.log.Info("ptp grandmaster identified")
		}
	case ptpMsgSync:
		c.mu.Lock()
		c.syncRecvNs = recvNs
		c.haveSync = true
		c.mu.Unlock()
	case ptpMsgFollowUp:
		originNs := decodePTPTimestamp(msg[34:])
		c.mu.Lock()
		recv, have := c.syncRecvNs, c.haveSync
		c.haveSync = false
		c.mu.Unlock()
		if !have {
			return
		}
		offset := recv - originNs
		c.servo.Update(offset, c.servo.MeanPathDelayNs())
		if c.State() == PTPUncalibrated {
			c.setState(PTPSlave)
			c.log.Info("ptp servo calibrated, entering slave state")
		}
	case ptpMsgDelayResp:
		// path delay refinement omitted from the drift-rate servo's needs;
		// mean_path_delay_ns stays at its last computed value.
	}
}

// decodePTPTimestamp reads the 10-byte PTPv2 timestamp (48-bit seconds,
// 32-bit nanoseconds) as a single int64 of nanoseconds since epoch.
func decodePTPTimestamp(b []byte) int64 {
	if len(b) < 10 {
		return 0
	}
	seconds := int64(binary.BigEndian.Uint16(b[0:2]))<<32 | int64(binary.BigEndian.Uint32(b[2:6]))
	nanos := int64(binary.BigEndian.Uint32(b[6:10]))
	return seconds*1e9 + nanos
}

func (c *PTPClient) timeoutLoop(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for c.running.Load() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last := c.lastAnnounce.Load()
			if last != 0 && time.Since(time.Unix(0, last)) > ptpAnnounceTimeout {
				if c.State() != PTPListening {
					c.log.Info("ptp announce timeout, reverting to listening")
					c.setState(PTPListening)
				}
			}
		}
	}
}
