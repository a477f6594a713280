// Package rxpath implements the jittered RTP receive path: a dedicated
// receiver goroutine that reads datagrams, validates and reorders them
// into a jitter buffer, and a pull-side contract the host's audio
// callback drains concurrently.
package rxpath

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/bassaes67/engine/internal/clock"
	"github.com/bassaes67/engine/internal/jitter"
	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/bassaes67/engine/shared"
)

const (
	maxDatagramBytes = 1500
	recvTimeout      = 100 * time.Millisecond
	ssrcGracePackets = 50
)

// Stats is the atomic counter block exposed to the host/diagnostics.
// Underruns is not counted here: it is the jitter buffer's own state
// machine that distinguishes a true playout starvation from a
// refilling/draining no-play, so Stats.Underruns defers to buf rather
// than re-deriving a second, looser count from Pull's return value.
type Stats struct {
	buf *jitter.Buffer

	packetsReceived atomic.Uint64
	parseErrors     atomic.Uint64
	lateDrops       atomic.Uint64
	duplicates      atomic.Uint64
	streamResets    atomic.Uint64
	overflowPrunes  atomic.Uint64
	ssrcMismatches  atomic.Uint64
}

func (s *Stats) PacketsReceived() uint64 { return s.packetsReceived.Load() }
func (s *Stats) ParseErrors() uint64     { return s.parseErrors.Load() }
func (s *Stats) LateDrops() uint64       { return s.lateDrops.Load() }
func (s *Stats) Duplicates() uint64      { return s.duplicates.Load() }
func (s *Stats) StreamResets() uint64    { return s.streamResets.Load() }
func (s *Stats) Underruns() uint64       { return s.buf.Underruns() }
func (s *Stats) OverflowPrunes() uint64  { return s.overflowPrunes.Load() }
func (s *Stats) SSRCMismatches() uint64  { return s.ssrcMismatches.Load() }

// Config configures a single receive stream.
type Config struct {
	TargetPackets int
	MaxReorder    int
	Channels      int
}

// Receiver owns one UDP socket, one jitter buffer, and the goroutine
// reading from that socket. The host's pull callback (Pull) runs
// concurrently from a separate goroutine and never touches the socket.
type Receiver struct {
	log   shared.LoggerAdapter
	conn  *net.UDPConn
	codec rtpcodec.Codec
	clk   *clock.Unified
	buf   *jitter.Buffer

	samplesPerPacket int

	latchedSSRC  uint32
	haveSSRC     bool
	gracePackets int

	stats Stats

	cancel context.CancelFunc
	done   chan struct{}
}

// NewReceiver constructs a receiver bound to conn, decoding with codec and
// buffering per cfg. clk supplies the ppb used for playout resampling.
func NewReceiver(log shared.LoggerAdapter, conn *net.UDPConn, codec rtpcodec.Codec, clk *clock.Unified, cfg Config) *Receiver {
	buf := jitter.NewBuffer(cfg.TargetPackets, cfg.MaxReorder, cfg.Channels)
	r := &Receiver{
		log:              log,
		conn:             conn,
		codec:            codec,
		clk:              clk,
		buf:              buf,
		samplesPerPacket: codec.FrameSize(),
		gracePackets:     ssrcGracePackets,
		done:             make(chan struct{}),
	}
	r.stats.buf = buf
	return r
}

// Start launches the dedicated receiver goroutine. The loop exits when
// ctx is cancelled or the socket is closed.
func (r *Receiver) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.readLoop(ctx)
}

// Stop cancels the receiver loop and blocks until it has exited.
func (r *Receiver) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
}

func (r *Receiver) readLoop(ctx context.Context) {
	defer close(r.done)

	datagram := make([]byte, maxDatagramBytes)
	pcmScratch := make([]float32, 0, r.samplesPerPacket*r.codec.Channels())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r.conn.SetReadDeadline(time.Now().Add(recvTimeout))
		n, _, err := r.conn.ReadFromUDP(datagram)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			r.log.Error("rx socket read failed", err)
			continue
		}

		r.handleDatagram(datagram[:n], pcmScratch[:0])
	}
}

func (r *Receiver) handleDatagram(data []byte, pcmScratch []float32) {
	pkt, err := rtpcodec.ParsePacket(data)
	if err != nil {
		r.stats.parseErrors.Add(1)
		return
	}

	if !r.haveSSRC {
		r.latchedSSRC = pkt.Header.SSRC
		r.haveSSRC = true
	} else if pkt.Header.SSRC != r.latchedSSRC {
		if r.gracePackets > 0 {
			r.gracePackets--
			r.latchedSSRC = pkt.Header.SSRC
		} else {
			r.stats.ssrcMismatches.Add(1)
			return
		}
	}

	r.stats.packetsReceived.Add(1)

	decoded, err := r.codec.Decode(pkt.Payload, pcmScratch)
	if err != nil {
		r.stats.parseErrors.Add(1)
		return
	}

	reset := r.buf.Put(pkt.Header.Sequence, pkt.Header.Timestamp, decoded)
	if reset {
		r.stats.streamResets.Add(1)
	}

	if pruned := r.buf.OverflowPrunes(); pruned > r.stats.overflowPrunes.Load() {
		r.stats.overflowPrunes.Store(pruned)
	}
	if dup := r.buf.Duplicates(); dup > r.stats.duplicates.Load() {
		r.stats.duplicates.Store(dup)
	}
}

// Pull drains one frame of interleaved float samples into out, applying
// sample-rate correction from the active clock's frequency offset. It is
// the host's sole entry point into the buffer and never touches the
// socket or codec.
func (r *Receiver) Pull(out []float32, samplesPerFrame int) {
	r.buf.Pull(out, samplesPerFrame)

	if r.clk == nil || !r.clk.IsLocked() {
		return
	}

	ppb := r.clk.FrequencyPPB()
	if ppb == 0 {
		return
	}
	applyRateCorrection(out, ppb)
}

// applyRateCorrection nudges sample spacing by 1 + ppb*1e-9 using linear
// interpolation; the correction is always sub-500ppm so a cheap resample
// core is sufficient.
func applyRateCorrection(buf []float32, ppb float64) {
	ratio := 1.0 + ppb*1e-9
	if ratio == 1.0 || len(buf) < 2 {
		return
	}

	n := len(buf)
	tmp := make([]float32, n)
	copy(tmp, buf)

	for i := 0; i < n; i++ {
		srcPos := float64(i) * ratio
		idx := int(srcPos)
		frac := float32(srcPos - float64(idx))
		if idx+1 < n {
			buf[i] = tmp[idx] + (tmp[idx+1]-tmp[idx])*frac
		} else if idx < n {
			buf[i] = tmp[idx]
		}
	}
}

func (r *Receiver) Stats() *Stats { return &r.stats }
