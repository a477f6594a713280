// Package txpath implements the paced RTP/AES67 transmit path: a single
// dedicated goroutine per stream that pulls float PCM from the host,
// encodes and packetizes it, and sends it on a tight, clock-disciplined
// schedule.
package txpath

import (
	"context"
	"net"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bassaes67/engine/internal/clock"
	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/bassaes67/engine/shared"
)

// spinWindow is how far ahead of the deadline the pacer switches from
// sleeping to a tight spin, trading a little CPU for sub-millisecond
// send-time accuracy.
const spinWindow = time.Millisecond

// PullFunc supplies one frame's worth of interleaved float samples from
// the host and returns how many it wrote. The transmitter silence-pads
// the rest of a short read and counts it as an underrun.
type PullFunc func(buf []float32) (filled int)

// Stats is the atomic counter block exposed to the host/diagnostics.
type Stats struct {
	packetsSent      atomic.Uint64
	underruns        atomic.Uint64
	schedulingMisses atomic.Uint64
}

func (s *Stats) PacketsSent() uint64      { return s.packetsSent.Load() }
func (s *Stats) Underruns() uint64        { return s.underruns.Load() }
func (s *Stats) SchedulingMisses() uint64 { return s.schedulingMisses.Load() }

// Config configures a single transmit stream.
type Config struct {
	SampleRate       int
	Channels         int
	SamplesPerPacket int
}

// Transmitter owns one UDP socket, one codec, and the paced send loop.
type Transmitter struct {
	log     shared.LoggerAdapter
	conn    *net.UDPConn
	dest    *net.UDPAddr
	codec   rtpcodec.Codec
	clk     *clock.Unified
	builder *rtpcodec.Builder
	pull    PullFunc
	cfg     Config

	framePeriod time.Duration

	stats Stats

	cancel context.CancelFunc
	done   chan struct{}
}

// NewTransmitter constructs a transmitter sending to dest over conn.
func NewTransmitter(log shared.LoggerAdapter, conn *net.UDPConn, dest *net.UDPAddr, codec rtpcodec.Codec, clk *clock.Unified, cfg Config, pull PullFunc) *Transmitter {
	framePeriod := time.Duration(cfg.SamplesPerPacket) * time.Second / time.Duration(cfg.SampleRate)
	return &Transmitter{
		log:         log,
		conn:        conn,
		dest:        dest,
		codec:       codec,
		clk:         clk,
		builder:     rtpcodec.NewBuilder(codec.PayloadType()),
		pull:        pull,
		cfg:         cfg,
		framePeriod: framePeriod,
		done:        make(chan struct{}),
	}
}

// Start launches the dedicated transmit goroutine at elevated OS
// scheduling priority where supported.
func (t *Transmitter) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	go t.sendLoop(ctx)
}

// Stop cancels the send loop and blocks until it has exited.
func (t *Transmitter) Stop() {
	if t.cancel != nil {
		t.cancel()
	}
	<-t.done
}

func (t *Transmitter) sendLoop(ctx context.Context) {
	defer close(t.done)

	// Pin the loop to one OS thread so the raised priority stays with it;
	// the thread is never unlocked and exits with the goroutine.
	runtime.LockOSThread()
	if err := elevatePriority(); err != nil {
		t.log.Debug("tx thread priority not elevated")
	}

	pcm := make([]float32, t.cfg.SamplesPerPacket*t.cfg.Channels)
	wire := make([]byte, 0, 1500)

	nextSend := time.Now().Add(t.framePeriod)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		t.pace(ctx, nextSend)

		select {
		case <-ctx.Done():
			return
		default:
		}

		n := t.pull(pcm)
		if n < len(pcm) {
			silence(pcm[n:])
			t.stats.underruns.Add(1)
		}

		wire = wire[:0]
		encoded, err := t.codec.Encode(pcm, wire)
		if err != nil {
			t.log.Error("tx codec encode failed", err)
		} else {
			packet := t.builder.BuildPacket(encoded, uint32(t.cfg.SamplesPerPacket))
			if _, err := t.conn.WriteToUDP(packet, t.dest); err != nil {
				t.log.Error("tx socket send failed", err)
			} else {
				t.stats.packetsSent.Add(1)
			}
		}

		interval := t.framePeriod
		if t.clk != nil {
			interval = t.clk.AdjustInterval(t.framePeriod)
		}
		nextSend = nextSend.Add(interval)

		if behind := time.Since(nextSend); behind > t.framePeriod {
			nextSend = time.Now().Add(t.framePeriod)
			t.stats.schedulingMisses.Add(1)
		}
	}
}

// pace sleeps until shortly before deadline, then spins until the
// deadline is actually reached — a hybrid that avoids both OS scheduler
// jitter near the deadline and needless CPU burn far from it.
func (t *Transmitter) pace(ctx context.Context, deadline time.Time) {
	sleepUntil := deadline.Add(-spinWindow)
	if d := time.Until(sleepUntil); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func silence(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}

func (t *Transmitter) Stats() *Stats { return &t.stats }
