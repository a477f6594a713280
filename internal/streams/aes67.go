package streams

import (
	"context"
	"net"
	"time"

	"github.com/bassaes67/engine/internal/clock"
	"github.com/bassaes67/engine/internal/pluginhost"
	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/bassaes67/engine/internal/rxpath"
	"github.com/bassaes67/engine/internal/txpath"
	"github.com/bassaes67/engine/shared"
)

// defaultMaxReorder mirrors config.DefaultDefaults().MaxReorder; it is
// duplicated here as a plain constant so streams doesn't need to import
// config just to fall back when an opener's MaxReorder field is unset
// (e.g. constructed directly by a test rather than through Register).
const defaultMaxReorder = 32

// AES67Opener builds AES67 (L16/L24 over multicast RTP) receive or
// transmit pipelines from an aes67:// URL, sharing the process's unified
// clock for playout resampling and transmit pacing.
type AES67Opener struct {
	Clock *clock.Unified
	Log   shared.LoggerAdapter
	// MaxReorder bounds how many sequence numbers out-of-order a packet
	// may arrive before the jitter buffer treats it as a stream reset.
	// Zero falls back to config.DefaultDefaults().MaxReorder.
	MaxReorder int
}

func (o *AES67Opener) Scheme() string { return "aes67" }

func (o *AES67Opener) Open(ctx context.Context, rawURL string, pull pluginhost.PullCallback) (pluginhost.Stream, error) {
	u, err := pluginhost.ParseAES67URL(rawURL)
	if err != nil {
		return nil, err
	}

	codec := codecForAES67(u)

	if u.Direction == pluginhost.DirectionSink {
		conn, dest, err := dialUDP(u.MulticastAddr, int(u.Port))
		if err != nil {
			return nil, err
		}
		tx := txpath.NewTransmitter(o.Log, conn, dest, codec, o.Clock, txpath.Config{
			SampleRate:       int(u.SampleRate),
			Channels:         int(u.Channels),
			SamplesPerPacket: codec.FrameSize(),
		}, txpath.PullFunc(pull))
		return &rtpStream{url: rawURL, tx: tx, conn: conn}, nil
	}

	conn, err := listenUDP(u.MulticastAddr, int(u.Port), u.Interface)
	if err != nil {
		return nil, err
	}
	target := int(u.JitterMs) / 20
	if target < 1 {
		target = 1
	}
	rx := rxpath.NewReceiver(o.Log, conn, codec, o.Clock, rxpath.Config{
		TargetPackets: target,
		MaxReorder:    o.maxReorder(),
		Channels:      int(u.Channels),
	})
	framePeriod := time.Duration(codec.FrameSize()) * time.Second / time.Duration(u.SampleRate)
	return &rtpStream{
		url: rawURL, rx: rx, pull: pull, conn: conn, clk: o.Clock,
		channels: int(u.Channels), samplesPerFrame: codec.FrameSize(), framePeriod: framePeriod,
	}, nil
}

func (o *AES67Opener) maxReorder() int {
	if o.MaxReorder > 0 {
		return o.MaxReorder
	}
	return defaultMaxReorder
}

func codecForAES67(u pluginhost.AES67URL) rtpcodec.Codec {
	switch rtpcodec.CodecFromPT(u.PayloadType) {
	case rtpcodec.CodecPCM24:
		return rtpcodec.NewPCM24Codec(int(u.SampleRate/50), int(u.Channels), u.PayloadType)
	default:
		return rtpcodec.NewPCM16Codec(int(u.SampleRate/50), int(u.Channels), u.PayloadType)
	}
}

// rtpStream wraps whichever of {rxpath.Receiver, txpath.Transmitter} a
// URL's direction selected, presenting the single pluginhost.Stream
// contract regardless of which one is live. Shared by AES67Opener and
// RTPOpener since both ride the same RTP framing underneath.
type rtpStream struct {
	url  string
	conn *net.UDPConn
	rx   *rxpath.Receiver
	tx   *txpath.Transmitter
	pull pluginhost.PullCallback
	clk  *clock.Unified

	channels        int
	samplesPerFrame int
	framePeriod     time.Duration
}

func (s *rtpStream) Start(ctx context.Context) error {
	if s.tx != nil {
		s.tx.Start(ctx)
		return nil
	}
	s.rx.Start(ctx)
	go s.pumpRX(ctx)
	return nil
}

// pumpRX drains the receiver's jitter buffer into the host's pull
// callback at the codec's native frame cadence. Direction is inverted
// from Transmitter: here the plugin pushes decoded samples to the host
// rather than the host pulling them, so the callback's buffer is filled
// and handed off eagerly rather than lazily.
func (s *rtpStream) pumpRX(ctx context.Context) {
	frame := make([]float32, s.samplesPerFrame*s.channels)

	interval := s.pacedInterval()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.rx.Pull(frame, s.samplesPerFrame)
		s.pull(frame)
		timer.Reset(s.pacedInterval())
	}
}

// pacedInterval folds the unified clock's ppm estimate into framePeriod,
// the same correction the TX path's pacer applies to its own cadence.
func (s *rtpStream) pacedInterval() time.Duration {
	if s.clk == nil {
		return s.framePeriod
	}
	return s.clk.AdjustInterval(s.framePeriod)
}

func (s *rtpStream) Close() error {
	if s.tx != nil {
		s.tx.Stop()
	}
	if s.rx != nil {
		s.rx.Stop()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *rtpStream) URL() string { return s.url }

var _ pluginhost.Stream = (*rtpStream)(nil)
