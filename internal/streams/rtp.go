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

// RTPOpener builds point-to-point receive or transmit pipelines from an
// rtp:// URL, selecting the wire codec from the URL's codec= parameter
// rather than AES67's payload-type table.
type RTPOpener struct {
	Clock *clock.Unified
	Log   shared.LoggerAdapter
	// MaxReorder bounds how many sequence numbers out-of-order a packet
	// may arrive before the jitter buffer treats it as a stream reset.
	// Zero falls back to config.DefaultDefaults().MaxReorder.
	MaxReorder int
}

func (o *RTPOpener) maxReorder() int {
	if o.MaxReorder > 0 {
		return o.MaxReorder
	}
	return defaultMaxReorder
}

func (o *RTPOpener) Scheme() string { return "rtp" }

func (o *RTPOpener) Open(ctx context.Context, rawURL string, pull pluginhost.PullCallback) (pluginhost.Stream, error) {
	u, err := pluginhost.ParseRTPURL(rawURL)
	if err != nil {
		return nil, err
	}

	codec, err := codecForRTP(u)
	if err != nil {
		return nil, err
	}

	if u.Direction == pluginhost.DirectionSource {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(u.LocalPort)})
		if err != nil {
			return nil, shared.ErrSocketCreate
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
		framePeriod := time.Duration(codec.FrameSize()) * time.Second / 48000
		return &rtpStream{
			url: rawURL, rx: rx, pull: pull, conn: conn, clk: o.Clock,
			channels: int(u.Channels), samplesPerFrame: codec.FrameSize(), framePeriod: framePeriod,
		}, nil
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(u.LocalPort)})
	if err != nil {
		return nil, shared.ErrSocketCreate
	}
	dest := &net.UDPAddr{IP: u.Host, Port: int(u.Port)}
	tx := txpath.NewTransmitter(o.Log, conn, dest, codec, o.Clock, txpath.Config{
		SampleRate:       48000,
		Channels:         int(u.Channels),
		SamplesPerPacket: codec.FrameSize(),
	}, txpath.PullFunc(pull))
	return &rtpStream{url: rawURL, tx: tx, conn: conn}, nil
}

func codecForRTP(u pluginhost.RTPURL) (rtpcodec.Codec, error) {
	pt := u.Codec.DefaultPT()
	channels := int(u.Channels)

	switch u.Codec {
	case rtpcodec.CodecPCM16:
		return rtpcodec.NewPCM16Codec(960, channels, pt), nil
	case rtpcodec.CodecPCM24:
		return rtpcodec.NewPCM24Codec(960, channels, pt), nil
	case rtpcodec.CodecG711Ulaw:
		return rtpcodec.NewG711UlawCodec(pt), nil
	case rtpcodec.CodecG722:
		return rtpcodec.NewG722Codec(pt), nil
	case rtpcodec.CodecOpus:
		return rtpcodec.NewOpusCodec(48000, channels, 20, pt)
	default:
		return nil, shared.ErrUnsupportedCodec
	}
}
