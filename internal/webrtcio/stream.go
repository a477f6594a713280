package webrtcio

import (
	"context"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/bassaes67/engine/internal/pluginhost"
	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/bassaes67/engine/shared"
)

// Stream adapts a PeerSession to the pluginhost.Stream contract: Start
// launches the goroutine that pumps samples between pion's track and the
// host's pull callback, Close tears the session down.
type Stream struct {
	log     shared.LoggerAdapter
	url     string
	session *PeerSession
	codec   rtpcodec.Codec
	pull    pluginhost.PullCallback

	localTrack  *webrtc.TrackLocalStaticSample
	remoteTrack *webrtc.TrackRemote

	cancel context.CancelFunc
	done   chan struct{}
}

// NewPublishStream opens a WHIP publish session: the host's pull
// callback supplies float PCM, which is encoded via codec and written to
// pion as media samples.
func NewPublishStream(log shared.LoggerAdapter, rawURL string, cfg SignalingConfig, codec rtpcodec.Codec, pull pluginhost.PullCallback) (*Stream, error) {
	localTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio", "bassaes67",
	)
	if err != nil {
		return nil, err
	}

	return &Stream{
		log:        log,
		url:        rawURL,
		codec:      codec,
		pull:       pull,
		localTrack: localTrack,
		done:       make(chan struct{}),
	}, nil
}

// NewSubscribeStream opens a WHEP subscribe session: remote RTP samples
// are decoded via codec and delivered to the host through pull's inverse
// direction (the caller-supplied sink, here folded into pull for
// symmetry with the RX path's single-callback contract).
func NewSubscribeStream(log shared.LoggerAdapter, rawURL string, cfg SignalingConfig, codec rtpcodec.Codec) *Stream {
	return &Stream{
		log:   log,
		url:   rawURL,
		codec: codec,
		done:  make(chan struct{}),
	}
}

func (s *Stream) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	cfg := SignalingConfig{Endpoint: s.url}

	if s.localTrack != nil {
		session, err := NewPublisher(ctx, cfg, s.localTrack)
		if err != nil {
			return err
		}
		s.session = session
		go s.publishLoop(ctx)
		return nil
	}

	session, err := NewSubscriber(ctx, cfg, func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		s.remoteTrack = track
		go s.subscribeLoop(ctx, track)
		go s.rtcpLoop(ctx, receiver)
	})
	if err != nil {
		return err
	}
	s.session = session
	return nil
}

// publishLoop pulls float PCM from the host, encodes it, and writes it
// to pion's local track at the codec's native frame cadence.
func (s *Stream) publishLoop(ctx context.Context) {
	defer close(s.done)

	frameDuration := time.Duration(s.codec.FrameSize()) * time.Second / 48000
	pcm := make([]float32, s.codec.FrameSize()*s.codec.Channels())
	wire := make([]byte, 0, 4000)

	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n := s.pull(pcm)
		if n < len(pcm) {
			for i := n; i < len(pcm); i++ {
				pcm[i] = 0
			}
		}

		wire = wire[:0]
		encoded, err := s.codec.Encode(pcm, wire)
		if err != nil {
			s.log.Error("webrtc publish encode failed", err)
			continue
		}

		if err := s.localTrack.WriteSample(media.Sample{Data: encoded, Duration: frameDuration}); err != nil {
			s.log.Error("webrtc publish write failed", err)
		}
	}
}

// subscribeLoop reads RTP packets off the remote track and decodes them
// via codec, handing decoded samples to the host through pull's buffer
// contract (reusing PullCallback's signature as a push sink: a negative
// return is never produced, so the host side treats every call as a
// full-buffer delivery).
func (s *Stream) subscribeLoop(ctx context.Context, track *webrtc.TrackRemote) {
	pcm := make([]float32, 0, s.codec.FrameSize()*s.codec.Channels())

	var lastSeq uint16
	haveSeq := false

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var pkt *rtp.Packet
		var err error
		pkt, _, err = track.ReadRTP()
		if err != nil {
			return
		}

		if haveSeq && pkt.SequenceNumber != lastSeq+1 {
			s.log.Debug("webrtc subscribe sequence gap")
		}
		lastSeq, haveSeq = pkt.SequenceNumber, true

		pcm = pcm[:0]
		decoded, err := s.codec.Decode(pkt.Payload, pcm)
		if err != nil {
			s.log.Error("webrtc subscribe decode failed", err)
			continue
		}
		if s.pull != nil {
			s.pull(decoded)
		}
	}
}

// rtcpLoop drains the receiver's RTCP stream so pion's congestion/loss
// accounting keeps flowing; sender/receiver reports are logged at debug
// level for the host's diagnostics surface.
func (s *Stream) rtcpLoop(ctx context.Context, receiver *webrtc.RTPReceiver) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		packets, _, err := receiver.ReadRTCP()
		if err != nil {
			return
		}
		for _, pkt := range packets {
			switch pkt.(type) {
			case *rtcp.ReceiverReport:
				s.log.Debug("webrtc rtcp receiver report")
			case *rtcp.SenderReport:
				s.log.Debug("webrtc rtcp sender report")
			}
		}
	}
}

func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.session != nil {
		return s.session.Close()
	}
	return nil
}

func (s *Stream) URL() string { return s.url }

var _ pluginhost.Stream = (*Stream)(nil)
