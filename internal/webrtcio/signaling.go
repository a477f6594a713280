// Package webrtcio implements the WHIP/WHEP-style signaling glue for the
// webrtc:// stream type: an SDP offer/answer exchange over HTTP and the
// wiring of the resulting media track into this engine's RX/TX paths.
// ICE/DTLS/SRTP themselves are left entirely to pion/webrtc.
package webrtcio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/valyala/fasthttp"

	"github.com/bassaes67/engine/shared"
)

// SignalingConfig configures the WHIP/WHEP endpoint negotiation.
type SignalingConfig struct {
	// Endpoint is the WHIP (publish) or WHEP (subscribe) HTTP URL.
	Endpoint string
	// BearerToken authenticates against the endpoint, if required.
	BearerToken string
	// Timeout bounds the offer/answer HTTP round trip.
	Timeout time.Duration
}

func (c SignalingConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 5 * time.Second
	}
	return c.Timeout
}

// Negotiate performs a single WHIP/WHEP-style SDP exchange: POST the
// local offer to cfg.Endpoint, return the remote answer body as a string.
func Negotiate(ctx context.Context, cfg SignalingConfig, offerSDP string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(cfg.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set("Content-Type", "application/sdp")
	if cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.BearerToken)
	}
	req.SetBodyString(offerSDP)

	errC := make(chan error, 1)
	go func() {
		errC <- fasthttp.DoTimeout(req, resp, cfg.timeout())
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errC:
		if err != nil {
			return "", fmt.Errorf("%w: %w", shared.ErrSocketSend, err)
		}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", fmt.Errorf("%w: signaling endpoint returned %d", shared.ErrInvalidConfig, resp.StatusCode())
	}

	return string(resp.Body()), nil
}

// PeerSession wraps one pion PeerConnection and the signaling round trip
// that established it, ready for a local track (publish) or a remote
// track handler (subscribe) to be wired in.
type PeerSession struct {
	mu sync.Mutex
	pc *webrtc.PeerConnection

	connected chan struct{}
	closeOnce sync.Once
}

// NewPublisher negotiates a WHIP session carrying localTrack, returning
// once the peer connection reports Connected or the context is done.
func NewPublisher(ctx context.Context, cfg SignalingConfig, localTrack *webrtc.TrackLocalStaticSample) (*PeerSession, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSocketCreate, err)
	}

	if _, err := pc.AddTrack(localTrack); err != nil {
		pc.Close()
		return nil, err
	}

	return negotiateAndWait(ctx, cfg, pc)
}

// NewSubscriber negotiates a WHEP session and invokes onTrack for each
// remote audio track pion delivers, along with the RTPReceiver carrying
// it (for RTCP readback).
func NewSubscriber(ctx context.Context, cfg SignalingConfig, onTrack func(*webrtc.TrackRemote, *webrtc.RTPReceiver)) (*PeerSession, error) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSocketCreate, err)
	}

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		pc.Close()
		return nil, err
	}

	pc.OnTrack(onTrack)

	return negotiateAndWait(ctx, cfg, pc)
}

func negotiateAndWait(ctx context.Context, cfg SignalingConfig, pc *webrtc.PeerConnection) (*PeerSession, error) {
	s := &PeerSession{pc: pc, connected: make(chan struct{})}

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateConnected:
			s.closeOnce.Do(func() { close(s.connected) })
		case webrtc.PeerConnectionStateFailed, webrtc.PeerConnectionStateClosed:
			s.closeOnce.Do(func() { close(s.connected) })
		}
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return nil, err
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		pc.Close()
		return nil, err
	}

	select {
	case <-gatherComplete:
	case <-ctx.Done():
		pc.Close()
		return nil, ctx.Err()
	}

	answerSDP, err := Negotiate(ctx, cfg, pc.LocalDescription().SDP)
	if err != nil {
		pc.Close()
		return nil, err
	}

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answerSDP,
	}); err != nil {
		pc.Close()
		return nil, err
	}

	select {
	case <-s.connected:
	case <-ctx.Done():
		pc.Close()
		return nil, ctx.Err()
	}

	if pc.ConnectionState() != webrtc.PeerConnectionStateConnected {
		return nil, fmt.Errorf("%w: peer connection state %s", shared.ErrSocketCreate, pc.ConnectionState())
	}

	return s, nil
}

// Close tears down the underlying peer connection.
func (s *PeerSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pc.Close()
}

var _ io.Closer = (*PeerSession)(nil)
