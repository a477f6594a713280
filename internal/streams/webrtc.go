package streams

import (
	"context"
	"time"

	"github.com/bassaes67/engine/internal/pluginhost"
	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/bassaes67/engine/internal/webrtcio"
	"github.com/bassaes67/engine/shared"
)

// WebRTCOpener builds a WHIP/WHEP signaling session from a webrtc://
// URL, always carrying Opus since that is the only payload pion/webrtc's
// default codec registry negotiates without extra SDP fmtp plumbing.
//
// Format: webrtc://signaling-host/path?dir=rx|tx&token=BEARER
type WebRTCOpener struct {
	Log shared.LoggerAdapter
}

func (o *WebRTCOpener) Scheme() string { return "webrtc" }

func (o *WebRTCOpener) Open(ctx context.Context, rawURL string, pull pluginhost.PullCallback) (pluginhost.Stream, error) {
	endpoint, dir, token, err := parseWebRTCURL(rawURL)
	if err != nil {
		return nil, err
	}

	codec, err := rtpcodec.NewOpusCodec(48000, 2, 20, rtpcodec.CodecOpus.DefaultPT())
	if err != nil {
		return nil, err
	}

	cfg := webrtcio.SignalingConfig{Endpoint: endpoint, BearerToken: token, Timeout: 5 * time.Second}

	if dir == pluginhost.DirectionSink {
		return webrtcio.NewPublishStream(o.Log, rawURL, cfg, codec, pull)
	}
	return webrtcio.NewSubscribeStream(o.Log, rawURL, cfg, codec), nil
}

// parseWebRTCURL extracts the bare HTTP(S) signaling endpoint and the
// dir=/token= query parameters from a webrtc:// URL, reusing the
// aes67/rtp query-string convention rather than a distinct grammar.
func parseWebRTCURL(raw string) (endpoint string, dir pluginhost.Direction, token string, err error) {
	const scheme = "webrtc://"
	if len(raw) < len(scheme) || raw[:len(scheme)] != scheme {
		return "", 0, "", shared.ErrInvalidScheme
	}
	rest := raw[len(scheme):]

	path := rest
	query := ""
	for i := 0; i < len(rest); i++ {
		if rest[i] == '?' {
			path, query = rest[:i], rest[i+1:]
			break
		}
	}

	dir = pluginhost.DirectionSource
	for _, pair := range splitAmp(query) {
		k, v, ok := splitEq(pair)
		if !ok {
			continue
		}
		switch k {
		case "dir", "direction":
			switch v {
			case "tx", "sink":
				dir = pluginhost.DirectionSink
			default:
				dir = pluginhost.DirectionSource
			}
		case "token":
			token = v
		}
	}

	return "https://" + path, dir, token, nil
}

func splitAmp(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '&' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func splitEq(s string) (key, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
