// Package pluginhost implements the abstract host boundary: the URL
// schemes (aes67://, rtp://, srt://) each stream type registers under,
// an init-once refcounted registry, and the pull-callback contract the
// host drives the pipeline through.
package pluginhost

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/bassaes67/engine/shared"
)

// Direction selects whether an opened stream is a source (RX, the plugin
// pulls samples off the network for the host) or a sink (TX, the plugin
// pulls samples from the host to send).
type Direction int

const (
	DirectionSource Direction = iota
	DirectionSink
)

func parseDirection(value string) (Direction, error) {
	switch strings.ToLower(value) {
	case "", "rx", "source", "src":
		return DirectionSource, nil
	case "tx", "sink", "dst":
		return DirectionSink, nil
	default:
		return DirectionSource, shared.ErrInvalidURL
	}
}

// AES67URL is a parsed aes67:// stream URL.
//
// Format: aes67://MULTICAST_IP:PORT?iface=IP&pt=N&jitter=MS&ch=N&rate=HZ&dir=rx|tx
type AES67URL struct {
	MulticastAddr net.IP
	Port          uint16
	Interface     net.IP
	PayloadType   uint8
	JitterMs      uint32
	Channels      uint16
	SampleRate    uint32
	Direction     Direction
}

func defaultAES67URL() AES67URL {
	return AES67URL{
		MulticastAddr: net.IPv4(239, 192, 76, 52),
		Port:          5004,
		PayloadType:   96,
		JitterMs:      10,
		Channels:      2,
		SampleRate:    48000,
		Direction:     DirectionSource,
	}
}

// ParseAES67URL parses an aes67:// URL, applying the defaults above for
// any parameter not present.
func ParseAES67URL(raw string) (AES67URL, error) {
	const scheme = "aes67://"
	if !strings.HasPrefix(raw, scheme) {
		return AES67URL{}, shared.ErrInvalidScheme
	}
	rest := raw[len(scheme):]

	hostPort, query := splitQuery(rest)
	host, portStr, ok := splitHostPort(hostPort)
	if !ok {
		return AES67URL{}, shared.ErrInvalidURL
	}

	result := defaultAES67URL()

	ip := net.ParseIP(host)
	if ip == nil {
		return AES67URL{}, shared.ErrInvalidURL
	}
	result.MulticastAddr = ip

	if portStr != "" {
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return AES67URL{}, shared.ErrInvalidURL
		}
		result.Port = uint16(port)
	}

	for key, value := range parseQueryParams(query) {
		var err error
		switch key {
		case "iface", "interface":
			if ip := net.ParseIP(value); ip != nil {
				result.Interface = ip
			} else {
				err = shared.ErrInvalidURL
			}
		case "pt", "payload":
			err = parseUint8(value, &result.PayloadType)
		case "jitter":
			err = parseUint32(value, &result.JitterMs)
		case "ch", "channels":
			err = parseUint16(value, &result.Channels)
		case "rate", "samplerate":
			err = parseUint32(value, &result.SampleRate)
		case "dir", "direction":
			result.Direction, err = parseDirection(value)
		}
		if err != nil {
			return AES67URL{}, shared.ErrInvalidURL
		}
	}

	return result, nil
}

// RTPURL is a parsed rtp:// stream URL.
//
// Format: rtp://host:port?codec=pcm16&bitrate=K&jitter=ms&channels=N&local_port=P&interface=IP&dir=rx|tx
type RTPURL struct {
	Host        net.IP
	Port        uint16
	Codec       rtpcodec.PayloadCodec
	BitrateKbps uint32
	JitterMs    uint32
	Channels    uint16
	LocalPort   uint16
	Interface   net.IP
	Direction   Direction
}

func defaultRTPURL() RTPURL {
	return RTPURL{
		Host:        net.IPv4(0, 0, 0, 0),
		Port:        9152,
		Codec:       rtpcodec.CodecPCM16,
		Direction:   DirectionSink,
		BitrateKbps: 192,
		JitterMs:    20,
		Channels:    2,
	}
}

// ParseRTPURL parses an rtp:// URL. Unlike AES67, a port is mandatory.
func ParseRTPURL(raw string) (RTPURL, error) {
	const scheme = "rtp://"
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(strings.ToLower(trimmed), scheme) {
		return RTPURL{}, shared.ErrInvalidScheme
	}
	rest := trimmed[len(scheme):]

	hostPort, query := splitQuery(rest)
	host, portStr, ok := splitHostPort(hostPort)
	if !ok || portStr == "" {
		return RTPURL{}, shared.ErrInvalidURL
	}

	result := defaultRTPURL()

	ip := net.ParseIP(host)
	if ip == nil {
		return RTPURL{}, shared.ErrInvalidURL
	}
	result.Host = ip

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return RTPURL{}, shared.ErrInvalidURL
	}
	result.Port = uint16(port)

	for key, value := range parseQueryParams(query) {
		var err error
		switch strings.ToLower(key) {
		case "codec":
			result.Codec, err = parseCodecName(value)
		case "bitrate":
			err = parseUint32(value, &result.BitrateKbps)
		case "jitter":
			err = parseUint32(value, &result.JitterMs)
		case "channels":
			err = parseUint16(value, &result.Channels)
			if err == nil && (result.Channels < 1 || result.Channels > 2) {
				err = shared.ErrInvalidURL
			}
		case "local_port", "localport":
			err = parseUint16(value, &result.LocalPort)
		case "interface", "if":
			if ip := net.ParseIP(value); ip != nil {
				result.Interface = ip
			} else {
				err = shared.ErrInvalidURL
			}
		case "dir", "direction":
			result.Direction, err = parseDirection(value)
		}
		if err != nil {
			return RTPURL{}, shared.ErrInvalidURL
		}
	}

	return result, nil
}

func parseCodecName(name string) (rtpcodec.PayloadCodec, error) {
	switch strings.ToLower(name) {
	case "pcm16", "pcm-16", "l16":
		return rtpcodec.CodecPCM16, nil
	case "pcm24", "pcm-24", "l24":
		return rtpcodec.CodecPCM24, nil
	case "mp2", "mpeg2", "mpa":
		return rtpcodec.CodecMP2, nil
	case "opus":
		return rtpcodec.CodecOpus, nil
	case "flac":
		return rtpcodec.CodecFlac, nil
	default:
		return rtpcodec.CodecUnknown, shared.ErrUnsupportedCodec
	}
}

// SRTMode is the SRT connection establishment role.
type SRTMode int

const (
	SRTModeCaller SRTMode = iota
	SRTModeListener
	SRTModeRendezvous
)

// SRTURL is a parsed srt:// stream URL.
//
// Format: srt://host:port?latency=120&packet_size=20&channels=2&rate=48000&mode=caller
type SRTURL struct {
	Host         string
	Port         uint16
	LatencyMs    uint32
	PacketSizeMs uint32
	Channels     uint16
	SampleRate   uint32
	StreamID     string
	Passphrase   string
	Mode         SRTMode
	TimeoutMs    uint32
}

func defaultSRTURL() SRTURL {
	return SRTURL{
		Host:         "127.0.0.1",
		Port:         9000,
		LatencyMs:    120,
		PacketSizeMs: 20,
		Channels:     2,
		SampleRate:   48000,
		Mode:         SRTModeCaller,
		TimeoutMs:    3000,
	}
}

// ParseSRTURL parses an srt:// URL.
func ParseSRTURL(raw string) (SRTURL, error) {
	const scheme = "srt://"
	if !strings.HasPrefix(raw, scheme) {
		return SRTURL{}, shared.ErrInvalidScheme
	}
	rest := raw[len(scheme):]

	hostPort, query := splitQuery(rest)
	host, portStr, ok := splitHostPort(hostPort)
	if !ok {
		return SRTURL{}, shared.ErrInvalidURL
	}

	result := defaultSRTURL()
	result.Host = host

	if portStr != "" {
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return SRTURL{}, shared.ErrInvalidURL
		}
		result.Port = uint16(port)
	}

	for key, value := range parseQueryParams(query) {
		var err error
		switch key {
		case "latency":
			err = parseUint32(value, &result.LatencyMs)
		case "packet_size":
			err = parseUint32(value, &result.PacketSizeMs)
		case "channels":
			err = parseUint16(value, &result.Channels)
		case "rate":
			err = parseUint32(value, &result.SampleRate)
		case "stream_id", "streamid":
			result.StreamID = value
		case "passphrase":
			result.Passphrase = value
		case "timeout":
			err = parseUint32(value, &result.TimeoutMs)
		case "mode":
			switch strings.ToLower(value) {
			case "caller", "call":
				result.Mode = SRTModeCaller
			case "listener", "listen", "server":
				result.Mode = SRTModeListener
			case "rendezvous", "rdv":
				result.Mode = SRTModeRendezvous
			default:
				err = shared.ErrInvalidURL
			}
		}
		if err != nil {
			return SRTURL{}, shared.ErrInvalidURL
		}
	}

	return result, nil
}

// --- shared recursive-descent helpers ---

func splitQuery(s string) (path string, query string) {
	if idx := strings.IndexByte(s, '?'); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}

func splitHostPort(s string) (host, port string, ok bool) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return s, "", s != ""
	}
	return s[:idx], s[idx+1:], true
}

func parseQueryParams(query string) map[string]string {
	params := make(map[string]string)
	if query == "" {
		return params
	}
	for _, pair := range strings.Split(query, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		params[kv[0]] = kv[1]
	}
	return params
}

func parseUint8(s string, out *uint8) error {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrInvalidURL, s)
	}
	*out = uint8(v)
	return nil
}

func parseUint16(s string, out *uint16) error {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrInvalidURL, s)
	}
	*out = uint16(v)
	return nil
}

func parseUint32(s string, out *uint32) error {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrInvalidURL, s)
	}
	*out = uint32(v)
	return nil
}
