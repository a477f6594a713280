package srtio

import (
	"context"
	"net"
	"strconv"
	"time"

	srt "github.com/datarhei/gosrt"

	"github.com/bassaes67/engine/internal/pluginhost"
	"github.com/bassaes67/engine/shared"
)

// Mode selects which side of the SRT handshake this stream performs.
type Mode int

const (
	ModeCaller Mode = iota
	ModeListener
)

// Config configures one SRT stream.
type Config struct {
	Host      string
	Port      uint16
	Mode      Mode
	LatencyMs uint32
	StreamID  string
	Timeout   time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 3 * time.Second
	}
	return c.Timeout
}

// Stream receives framed packets over one SRT connection, in caller or
// listener mode, and satisfies pluginhost.Stream. PCM L16 audio packets
// are decoded and handed to the host's pull callback; JSON packets and
// other audio formats are skipped. Nothing is sent on the connection.
type Stream struct {
	log  shared.LoggerAdapter
	url  string
	cfg  Config
	pull pluginhost.PullCallback

	conn net.Conn
	ln   srt.Listener

	cancel context.CancelFunc
	done   chan struct{}
}

// NewStream constructs an SRT stream from a parsed srt:// URL and the
// host's pull callback.
func NewStream(log shared.LoggerAdapter, rawURL string, cfg Config, pull pluginhost.PullCallback) *Stream {
	return &Stream{log: log, url: rawURL, cfg: cfg, pull: pull, done: make(chan struct{})}
}

func (s *Stream) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	srtCfg := srt.DefaultConfig()
	srtCfg.Latency = time.Duration(s.cfg.LatencyMs) * time.Millisecond
	srtCfg.ConnectionTimeout = s.cfg.timeout()
	if s.cfg.StreamID != "" {
		srtCfg.StreamId = s.cfg.StreamID
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(int(s.cfg.Port)))

	switch s.cfg.Mode {
	case ModeListener:
		ln, err := srt.Listen("srt", addr, srtCfg)
		if err != nil {
			return shared.ErrSocketCreate
		}
		s.ln = ln
		go s.acceptLoop(ctx)
	default:
		conn, err := srt.Dial("srt", addr, srtCfg)
		if err != nil {
			return shared.ErrSocketCreate
		}
		s.conn = conn
		go s.pumpLoop(ctx, conn)
	}

	return nil
}

func (s *Stream) acceptLoop(ctx context.Context) {
	defer close(s.done)
	conn, _, err := s.ln.Accept()
	if err != nil {
		s.log.Error("srt accept failed", err)
		return
	}
	s.conn = conn
	s.pumpLoop(ctx, conn)
}

// pumpLoop reads framed packets off conn and decodes PCM L16 payloads
// into the host via pull. It does not write to conn.
func (s *Stream) pumpLoop(ctx context.Context, conn net.Conn) {
	buf := make([]byte, MaxPayloadSize+HeaderSize)
	pcm := make([]float32, 0, 1024)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, err := conn.Read(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.log.Error("srt read failed", err)
			return
		}

		pkt, err := DecodePacket(buf[:n])
		if err != nil {
			continue
		}

		samples, ok := pkt.AsPCML16()
		if !ok || s.pull == nil {
			continue
		}

		pcm = pcm[:0]
		for _, sm := range samples {
			pcm = append(pcm, float32(sm)/32768.0)
		}
		s.pull(pcm)
	}
}

func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Stream) URL() string { return s.url }

var _ pluginhost.Stream = (*Stream)(nil)
