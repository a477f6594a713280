package streams

import (
	"context"

	"github.com/bassaes67/engine/internal/pluginhost"
	"github.com/bassaes67/engine/internal/srtio"
	"github.com/bassaes67/engine/shared"
)

// SRTOpener builds an SRT stream from an srt:// URL. Caller/listener
// establishment role comes straight from the URL's mode= parameter;
// source/sink direction is left to whichever side of the pull callback
// the host wired (srtio.Stream treats pull uniformly as its sink).
type SRTOpener struct {
	Log shared.LoggerAdapter
}

func (o *SRTOpener) Scheme() string { return "srt" }

func (o *SRTOpener) Open(ctx context.Context, rawURL string, pull pluginhost.PullCallback) (pluginhost.Stream, error) {
	u, err := pluginhost.ParseSRTURL(rawURL)
	if err != nil {
		return nil, err
	}

	mode := srtio.ModeCaller
	if u.Mode == pluginhost.SRTModeListener {
		mode = srtio.ModeListener
	}

	cfg := srtio.Config{
		Host:      u.Host,
		Port:      u.Port,
		Mode:      mode,
		LatencyMs: u.LatencyMs,
		StreamID:  u.StreamID,
	}

	return srtio.NewStream(o.Log, rawURL, cfg, pull), nil
}
