package streams

import (
	"time"

	"github.com/bassaes67/engine/internal/clock"
	"github.com/bassaes67/engine/internal/config"
	"github.com/bassaes67/engine/internal/pluginhost"
	"github.com/bassaes67/engine/shared"
)

// Register wires the aes67://, rtp://, srt://, and webrtc:// openers
// into reg, sharing clk as the unified clock handle for the two RTP-based
// transports, and applying defaults (failover/relock timing, system tick,
// jitter reorder tolerance) loaded from the process config file. Call
// once per process, typically right after pluginhost.GlobalRegistry(),
// and before clk.Init.
func Register(reg *pluginhost.Registry, clk *clock.Unified, log shared.LoggerAdapter, defaults config.Defaults) {
	clk.ApplyDefaults(
		time.Duration(defaults.FailoverGraceMs)*time.Millisecond,
		time.Duration(defaults.RelockHysteresisMs)*time.Millisecond,
		time.Duration(defaults.SystemTickMs)*time.Millisecond,
	)

	maxReorder := effectiveMaxReorder(defaults)

	reg.Register(&AES67Opener{Clock: clk, Log: log, MaxReorder: maxReorder})
	reg.Register(&RTPOpener{Clock: clk, Log: log, MaxReorder: maxReorder})
	reg.Register(&SRTOpener{Log: log})
	reg.Register(&WebRTCOpener{Log: log})
}

func effectiveMaxReorder(defaults config.Defaults) int {
	if defaults.MaxReorder > 0 {
		return defaults.MaxReorder
	}
	return config.DefaultDefaults().MaxReorder
}
