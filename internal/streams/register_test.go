package streams

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bassaes67/engine/internal/clock"
	"github.com/bassaes67/engine/internal/config"
	"github.com/bassaes67/engine/internal/pluginhost"
	"github.com/bassaes67/engine/shared"
)

func TestRegisterAppliesMaxReorderFromDefaults(t *testing.T) {
	assert.Equal(t, 64, effectiveMaxReorder(config.Defaults{MaxReorder: 64}))
}

func TestRegisterFallsBackToDefaultMaxReorder(t *testing.T) {
	assert.Equal(t, config.DefaultDefaults().MaxReorder, effectiveMaxReorder(config.Defaults{}))
	assert.Equal(t, defaultMaxReorder, (&AES67Opener{}).maxReorder())
	assert.Equal(t, defaultMaxReorder, (&RTPOpener{}).maxReorder())
}

func TestRegisterLeavesUnknownSchemeUnregistered(t *testing.T) {
	clk := clock.NewUnified(shared.NewStdLogger(), clock.ModeSystem, "", 0)
	reg := pluginhost.GlobalRegistry()
	defer pluginhost.ReleaseGlobalRegistry()

	Register(reg, clk, shared.NewStdLogger(), config.Defaults{MaxReorder: 48})

	_, err := reg.Open(nil, "unknown-scheme", "unknown-scheme://x", nil)
	assert.ErrorIs(t, err, shared.ErrInvalidScheme)
}
