package clock

import (
	"testing"
	"time"

	"github.com/bassaes67/engine/shared"
	"github.com/stretchr/testify/assert"
)

func TestUnifiedFailsOverWhenPrimaryNeverLocks(t *testing.T) {
	u := NewUnified(shared.NewStdLogger(), ModePTP, "", 0)
	u.ptp = NewPTPClient(shared.NewStdLogger(), "", 0)
	u.active = SourcePTP
	u.failoverGrace = 10 * time.Millisecond
	u.relockHysteresis = 10 * time.Millisecond

	primary, _ := u.primarySample()
	assert.False(t, primary.Locked)

	u.primaryUnlockedSince = time.Now().Add(-time.Second)
	now := time.Now()
	u.mu.Lock()
	if u.active != SourceSystem && now.Sub(u.primaryUnlockedSince) >= u.failoverGrace {
		u.active = SourceSystem
		u.transitions.Add(1)
	}
	u.mu.Unlock()

	assert.Equal(t, SourceSystem, u.ActiveSource())
	assert.Equal(t, uint64(1), u.Transitions())
}

func TestAdjustIntervalClampsToTenPercent(t *testing.T) {
	base := 5 * time.Millisecond
	// 200,000 ppm would stretch the interval by 20%; the clamp holds it at 10%.
	got := AdjustInterval(base, Sample{Locked: true, FreqPPB: 200_000_000})
	assert.LessOrEqual(t, got, time.Duration(float64(base)*1.1)+time.Microsecond)

	unlocked := AdjustInterval(base, Sample{Locked: false, FreqPPB: 1_000_000})
	assert.Equal(t, base, unlocked)
}

func TestUnifiedAdjustIntervalUsesActiveSample(t *testing.T) {
	u := NewUnified(shared.NewStdLogger(), ModeSystem, "", 0)
	u.active = SourceSystem

	base := 20 * time.Millisecond
	assert.Equal(t, base, u.AdjustInterval(base))
}

func TestApplyDefaultsOverridesTimingsAndLeavesZerosAlone(t *testing.T) {
	u := NewUnified(shared.NewStdLogger(), ModeSystem, "", 0)

	u.ApplyDefaults(500*time.Millisecond, 1500*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, u.failoverGrace)
	assert.Equal(t, 1500*time.Millisecond, u.relockHysteresis)

	u.ApplyDefaults(0, 0, 0)
	assert.Equal(t, 500*time.Millisecond, u.failoverGrace, "zero value leaves prior override in place")
	assert.Equal(t, 1500*time.Millisecond, u.relockHysteresis)
}
