package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLivewireServoLocksOnMatchedFrames(t *testing.T) {
	servo := NewLivewireServo()

	var locked bool
	for i := 0; i < 28*4; i++ {
		frame := uint32(i / lwMicroticksPerFrame)
		tick := uint16(i % lwMicroticksPerFrame)
		if servo.Update(frame, tick, frame, tick) {
			locked = servo.Sample().Locked
		}
	}

	assert.True(t, locked)
	assert.InDelta(t, 0.0, servo.Sample().FreqPPB, 5000.0)
}

func TestCalculateDeltaPicksMinimumMagnitude(t *testing.T) {
	const bsize = 256 * lwMicroticksPerFrame

	// identical values: zero delta is the unique minimum-magnitude candidate.
	assert.Equal(t, int32(0), calculateDelta(100, 100))

	// local just below the wrap point and remote just past it (20 microticks
	// apart across the wrap) should prefer the small negative interpretation
	// over a delta close to a full buffer size.
	d := calculateDelta(10, bsize-10)
	assert.LessOrEqual(t, abs32(d), int32(20))
}

func TestMod256Wraps(t *testing.T) {
	assert.Equal(t, int32(255), mod256(-1))
	assert.Equal(t, int32(0), mod256(256))
	assert.Equal(t, int32(5), mod256(5))
}
