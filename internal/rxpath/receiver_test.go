package rxpath

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/bassaes67/engine/shared"
)

func TestApplyRateCorrectionNoOpAtZeroPPB(t *testing.T) {
	buf := []float32{0, 1, 2, 3}
	orig := append([]float32(nil), buf...)
	applyRateCorrection(buf, 0)
	assert.Equal(t, orig, buf)
}

func TestApplyRateCorrectionInterpolates(t *testing.T) {
	buf := []float32{0, 1, 2, 3, 4, 5, 6, 7}
	applyRateCorrection(buf, 100_000_000) // +100,000 ppm = +10%
	// Output should remain a monotonically increasing ramp, just stretched.
	for i := 1; i < len(buf); i++ {
		assert.GreaterOrEqual(t, buf[i], buf[i-1])
	}
}

// TestPullUnderrunsMatchJitterBufferNotRefilling confirms Receiver.Stats
// tracks the jitter buffer's own underrun count rather than a second,
// looser counter derived from Pull's played/not-played return: pulling
// from a never-fed buffer sits in the refilling state and must not be
// counted as an underrun.
func TestPullUnderrunsMatchJitterBufferNotRefilling(t *testing.T) {
	codec := rtpcodec.NewPCM16Codec(960, 1, 21)
	r := NewReceiver(shared.NewStdLogger(), nil, codec, nil, Config{
		TargetPackets: 4,
		MaxReorder:    8,
		Channels:      1,
	})

	out := make([]float32, 960)
	r.Pull(out, 960)
	r.Pull(out, 960)

	assert.Equal(t, r.buf.Underruns(), r.Stats().Underruns())
	assert.Equal(t, uint64(0), r.Stats().Underruns())
}
