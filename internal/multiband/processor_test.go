package multiband

import (
	"math"
	"testing"

	"github.com/bassaes67/engine/shared"
	"github.com/stretchr/testify/assert"
)

func testConfig(bypass bool) Config {
	return Config{
		SampleRate:     48000,
		Channels:       2,
		CrossoverFreqs: []float32{250, 2000},
		Bands: []BandConfig{
			{ThresholdDB: -60, Ratio: 1, AttackMs: 5, ReleaseMs: 50, MakeupGainDB: 0},
			{ThresholdDB: -60, Ratio: 1, AttackMs: 5, ReleaseMs: 50, MakeupGainDB: 0},
			{ThresholdDB: -60, Ratio: 1, AttackMs: 5, ReleaseMs: 50, MakeupGainDB: 0},
		},
		InputGainDB:  0,
		OutputGainDB: 0,
		Bypass:       bypass,
	}
}

func TestProcessorBypassEquality(t *testing.T) {
	cfg := testConfig(true)
	p := NewProcessor(shared.NewStdLogger(), cfg)

	buf := make([]float32, 2*10000)
	orig := make([]float32, len(buf))
	for i := range buf {
		v := float32(math.Sin(float64(i))) * 0.5
		buf[i] = v
		orig[i] = v
	}

	p.Process(buf)

	assert.Equal(t, orig, buf)
	assert.Equal(t, p.Stats().PeakIn(), p.Stats().PeakOut())
	for i := 0; i < len(cfg.Bands); i++ {
		assert.Equal(t, float32(0), p.Stats().BandGainReductionDB(i))
	}
}

func TestProcessorReconstructionNearUnityAtLowRatio(t *testing.T) {
	cfg := testConfig(false)
	p := NewProcessor(shared.NewStdLogger(), cfg)

	n := 48000 // 1s settle
	buf := make([]float32, 2*n)
	for i := 0; i < n; i++ {
		// stand-in for pink noise: a single 220 Hz sine at 0.1 amplitude.
		v := float32(0.1) * float32(math.Sin(2*math.Pi*220*float64(i)/48000))
		buf[2*i] = v
		buf[2*i+1] = v
	}
	input := append([]float32(nil), buf...)

	p.Process(buf)

	// after filter settle, check the tail only
	tailStart := len(buf) - 2*4800
	var maxDiff float32
	for i := tailStart; i < len(buf); i++ {
		d := buf[i] - input[i]
		if d < 0 {
			d = -d
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	assert.Less(t, maxDiff, float32(0.02))
}
