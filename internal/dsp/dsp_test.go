package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLR4CrossoverReconstructsUnityAfterSettle(t *testing.T) {
	const sampleRate = 48000.0
	const freq = 1000.0

	xover := NewLR4Crossover(freq, sampleRate)

	var lastSum float32
	for i := 0; i < 1000; i++ {
		input := float32(1.0) // unit step
		low, high := xover.Split(input, 0)
		lastSum = low + high
	}

	assert.InDelta(t, 1.0, float64(lastSum), 0.01)
}

func TestCompressorBelowThresholdIsUnity(t *testing.T) {
	c := NewCompressor(-12, 4, 5, 50, 0, 48000)
	for i := 0; i < 200; i++ {
		out := c.Process(0.01, 0)
		assert.InDelta(t, 0.01, float64(out), 1e-6)
	}
}

func TestCompressorSteadyStateGainReduction(t *testing.T) {
	c := NewCompressor(-20, 4, 1, 1, 0, 48000)
	const inputLin = 0.5 // well above threshold

	var out float32
	for i := 0; i < 20000; i++ {
		out = c.Process(inputLin, 0)
	}

	inputDB := LinearToDB(inputLin)
	thresholdDB := float32(-20)
	expectedDB := thresholdDB + (inputDB-thresholdDB)/4

	gotDB := LinearToDB(out)
	assert.InDelta(t, float64(expectedDB), float64(gotDB), 0.5)
}

func TestDBLinearRoundTrip(t *testing.T) {
	for _, db := range []float32{-60, -20, -6, 0, 6} {
		lin := DBToLinear(db)
		back := LinearToDB(lin)
		assert.InDelta(t, float64(db), float64(back), 1e-3)
	}
}

func TestWidebandAGCBypassWhenDisabled(t *testing.T) {
	agc := NewWidebandAGC(48000, -18, -24, 3, 10, 50, 500, false)
	assert.InDelta(t, 0.3, float64(agc.Process(0.3, 0)), 1e-9)
}

func TestPeakLevel(t *testing.T) {
	buf := []float32{0.1, -0.9, 0.3}
	assert.InDelta(t, 0.9, float64(PeakLevel(buf)), 1e-9)
}

func sineWave(freq, sampleRate float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * float64(freq) * float64(i) / float64(sampleRate)))
	}
	return out
}

func TestBiquadLowpassAttenuatesHighFrequency(t *testing.T) {
	const sampleRate = 48000.0
	lp := Lowpass(200, sampleRate)
	in := sineWave(8000, sampleRate, 4096)

	var peakOut float32
	for _, s := range in {
		out := lp.Process(s, 0)
		if out > peakOut {
			peakOut = out
		} else if -out > peakOut {
			peakOut = -out
		}
	}
	assert.Less(t, peakOut, float32(0.3))
}
