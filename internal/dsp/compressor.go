package dsp

import "math"

// Compressor is a per-band peak-envelope compressor: attack/release are
// one-pole exponential time constants, and above threshold the output dB
// follows threshold + (input-threshold)/ratio.
type Compressor struct {
	threshold   float32
	thresholdDB float32
	ratio       float32

	attackCoeff  float32
	releaseCoeff float32
	makeupGain   float32

	envelope      [2]float32
	gainReduction float32

	sampleRate float32
}

// NewCompressor builds a compressor with the given threshold (dBFS),
// ratio, attack/release times (ms), makeup gain (dB), at sampleRate.
func NewCompressor(thresholdDB, ratio, attackMs, releaseMs, makeupGainDB, sampleRate float32) *Compressor {
	c := &Compressor{sampleRate: sampleRate, gainReduction: 1.0}
	c.SetParams(thresholdDB, ratio, attackMs, releaseMs, makeupGainDB)
	return c
}

func timeConstant(ms, sampleRate float32) float32 {
	return float32(1 - math.Exp(-1/(float64(ms)*float64(sampleRate)/1000)))
}

// SetParams updates the compressor's parameters at runtime.
func (c *Compressor) SetParams(thresholdDB, ratio, attackMs, releaseMs, makeupGainDB float32) {
	c.threshold = DBToLinear(thresholdDB)
	c.thresholdDB = thresholdDB
	c.ratio = ratio
	c.attackCoeff = timeConstant(attackMs, c.sampleRate)
	c.releaseCoeff = timeConstant(releaseMs, c.sampleRate)
	c.makeupGain = DBToLinear(makeupGainDB)
}

// Process compresses one sample for channel (0 or 1), updating the peak
// envelope follower and returning the gain-reduced, makeup-scaled output.
func (c *Compressor) Process(input float32, channel int) float32 {
	inputAbs := input
	if inputAbs < 0 {
		inputAbs = -inputAbs
	}

	env := &c.envelope[channel]
	if inputAbs > *env {
		*env += c.attackCoeff * (inputAbs - *env)
	} else {
		*env += c.releaseCoeff * (inputAbs - *env)
	}

	var gain float32 = 1.0
	if *env > c.threshold && *env > 0 {
		inputDB := LinearToDB(*env)
		overDB := inputDB - c.thresholdDB
		compressedDB := c.thresholdDB + overDB/c.ratio
		gain = DBToLinear(compressedDB) / *env
	}

	if channel == 0 {
		c.gainReduction = gain
	}

	return input * gain * c.makeupGain
}

// GainReductionDB returns the most recent channel-0 gain reduction in dB;
// negative while compressing, 0 below threshold.
func (c *Compressor) GainReductionDB() float32 {
	return LinearToDB(c.gainReduction)
}

// GainReductionLinear returns the raw linear gain (<=1) before makeup.
func (c *Compressor) GainReductionLinear() float32 {
	return c.gainReduction
}

// Reset clears envelope state across a stream discontinuity.
func (c *Compressor) Reset() {
	c.envelope = [2]float32{}
	c.gainReduction = 1.0
}
