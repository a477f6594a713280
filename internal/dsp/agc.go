package dsp

import "math"

// WidebandAGC is an optional front-end gain controller: an RMS envelope
// (10ms integration) feeds a soft-knee compression curve centered on the
// threshold, with separate attack/release and a fixed makeup gain that
// moves the threshold level up to the target level.
type WidebandAGC struct {
	targetLevelDB float32
	thresholdDB   float32
	ratio         float32
	kneeDB        float32
	halfKnee      float32
	makeupGain    float32

	attackCoeff  float32
	releaseCoeff float32

	rmsEnv  [2]float32
	rmsCoeff float32

	currentGain [2]float32

	gainReduction float32
	sampleRate    float32
	enabled       bool
}

const rmsIntegrationMs = 10.0

// NewWidebandAGC builds an AGC with the given target/threshold (dBFS),
// ratio, knee width (dB), attack/release times (ms), at sampleRate.
func NewWidebandAGC(sampleRate, targetLevelDB, thresholdDB, ratio, kneeDB, attackMs, releaseMs float32, enabled bool) *WidebandAGC {
	a := &WidebandAGC{
		sampleRate:  sampleRate,
		currentGain: [2]float32{1, 1},
		gainReduction: 1.0,
	}
	a.SetParams(targetLevelDB, thresholdDB, ratio, kneeDB, attackMs, releaseMs, enabled)
	a.rmsCoeff = timeConstant(rmsIntegrationMs, sampleRate)
	return a
}

// DefaultBroadcastAGC returns the reference broadcast preset: target -18
// dBFS, threshold -24 dBFS, ratio 3:1, 10dB knee, 50ms attack, 500ms release.
func DefaultBroadcastAGC(sampleRate float32) *WidebandAGC {
	return NewWidebandAGC(sampleRate, -18.0, -24.0, 3.0, 10.0, 50.0, 500.0, true)
}

// SetParams updates the AGC's parameters at runtime, recomputing the
// makeup gain needed to move threshold-level signal up to target level.
func (a *WidebandAGC) SetParams(targetLevelDB, thresholdDB, ratio, kneeDB, attackMs, releaseMs float32, enabled bool) {
	a.targetLevelDB = targetLevelDB
	a.thresholdDB = thresholdDB
	a.ratio = ratio
	a.kneeDB = kneeDB
	a.halfKnee = kneeDB / 2

	makeupGainDB := targetLevelDB - thresholdDB
	if makeupGainDB < 0 {
		makeupGainDB = 0
	}
	a.makeupGain = DBToLinear(makeupGainDB)

	a.attackCoeff = timeConstant(attackMs, a.sampleRate)
	a.releaseCoeff = timeConstant(releaseMs, a.sampleRate)
	a.enabled = enabled
}

func (a *WidebandAGC) IsEnabled() bool      { return a.enabled }
func (a *WidebandAGC) SetEnabled(e bool)    { a.enabled = e }

// Process applies RMS-detected, soft-knee gain control to one sample.
func (a *WidebandAGC) Process(input float32, channel int) float32 {
	if !a.enabled {
		return input
	}

	inputSq := input * input

	rms := &a.rmsEnv[channel]
	*rms += a.rmsCoeff * (inputSq - *rms)

	var rmsLevel float32
	if *rms > 0 {
		rmsLevel = float32(math.Sqrt(float64(*rms)))
	}

	targetGain := a.computeGain(rmsLevel)

	current := &a.currentGain[channel]
	if targetGain < *current {
		*current += a.attackCoeff * (targetGain - *current)
	} else {
		*current += a.releaseCoeff * (targetGain - *current)
	}

	if channel == 0 {
		a.gainReduction = *current / a.makeupGain
	}

	return input * *current
}

func (a *WidebandAGC) computeGain(rmsLevel float32) float32 {
	if rmsLevel <= 0 {
		return a.makeupGain
	}

	inputDB := LinearToDB(rmsLevel)
	overThreshold := inputDB - a.thresholdDB

	var compressedDB float32
	switch {
	case overThreshold <= -a.halfKnee:
		compressedDB = inputDB
	case overThreshold >= a.halfKnee:
		compressedDB = a.thresholdDB + overThreshold/a.ratio
	default:
		kneeFactor := (overThreshold + a.halfKnee) / a.kneeDB
		compressionAmount := (1 - 1/a.ratio) * kneeFactor * kneeFactor
		compressedDB = inputDB - overThreshold*compressionAmount
	}

	gainDB := compressedDB - inputDB
	return DBToLinear(gainDB) * a.makeupGain
}

// GainReductionDB reports the channel-0 gain reduction in dB (negative
// while reducing).
func (a *WidebandAGC) GainReductionDB() float32 {
	return LinearToDB(a.gainReduction)
}

// Reset clears envelope and gain state across a discontinuity.
func (a *WidebandAGC) Reset() {
	a.rmsEnv = [2]float32{}
	a.currentGain = [2]float32{1, 1}
	a.gainReduction = 1.0
}
