package multiband

import "github.com/bassaes67/engine/internal/dsp"

const (
	absoluteGateLUFS  = -70.0
	relativeGateLU    = -10.0
	blockDurationMs   = 100.0
	momentaryBlocks   = 4  // 400ms
	shortTermBlocks   = 30 // 3s
)

// kWeightingFilter is the ITU-R BS.1770 K-weighting pre-filter: a high
// shelf above ~1.68kHz followed by a subsonic high-pass.
type kWeightingFilter struct {
	shelf    dsp.Biquad
	highpass dsp.Biquad
}

func newKWeightingFilter(sampleRate float32) kWeightingFilter {
	return kWeightingFilter{
		shelf:    dsp.HighShelf(1681.974, 4.0, sampleRate),
		highpass: dsp.HighpassQ(38.135, 0.5, sampleRate),
	}
}

func (k *kWeightingFilter) process(input float32, channel int) float32 {
	stage1 := k.shelf.Process(input, channel)
	return k.highpass.Process(stage1, channel)
}

func (k *kWeightingFilter) reset() {
	k.shelf.Reset()
	k.highpass.Reset()
}

// LufsMeter implements ITU-R BS.1770 momentary/short-term/integrated
// loudness measurement with absolute and relative gating.
type LufsMeter struct {
	kFilter kWeightingFilter

	sampleRate       float32
	samplesPerBlock  int
	blockSampleCount int
	blockMSSum       [2]float64

	blockPowers []float64 // ring, capped at shortTermBlocks
	allBlocks   []float64

	enabled bool

	momentaryLUFS  float32
	shortTermLUFS  float32
	integratedLUFS float32
}

// NewLufsMeter builds an enabled meter for the given sample rate.
func NewLufsMeter(sampleRate float32) *LufsMeter {
	return &LufsMeter{
		kFilter:         newKWeightingFilter(sampleRate),
		sampleRate:      sampleRate,
		samplesPerBlock: int(blockDurationMs * sampleRate / 1000),
		enabled:         true,
		momentaryLUFS:   -100,
		shortTermLUFS:   -100,
		integratedLUFS:  -100,
		allBlocks:       make([]float64, 0, 1024),
	}
}

func (m *LufsMeter) SetEnabled(e bool) { m.enabled = e }
func (m *LufsMeter) IsEnabled() bool   { return m.enabled }

// Process feeds one stereo sample pair through the K-weighting filter and
// the 100ms block accumulator.
func (m *LufsMeter) Process(left, right float32) {
	if !m.enabled {
		return
	}

	filteredL := m.kFilter.process(left, 0)
	filteredR := m.kFilter.process(right, 1)

	m.blockMSSum[0] += float64(filteredL) * float64(filteredL)
	m.blockMSSum[1] += float64(filteredR) * float64(filteredR)
	m.blockSampleCount++

	if m.blockSampleCount >= m.samplesPerBlock {
		m.completeBlock()
	}
}

func (m *LufsMeter) completeBlock() {
	n := float64(m.blockSampleCount)
	if n == 0 {
		return
	}

	meanL := m.blockMSSum[0] / n
	meanR := m.blockMSSum[1] / n
	blockPower := meanL + meanR

	m.blockPowers = append(m.blockPowers, blockPower)
	if len(m.blockPowers) > shortTermBlocks {
		m.blockPowers = m.blockPowers[1:]
	}
	m.allBlocks = append(m.allBlocks, blockPower)

	m.momentaryLUFS = m.windowedLUFS(momentaryBlocks)
	m.shortTermLUFS = m.windowedLUFS(shortTermBlocks)
	m.integratedLUFS = m.integratedLUFSValue()

	m.blockSampleCount = 0
	m.blockMSSum = [2]float64{}
}

func (m *LufsMeter) windowedLUFS(numBlocks int) float32 {
	count := len(m.blockPowers)
	if count > numBlocks {
		count = numBlocks
	}
	if count == 0 {
		return -100
	}

	var sum float64
	for _, p := range m.blockPowers[len(m.blockPowers)-count:] {
		sum += p
	}
	mean := sum / float64(count)
	if mean <= 0 {
		return -100
	}
	return float32(-0.691 + 10*log10(mean))
}

func (m *LufsMeter) integratedLUFSValue() float32 {
	if len(m.allBlocks) == 0 {
		return -100
	}

	absThreshold := pow10((absoluteGateLUFS + 0.691) / 10)
	var aboveAbs []float64
	for _, p := range m.allBlocks {
		if p > absThreshold {
			aboveAbs = append(aboveAbs, p)
		}
	}
	if len(aboveAbs) == 0 {
		return -100
	}

	var sum float64
	for _, p := range aboveAbs {
		sum += p
	}
	ungatedMean := sum / float64(len(aboveAbs))
	ungatedLUFS := -0.691 + 10*log10(ungatedMean)

	relThresholdLUFS := ungatedLUFS + relativeGateLU
	relThreshold := pow10((relThresholdLUFS + 0.691) / 10)

	var gated []float64
	for _, p := range aboveAbs {
		if p > relThreshold {
			gated = append(gated, p)
		}
	}
	if len(gated) == 0 {
		return -100
	}

	var gatedSum float64
	for _, p := range gated {
		gatedSum += p
	}
	gatedMean := gatedSum / float64(len(gated))
	return float32(-0.691 + 10*log10(gatedMean))
}

// MomentaryLUFS, ShortTermLUFS, IntegratedLUFS report the meter's most
// recent windowed/gated readings.
func (m *LufsMeter) MomentaryLUFS() float32  { return m.momentaryLUFS }
func (m *LufsMeter) ShortTermLUFS() float32  { return m.shortTermLUFS }
func (m *LufsMeter) IntegratedLUFS() float32 { return m.integratedLUFS }

// Reset clears all measurement state, including the integrated program.
func (m *LufsMeter) Reset() {
	m.kFilter.reset()
	m.blockSampleCount = 0
	m.blockMSSum = [2]float64{}
	m.blockPowers = m.blockPowers[:0]
	m.allBlocks = m.allBlocks[:0]
	m.momentaryLUFS = -100
	m.shortTermLUFS = -100
	m.integratedLUFS = -100
}

// ResetIntegrated clears only the integrated measurement, keeping
// momentary/short-term history (for a new program segment).
func (m *LufsMeter) ResetIntegrated() {
	m.allBlocks = m.allBlocks[:0]
	m.integratedLUFS = -100
}
