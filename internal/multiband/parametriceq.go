package multiband

import "github.com/bassaes67/engine/internal/dsp"

const maxEQBands = maxBands

// eqBand is a single peaking filter section; it is a no-op pass-through
// when disabled or its gain is effectively flat.
type eqBand struct {
	filter     dsp.Biquad
	enabled    bool
	frequency  float32
	q          float32
	gainDB     float32
	sampleRate float32
}

func newEQBand(sampleRate, frequency, q, gainDB float32, enabled bool) eqBand {
	return eqBand{
		filter:     dsp.Peaking(frequency, q, gainDB, sampleRate),
		enabled:    enabled,
		frequency:  frequency,
		q:          q,
		gainDB:     gainDB,
		sampleRate: sampleRate,
	}
}

func (b *eqBand) process(input float32, channel int) float32 {
	if !b.enabled || absf(b.gainDB) < 0.01 {
		return input
	}
	return b.filter.Process(input, channel)
}

func (b *eqBand) setParams(frequency, q, gainDB float32, enabled bool) {
	b.frequency = frequency
	b.q = q
	b.gainDB = gainDB
	b.enabled = enabled
	b.filter = dsp.Peaking(frequency, q, gainDB, b.sampleRate)
}

func (b *eqBand) reset() { b.filter.Reset() }

// ParametricEQ is an optional per-band pre-crossover peaking EQ stage,
// one independent section per multiband channel.
type ParametricEQ struct {
	bands      [maxEQBands]eqBand
	numBands   int
	enabled    bool
	sampleRate float32
}

// NewParametricEQ builds a flat (all bands disabled) EQ for numBands
// bands, seeded with the standard broadcast band-center defaults.
func NewParametricEQ(sampleRate float32, numBands int) *ParametricEQ {
	if numBands > maxEQBands {
		numBands = maxEQBands
	}
	defaults := [maxEQBands]float32{60, 250, 1000, 4000, 12000, 16000, 18000, 20000}

	eq := &ParametricEQ{numBands: numBands, sampleRate: sampleRate}
	for i := 0; i < numBands; i++ {
		eq.bands[i] = newEQBand(sampleRate, defaults[i], 1.0, 0.0, false)
	}
	return eq
}

// ProcessBand runs one sample through the given band's EQ section.
func (eq *ParametricEQ) ProcessBand(band int, input float32, channel int) float32 {
	if !eq.enabled || band < 0 || band >= eq.numBands {
		return input
	}
	return eq.bands[band].process(input, channel)
}

// SetBand reconfigures one band's center/Q/gain/enabled state.
func (eq *ParametricEQ) SetBand(band int, frequency, q, gainDB float32, enabled bool) {
	if band >= 0 && band < eq.numBands {
		eq.bands[band].setParams(frequency, q, gainDB, enabled)
	}
}

func (eq *ParametricEQ) SetEnabled(e bool) { eq.enabled = e }
func (eq *ParametricEQ) IsEnabled() bool   { return eq.enabled }

// Reset clears all band filter states.
func (eq *ParametricEQ) Reset() {
	for i := range eq.bands[:eq.numBands] {
		eq.bands[i].reset()
	}
}
