// Package multiband implements the N-band Linkwitz-Riley broadcast
// loudness processor: input gain, an optional wideband AGC front-end, an
// optional per-band parametric EQ, the LR4 crossover cascade, per-band
// compressors, output gain, an optional soft clipper, and LUFS metering —
// all operating sample-accurately inside the host's pull callback.
package multiband

// BandConfig is one compressor band's tunables.
type BandConfig struct {
	ThresholdDB  float32
	Ratio        float32
	AttackMs     float32
	ReleaseMs    float32
	MakeupGainDB float32
}

// ClipMode selects the soft clipper's curve.
type ClipMode uint8

const (
	ClipHard ClipMode = iota
	ClipSoft
	ClipTanh
)

// SoftClipConfig configures the final brick-wall safety stage.
type SoftClipConfig struct {
	Enabled      bool
	CeilingDB    float32
	KneeDB       float32
	Mode         ClipMode
	Oversample   int
}

// AGCConfig configures the optional wideband front-end compressor.
type AGCConfig struct {
	Enabled       bool
	TargetLevelDB float32
	ThresholdDB   float32
	Ratio         float32
	KneeDB        float32
	AttackMs      float32
	ReleaseMs     float32
}

// EQBandConfig configures one parametric EQ peaking band.
type EQBandConfig struct {
	Enabled   bool
	Frequency float32
	Q         float32
	GainDB    float32
}

// Config is the full processor configuration: crossover frequencies split
// the spectrum into len(CrossoverFreqs)+1 bands, so len(Bands) must equal
// len(CrossoverFreqs)+1.
type Config struct {
	SampleRate      float32
	Channels        int
	CrossoverFreqs  []float32
	Bands           []BandConfig
	InputGainDB     float32
	OutputGainDB    float32
	Bypass          bool
	AGC             AGCConfig
	ParametricEQ    []EQBandConfig // one entry per band, optional pre-crossover stage
	SoftClip        SoftClipConfig
	LUFSMeterEnabled bool
}

// NumBands returns the band count implied by the crossover frequency list.
func (c Config) NumBands() int {
	return len(c.CrossoverFreqs) + 1
}
