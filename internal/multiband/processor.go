package multiband

import (
	"time"

	"github.com/bassaes67/engine/internal/dsp"
	"github.com/bassaes67/engine/shared"
)

// band couples one compressor to the crossover stage feeding it.
type band struct {
	crossover dsp.LR4Crossover // absent for the final (highest) band
	hasCrossover bool
	compressor dsp.Compressor
}

// Processor is the full multiband pipeline: input gain, optional wideband
// AGC, optional per-band parametric EQ, the right-cascaded LR4 crossover,
// per-band compressors summed to one output, output gain, an optional
// soft clipper, and LUFS metering. It runs entirely inside the host's
// pull callback and never allocates in Process.
type Processor struct {
	log shared.LoggerAdapter
	cfg Config

	inputGainLinear  float32
	outputGainLinear float32

	agc *dsp.WidebandAGC
	eq  *ParametricEQ

	bands []band

	clipper *SoftClipper
	lufs    *LufsMeter

	stats Stats
}

// NewProcessor builds a processor from cfg; cfg.Bands must have exactly
// cfg.NumBands() entries.
func NewProcessor(log shared.LoggerAdapter, cfg Config) *Processor {
	p := &Processor{
		log:              log,
		cfg:              cfg,
		inputGainLinear:  dsp.DBToLinear(cfg.InputGainDB),
		outputGainLinear: dsp.DBToLinear(cfg.OutputGainDB),
	}

	p.agc = dsp.NewWidebandAGC(cfg.SampleRate, cfg.AGC.TargetLevelDB, cfg.AGC.ThresholdDB,
		cfg.AGC.Ratio, cfg.AGC.KneeDB, cfg.AGC.AttackMs, cfg.AGC.ReleaseMs, cfg.AGC.Enabled)

	numBands := cfg.NumBands()
	p.eq = NewParametricEQ(cfg.SampleRate, numBands)
	for i, eqCfg := range cfg.ParametricEQ {
		if i >= numBands {
			break
		}
		p.eq.SetBand(i, eqCfg.Frequency, eqCfg.Q, eqCfg.GainDB, eqCfg.Enabled)
		if eqCfg.Enabled {
			p.eq.SetEnabled(true)
		}
	}

	p.bands = make([]band, numBands)
	for i := 0; i < numBands; i++ {
		bc := cfg.Bands[i]
		p.bands[i].compressor = *dsp.NewCompressor(bc.ThresholdDB, bc.Ratio, bc.AttackMs, bc.ReleaseMs, bc.MakeupGainDB, cfg.SampleRate)
		if i < len(cfg.CrossoverFreqs) {
			p.bands[i].crossover = dsp.NewLR4Crossover(cfg.CrossoverFreqs[i], cfg.SampleRate)
			p.bands[i].hasCrossover = true
		}
	}

	p.clipper = NewSoftClipper(cfg.SampleRate)
	p.clipper.SetEnabled(cfg.SoftClip.Enabled)
	p.clipper.SetParams(cfg.SoftClip.CeilingDB, cfg.SoftClip.KneeDB, cfg.SoftClip.Mode, cfg.SoftClip.Oversample)

	p.lufs = NewLufsMeter(cfg.SampleRate)
	p.lufs.SetEnabled(cfg.LUFSMeterEnabled)

	return p
}

// Process runs the full chain over an interleaved stereo buffer (frames
// of cfg.Channels samples each), writing results in place. Underreads
// from the source must already be silence-filled by the caller; Process
// only accounts for what is passed to it.
func (p *Processor) Process(buf []float32) {
	start := time.Now()
	defer func() {
		p.stats.recordProcessingTime(time.Since(start).Nanoseconds())
	}()

	channels := p.cfg.Channels
	if channels <= 0 {
		channels = 2
	}
	frames := len(buf) / channels

	p.stats.recordSamples(uint64(frames))

	peakIn := dsp.PeakLevel(buf)

	if p.cfg.Bypass {
		p.stats.recordPeaks(peakIn, peakIn)
		for i := range p.stats.bandGainReductionX100 {
			p.stats.bandGainReductionX100[i].Store(0)
		}
		return
	}

	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			idx := f*channels + ch
			sample := buf[idx] * p.inputGainLinear

			sample = p.agc.Process(sample, ch)

			var sum float32
			input := sample
			for bi := range p.bands {
				b := &p.bands[bi]

				eqIn := input
				if p.eq.IsEnabled() {
					eqIn = p.eq.ProcessBand(bi, input, ch)
				}

				var bandSample float32
				if b.hasCrossover {
					low, high := b.crossover.Split(eqIn, ch)
					bandSample = low
					input = high
				} else {
					bandSample = eqIn
				}

				compressed := b.compressor.Process(bandSample, ch)
				sum += compressed

				if ch == 0 {
					p.stats.recordBandGainReductionDB(bi, b.compressor.GainReductionDB())
				}
			}

			out := sum * p.outputGainLinear
			buf[idx] = out
		}

		if p.clipper.IsEnabled() && channels >= 2 {
			l, r := p.clipper.ProcessStereo(buf[f*channels], buf[f*channels+1])
			buf[f*channels] = l
			buf[f*channels+1] = r
		}

		if p.lufs.IsEnabled() && channels >= 2 {
			p.lufs.Process(buf[f*channels], buf[f*channels+1])
		}
	}

	peakOut := dsp.PeakLevel(buf)
	p.stats.recordPeaks(peakIn, peakOut)
	p.stats.recordLUFS(p.lufs.MomentaryLUFS(), p.lufs.ShortTermLUFS(), p.lufs.IntegratedLUFS())
}

// RecordUnderrun lets the caller (the host pull wrapper) count a short
// read from the source channel before silence-filling and calling Process.
func (p *Processor) RecordUnderrun() {
	p.stats.recordUnderrun()
}

// Stats returns the processor's atomic statistics block.
func (p *Processor) Stats() *Stats {
	return &p.stats
}

// SetBypass toggles the bypass flag at runtime.
func (p *Processor) SetBypass(bypass bool) {
	p.cfg.Bypass = bypass
}

// SetGains updates input/output gain in dB at runtime.
func (p *Processor) SetGains(inputDB, outputDB float32) {
	p.inputGainLinear = dsp.DBToLinear(inputDB)
	p.outputGainLinear = dsp.DBToLinear(outputDB)
}

// Reset clears all filter/envelope/metering state across a discontinuity.
func (p *Processor) Reset() {
	p.agc.Reset()
	p.eq.Reset()
	for i := range p.bands {
		if p.bands[i].hasCrossover {
			p.bands[i].crossover.Reset()
		}
		p.bands[i].compressor.Reset()
	}
	p.clipper.Reset()
	p.lufs.Reset()
}
