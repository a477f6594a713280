package multiband

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/bassaes67/engine/shared"
)

// Stats is the processor's lock-free atomic statistics block, updated
// every block and read concurrently by the host's config/stats surface.
type Stats struct {
	samplesProcessed atomic.Uint64
	peakIn           atomic.Uint32 // float32 bits
	peakOut          atomic.Uint32
	underruns        atomic.Uint64
	processingNs     atomic.Int64

	// Per-band gain reduction in dB x100, one entry per band (fixed max).
	bandGainReductionX100 [maxBands]atomic.Int32

	momentaryLUFSx100   atomic.Int32
	shortTermLUFSx100   atomic.Int32
	integratedLUFSx100  atomic.Int32
}

const maxBands = 8

func (s *Stats) recordSamples(n uint64) {
	s.samplesProcessed.Add(n)
}

func (s *Stats) recordPeaks(in, out float32) {
	storeFloatMax(&s.peakIn, in)
	storeFloatMax(&s.peakOut, out)
}

func (s *Stats) recordUnderrun() {
	s.underruns.Add(1)
}

func (s *Stats) recordProcessingTime(ns int64) {
	s.processingNs.Store(ns)
}

func (s *Stats) recordBandGainReductionDB(band int, db float32) {
	if band < 0 || band >= maxBands {
		return
	}
	s.bandGainReductionX100[band].Store(int32(db * 100))
}

func (s *Stats) recordLUFS(momentary, shortTerm, integrated float32) {
	s.momentaryLUFSx100.Store(int32(momentary * 100))
	s.shortTermLUFSx100.Store(int32(shortTerm * 100))
	s.integratedLUFSx100.Store(int32(integrated * 100))
}

// SamplesProcessed returns the running sample-frame count.
func (s *Stats) SamplesProcessed() uint64 { return s.samplesProcessed.Load() }

// PeakIn returns the highest input peak seen.
func (s *Stats) PeakIn() float32 { return loadFloat(&s.peakIn) }

// PeakOut returns the highest output peak seen.
func (s *Stats) PeakOut() float32 { return loadFloat(&s.peakOut) }

// Underruns returns the count of short reads from the source channel.
func (s *Stats) Underruns() uint64 { return s.underruns.Load() }

// ProcessingNanos returns the last block's processing time.
func (s *Stats) ProcessingNanos() int64 { return s.processingNs.Load() }

// BandGainReductionDB returns the given band's most recent gain
// reduction in dB (<=0), or 0 if the band index is out of range.
func (s *Stats) BandGainReductionDB(band int) float32 {
	if band < 0 || band >= maxBands {
		return 0
	}
	return float32(s.bandGainReductionX100[band].Load()) / 100
}

// MomentaryLUFS, ShortTermLUFS, IntegratedLUFS report the LUFS meter's
// current windowed/gated readings.
func (s *Stats) MomentaryLUFS() float32  { return float32(s.momentaryLUFSx100.Load()) / 100 }
func (s *Stats) ShortTermLUFS() float32  { return float32(s.shortTermLUFSx100.Load()) / 100 }
func (s *Stats) IntegratedLUFS() float32 { return float32(s.integratedLUFSx100.Load()) / 100 }

// Report writes a human-readable, indented snapshot of the stats block
// to p — used by host-side diagnostics surfaces that want a structured
// dump rather than individual atomic reads.
func (s *Stats) Report(p *shared.Printer, numBands int) error {
	if err := p.Writeln("multiband processor stats:", 0); err != nil {
		return err
	}
	if err := p.Writeln(fmt.Sprintf("samples processed: %d", s.SamplesProcessed()), 1); err != nil {
		return err
	}
	if err := p.Writeln(fmt.Sprintf("peak in/out: %.3f / %.3f", s.PeakIn(), s.PeakOut()), 1); err != nil {
		return err
	}
	if err := p.Writeln(fmt.Sprintf("underruns: %d", s.Underruns()), 1); err != nil {
		return err
	}
	if err := p.Writeln(fmt.Sprintf("last block: %dns", s.ProcessingNanos()), 1); err != nil {
		return err
	}
	if err := p.Writeln("bands:", 1); err != nil {
		return err
	}
	for i := 0; i < numBands; i++ {
		if err := p.Writeln(fmt.Sprintf("band %d gain reduction: %.2fdB", i, s.BandGainReductionDB(i)), 2); err != nil {
			return err
		}
	}
	if err := p.Writeln(fmt.Sprintf("lufs momentary/short-term/integrated: %.1f / %.1f / %.1f",
		s.MomentaryLUFS(), s.ShortTermLUFS(), s.IntegratedLUFS()), 1); err != nil {
		return err
	}
	return nil
}

func storeFloatMax(a *atomic.Uint32, v float32) {
	for {
		cur := loadFloat(a)
		if v <= cur {
			return
		}
		if a.CompareAndSwap(math.Float32bits(cur), math.Float32bits(v)) {
			return
		}
	}
}

func loadFloat(a *atomic.Uint32) float32 {
	return math.Float32frombits(a.Load())
}
