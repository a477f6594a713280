// Package clock implements the shared drift-rate clock discipline used by
// the RX and TX paths: a PTPv2 servo, an Axia Livewire clock servo, a
// free-running system fallback, and a unified abstraction that fails over
// between them.
package clock

import "time"

// Source identifies which underlying clock is currently disciplining the
// pipeline.
type Source int

const (
	SourcePTP Source = iota
	SourceLivewire
	SourceSystem
)

func (s Source) String() string {
	switch s {
	case SourcePTP:
		return "PTP"
	case SourceLivewire:
		return "LW"
	case SourceSystem:
		return "SYS"
	default:
		return "UNKNOWN"
	}
}

// Sample is the single shared tuple every clock source produces.
type Sample struct {
	Locked  bool
	FreqPPB float64
}

// FreqPPM converts the sample's ppb estimate to ppm for display.
func (s Sample) FreqPPM() float64 {
	return s.FreqPPB / 1000.0
}

// Discipline is the minimal surface every clock source (PTP, Livewire,
// System) implements so the unified clock can select among them uniformly.
type Discipline interface {
	Sample() Sample
	Running() bool
	Stop()
}

// AdjustInterval folds a clock's ppm estimate into a base wall-clock sleep
// interval, clamped to +/-10%. Positive ppm means the local clock runs fast
// relative to the reference, so the interval is lengthened to compensate.
// This mirrors the PLL-adjusted timer interval the PTP and system clock
// pacers use upstream of the TX path's own pacing loop.
func AdjustInterval(base time.Duration, sample Sample) time.Duration {
	if !sample.Locked {
		return base
	}
	factor := 1.0 + sample.FreqPPM()*1e-6
	if factor < 0.9 {
		factor = 0.9
	}
	if factor > 1.1 {
		factor = 1.1
	}
	return time.Duration(float64(base) * factor)
}
