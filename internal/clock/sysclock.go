package clock

import (
	"context"
	"sync/atomic"
	"time"
)

const sysClockDefaultInterval = 20 * time.Millisecond

// SystemClock is the degenerate always-available fallback: it always
// reports locked=true, freq_ppb=0, and exists only so the unified clock
// always has a pacing reference even with no real clock source configured.
type SystemClock struct {
	interval time.Duration
	running  atomic.Bool
	ticks    atomic.Uint64
}

func NewSystemClock(interval time.Duration) *SystemClock {
	if interval <= 0 {
		interval = sysClockDefaultInterval
	}
	return &SystemClock{interval: interval}
}

func (s *SystemClock) Sample() Sample {
	return Sample{Locked: true, FreqPPB: 0}
}

func (s *SystemClock) Running() bool {
	return s.running.Load()
}

// Start runs the free-running tick loop until ctx is canceled. adjust, if
// non-nil, folds the active clock's ppm estimate into the base interval
// before each sleep (the unified clock passes its own AdjustInterval so
// the fallback tick drifts in step with whichever source is active).
func (s *SystemClock) Start(ctx context.Context, adjust func(time.Duration) time.Duration) {
	s.running.Store(true)
	go func() {
		interval := s.interval
		if adjust != nil {
			interval = adjust(interval)
		}
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for s.running.Load() {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				s.ticks.Add(1)
				interval = s.interval
				if adjust != nil {
					interval = adjust(interval)
				}
				timer.Reset(interval)
			}
		}
	}()
}

func (s *SystemClock) Stop() {
	s.running.Store(false)
}

func (s *SystemClock) Ticks() uint64 {
	return s.ticks.Load()
}
