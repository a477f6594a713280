package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClockTicksWithoutAdjust(t *testing.T) {
	s := NewSystemClock(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx, nil)
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	assert.Greater(t, s.Ticks(), uint64(0))
}

func TestSystemClockAppliesAdjustEachTick(t *testing.T) {
	s := NewSystemClock(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	adjust := func(base time.Duration) time.Duration {
		calls.Add(1)
		return base
	}

	s.Start(ctx, adjust)
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	assert.Greater(t, calls.Load(), int64(0))
}
