package jitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferInOrderFillsToTarget(t *testing.T) {
	b := NewBuffer(4, 16, 1)
	for i := uint16(0); i < 4; i++ {
		b.Put(i, uint32(i)*160, []float32{float32(i)})
	}
	assert.Equal(t, StatePlaying, b.State())
	assert.Equal(t, 4, b.Occupancy())
}

func TestBufferDropsDuplicate(t *testing.T) {
	b := NewBuffer(2, 16, 1)
	b.Put(0, 0, []float32{1})
	b.Put(0, 0, []float32{1})
	require.Equal(t, uint64(1), b.Duplicates())
}

func TestBufferPlayoutSequenceOrder(t *testing.T) {
	b := NewBuffer(2, 16, 1)
	b.Put(0, 0, []float32{1})
	b.Put(1, 160, []float32{2})

	out := make([]float32, 1)
	played := b.Pull(out, 1)
	assert.True(t, played)
	assert.Equal(t, float32(1), out[0])

	played = b.Pull(out, 1)
	assert.True(t, played)
	assert.Equal(t, float32(2), out[0])
}

func TestBufferUnderrunSubstitutesSilence(t *testing.T) {
	b := NewBuffer(1, 16, 1)
	b.Put(0, 0, []float32{1})
	out := make([]float32, 1)
	b.Pull(out, 1) // consumes seq 0, enters refilling since empty

	out[0] = 99
	played := b.Pull(out, 1)
	assert.False(t, played)
	assert.Equal(t, float32(0), out[0])
}

func TestBufferLargeGapTriggersReset(t *testing.T) {
	b := NewBuffer(2, 8, 1)
	b.Put(0, 0, []float32{1})
	reset := b.Put(200, 0, []float32{2})
	assert.True(t, reset)
	assert.Equal(t, uint64(1), b.Resets())
}

func TestBufferOverflowPrune(t *testing.T) {
	b := NewBuffer(2, 64, 1)
	for i := uint16(0); i < 10; i++ {
		b.Put(i, uint32(i)*160, []float32{float32(i)})
	}
	assert.LessOrEqual(t, b.Occupancy(), 2*2)
	assert.Greater(t, b.OverflowPrunes(), uint64(0))
}
