package txpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSilenceZeroesBuffer(t *testing.T) {
	buf := []float32{1, 2, 3}
	silence(buf)
	assert.Equal(t, []float32{0, 0, 0}, buf)
}

type fakeCodec struct{}

func (fakeCodec) Encode(pcm []float32, out []byte) ([]byte, error) { return out, nil }
func (fakeCodec) Decode(in []byte, out []float32) ([]float32, error) { return out, nil }
func (fakeCodec) FrameSize() int     { return 48 }
func (fakeCodec) Channels() int      { return 2 }
func (fakeCodec) PayloadType() uint8 { return 21 }

func TestFramePeriodComputation(t *testing.T) {
	cfg := Config{SampleRate: 48000, Channels: 2, SamplesPerPacket: 48}
	tr := NewTransmitter(nil, nil, nil, fakeCodec{}, nil, cfg, nil)
	assert.Equal(t, int64(1_000_000), tr.framePeriod.Nanoseconds()) // 1ms at 48kHz/48 samples
}
