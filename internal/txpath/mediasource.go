package txpath

import (
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/wave"
)

// NewDeviceSource adapts a mediadevices audio track into a PullFunc, for
// feeding this engine's TX pacer from a synthetic or captured source
// during development and testing rather than a live AES67/Livewire
// network feed. It reads raw (undecoded) samples via the track's sample
// reader and flattens them to interleaved float32 PCM.
func NewDeviceSource(track mediadevices.Track) (PullFunc, error) {
	reader := track.NewReader(false)

	var pending []float32

	return func(buf []float32) int {
		filled := 0
		for filled < len(buf) {
			if len(pending) == 0 {
				chunk, release, err := reader.Read()
				if err != nil {
					return filled
				}
				pending = flattenAudio(chunk)
				release()
				if len(pending) == 0 {
					return filled
				}
			}
			n := copy(buf[filled:], pending)
			pending = pending[n:]
			filled += n
		}
		return filled
	}, nil
}

// flattenAudio converts a wave.Audio chunk to interleaved float32 in
// [-1, 1], regardless of the chunk's native sample format.
func flattenAudio(chunk wave.Audio) []float32 {
	info := chunk.ChunkInfo()
	out := make([]float32, 0, info.Len*info.Channels)

	for i := 0; i < info.Len; i++ {
		for ch := 0; ch < info.Channels; ch++ {
			out = append(out, chunk.At(i, ch).Float32())
		}
	}
	return out
}
