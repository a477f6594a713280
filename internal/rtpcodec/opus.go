package rtpcodec

import (
	"github.com/hraban/opus"

	"github.com/bassaes67/engine/shared"
)

// OpusCodec wraps a CGo Opus encoder/decoder pair behind the Codec
// façade. Opus only accepts 8/12/16/24/48kHz and 1-2 channels; this
// engine always drives it at 48kHz stereo, the one rate that needs no
// resampling against the pipeline's canonical format.
type OpusCodec struct {
	pt         uint8
	frameSize  int
	channels   int
	sampleRate int

	enc *opus.Encoder
	dec *opus.Decoder

	scratch []int16
}

// NewOpusCodec builds an Opus codec for sampleRate/channels, targeting
// frameDurationMs (5, 10, or 20 are typical for this engine's packetizer).
func NewOpusCodec(sampleRate, channels int, frameDurationMs float32, pt uint8) (*OpusCodec, error) {
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, shared.ErrCodecNotAvailable
	}
	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, shared.ErrCodecNotAvailable
	}

	frameSize := int(float32(sampleRate) * frameDurationMs / 1000.0)

	return &OpusCodec{
		pt:         pt,
		frameSize:  frameSize,
		channels:   channels,
		sampleRate: sampleRate,
		enc:        enc,
		dec:        dec,
		scratch:    make([]int16, frameSize*channels),
	}, nil
}

func (c *OpusCodec) FrameSize() int    { return c.frameSize }
func (c *OpusCodec) Channels() int     { return c.channels }
func (c *OpusCodec) PayloadType() uint8 { return c.pt }

// SetBitrate sets the target encoder bitrate in bits/second.
func (c *OpusCodec) SetBitrate(bitsPerSecond int) error {
	if err := c.enc.SetBitrate(bitsPerSecond); err != nil {
		return shared.ErrCodecEncode
	}
	return nil
}

// SetComplexity sets encoder complexity, 0 (fastest) to 10 (best quality).
func (c *OpusCodec) SetComplexity(complexity int) error {
	if err := c.enc.SetComplexity(complexity); err != nil {
		return shared.ErrCodecEncode
	}
	return nil
}

func (c *OpusCodec) Encode(pcm []float32, out []byte) ([]byte, error) {
	buf := make([]byte, 4000)
	n, err := c.enc.EncodeFloat32(pcm, buf)
	if err != nil {
		return out, shared.ErrCodecEncode
	}
	return append(out, buf[:n]...), nil
}

func (c *OpusCodec) Decode(in []byte, out []float32) ([]float32, error) {
	buf := make([]float32, c.frameSize*c.channels)
	n, err := c.dec.DecodeFloat32(in, buf)
	if err != nil {
		return out, shared.ErrCodecDecode
	}
	return append(out, buf[:n*c.channels]...), nil
}
