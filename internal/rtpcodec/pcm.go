package rtpcodec

import "github.com/bassaes67/engine/shared"

// PCM16Codec is big-endian 16-bit linear PCM (L16), AES67's canonical
// payload for professional audio.
type PCM16Codec struct {
	frameSize int
	channels  int
	pt        uint8
}

func NewPCM16Codec(frameSize, channels int, pt uint8) *PCM16Codec {
	return &PCM16Codec{frameSize: frameSize, channels: channels, pt: pt}
}

func (c *PCM16Codec) FrameSize() int    { return c.frameSize }
func (c *PCM16Codec) Channels() int     { return c.channels }
func (c *PCM16Codec) PayloadType() uint8 { return c.pt }

func (c *PCM16Codec) Encode(pcm []float32, out []byte) ([]byte, error) {
	for _, s := range pcm {
		v := int16(clampToUnit(s) * 32767)
		out = append(out, byte(v>>8), byte(v))
	}
	return out, nil
}

func (c *PCM16Codec) Decode(in []byte, out []float32) ([]float32, error) {
	if len(in)%2 != 0 {
		return out, shared.ErrCodecDecode
	}
	for i := 0; i+1 < len(in); i += 2 {
		v := int16(uint16(in[i])<<8 | uint16(in[i+1]))
		out = append(out, float32(v)/32767)
	}
	return out, nil
}

// PCM24Codec is big-endian 24-bit linear PCM (L24).
type PCM24Codec struct {
	frameSize int
	channels  int
	pt        uint8
}

func NewPCM24Codec(frameSize, channels int, pt uint8) *PCM24Codec {
	return &PCM24Codec{frameSize: frameSize, channels: channels, pt: pt}
}

func (c *PCM24Codec) FrameSize() int    { return c.frameSize }
func (c *PCM24Codec) Channels() int     { return c.channels }
func (c *PCM24Codec) PayloadType() uint8 { return c.pt }

const pcm24FullScale = 8388607 // 2^23 - 1

func (c *PCM24Codec) Encode(pcm []float32, out []byte) ([]byte, error) {
	for _, s := range pcm {
		v := int32(clampToUnit(s) * pcm24FullScale)
		out = append(out, byte(v>>16), byte(v>>8), byte(v))
	}
	return out, nil
}

func (c *PCM24Codec) Decode(in []byte, out []float32) ([]float32, error) {
	if len(in)%3 != 0 {
		return out, shared.ErrCodecDecode
	}
	for i := 0; i+2 < len(in); i += 3 {
		v := int32(in[i])<<16 | int32(in[i+1])<<8 | int32(in[i+2])
		// sign-extend the 24-bit value
		if v&0x800000 != 0 {
			v |= ^int32(0xFFFFFF)
		}
		out = append(out, float32(v)/pcm24FullScale)
	}
	return out, nil
}
