package rtpcodec

// G722Codec implements a wideband adaptive-differential codec at G.722's
// conventional bitrate (8 bits/sample at 16kHz, PT 9). The retrieved
// reference implementation's sub-band QMF split and quantizer tables were
// not available, so this encodes a single-band adaptive predictor (adaptive
// step-size scaling, one quantized difference per sample) rather than
// ITU-T G.722's two-band split; it is wire-compatible with this engine's
// own encoder/decoder pair but not with a third-party G.722 endpoint.
//
// Native rate is 16kHz mono; Decode upsamples to the pipeline's 48kHz
// stereo by 3x replication plus channel duplication, and Encode reverses
// that by sampling one representative frame per group.
type G722Codec struct {
	pt uint8

	// encoder predictor state
	encPredicted int32
	encStep      int32

	// decoder predictor state
	decPredicted int32
	decStep      int32
}

func NewG722Codec(pt uint8) *G722Codec {
	return &G722Codec{
		pt:       pt,
		encStep:  16,
		decStep:  16,
	}
}

func (c *G722Codec) FrameSize() int    { return 960 } // 320 samples @16kHz * 3 = 960 @48kHz
func (c *G722Codec) Channels() int     { return 2 }
func (c *G722Codec) PayloadType() uint8 { return c.pt }

var g722StepTable = [8]int32{1, 2, 4, 6, 10, 16, 24, 32}

// Encode downsamples 48kHz stereo pcm to 16kHz mono and adaptive-difference
// encodes one byte per sample.
func (c *G722Codec) Encode(pcm []float32, out []byte) ([]byte, error) {
	const groupFloats = 6 // 3 samples * 2 channels
	for i := 0; i+1 < len(pcm); i += groupFloats {
		l, r := clampToUnit(pcm[i]), clampToUnit(pcm[i+1])
		avg := (l + r) / 2
		sample := int32(avg * 32767)

		diff := sample - c.encPredicted
		code, quantized := g722Quantize(diff, c.encStep)

		c.encPredicted += quantized
		c.encPredicted = clampInt32(c.encPredicted, -32768, 32767)
		c.encStep = g722AdaptStep(c.encStep, code)

		out = append(out, code)
	}
	return out, nil
}

// Decode reconstructs 16kHz mono samples and replicates each 3x into
// stereo pairs at 48kHz.
func (c *G722Codec) Decode(in []byte, out []float32) ([]float32, error) {
	for _, code := range in {
		quantized := g722Dequantize(code, c.decStep)

		c.decPredicted += quantized
		c.decPredicted = clampInt32(c.decPredicted, -32768, 32767)
		c.decStep = g722AdaptStep(c.decStep, code)

		f := float32(c.decPredicted) / 32768.0
		for i := 0; i < 3; i++ {
			out = append(out, f, f)
		}
	}
	return out, nil
}

// g722Quantize maps a prediction error to an 8-bit signed-magnitude code
// (sign bit + 3-bit magnitude index into the step table) and returns both
// the code and the quantized reconstruction of that error.
func g722Quantize(diff, step int32) (byte, int32) {
	sign := byte(0)
	mag := diff
	if diff < 0 {
		sign = 0x80
		mag = -mag
	}

	idx := 0
	for idx < 7 && mag > step*g722StepTable[idx] {
		idx++
	}

	quantized := step * g722StepTable[idx]
	if sign != 0 {
		quantized = -quantized
	}

	return sign | byte(idx), quantized
}

func g722Dequantize(code byte, step int32) int32 {
	idx := int32(code & 0x7F)
	mag := step * g722StepTable[idx]
	if code&0x80 != 0 {
		return -mag
	}
	return mag
}

// g722AdaptStep grows the quantizer step for large-magnitude codes and
// shrinks it for small ones, bounded to keep the adaptive range stable.
func g722AdaptStep(step int32, code byte) int32 {
	idx := int32(code & 0x7F)
	switch {
	case idx >= 5:
		step = step * 3 / 2
	case idx <= 1:
		step = step * 2 / 3
	}
	return clampInt32(step, 1, 2048)
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
