package rtpcodec

// Codec is the façade every supported payload type implements: encode
// float PCM to wire bytes, decode wire bytes back to float PCM, and
// report the frame geometry the RX/TX paths need to size buffers.
//
// Float<->integer conversions clamp to +/-1.0 and scale by the codec's
// full-scale integer range. The PCM, G.711 and G.722 codecs allocate only
// by appending to the caller-supplied slices; the Opus codec also
// allocates a scratch buffer on every Encode and Decode call.
type Codec interface {
	// Encode appends the wire-format encoding of pcm (one sample per
	// channel, channels interleaved) to out, returning the extended slice.
	Encode(pcm []float32, out []byte) ([]byte, error)

	// Decode appends the decoded float samples from in to out, returning
	// the extended slice.
	Decode(in []byte, out []float32) ([]float32, error)

	// FrameSize is this codec's samples-per-channel-per-frame.
	FrameSize() int

	// Channels is the number of interleaved channels this codec instance
	// was constructed for.
	Channels() int

	// PayloadType is the RTP payload type this codec instance encodes as.
	PayloadType() uint8
}

func clampToUnit(v float32) float32 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
