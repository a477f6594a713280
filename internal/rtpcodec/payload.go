package rtpcodec

// PayloadCodec identifies a wire codec, following the Telos Z/IP ONE
// payload-type table this plugin family targets.
type PayloadCodec int

const (
	CodecG711Ulaw PayloadCodec = iota
	CodecG722
	CodecPCM16
	CodecPCM20
	CodecPCM24
	CodecMP2
	CodecOpus
	CodecFlac
	CodecAAC
	CodecUnknown
)

// CodecFromPT maps an RTP payload type to a codec per the Telos Z/IP ONE
// table; PT 122 (AAC-LATM) is intentionally unmapped since it needs a
// native LATM decoder this package does not provide.
func CodecFromPT(pt uint8) PayloadCodec {
	switch pt {
	case 0:
		return CodecG711Ulaw
	case 9:
		return CodecG722
	case 14, 96:
		return CodecMP2
	case 21:
		return CodecPCM16
	case 22:
		return CodecPCM24
	case 99:
		return CodecAAC
	case 116:
		return CodecPCM20
	default:
		return CodecUnknown
	}
}

// DefaultPT returns the conventional payload type for a codec.
func (c PayloadCodec) DefaultPT() uint8 {
	switch c {
	case CodecG711Ulaw:
		return 0
	case CodecG722:
		return 9
	case CodecPCM16:
		return 21
	case CodecPCM20:
		return 116
	case CodecPCM24:
		return 22
	case CodecMP2:
		return 14
	case CodecOpus:
		return 111
	case CodecFlac:
		return 112
	case CodecAAC:
		return 99
	default:
		return 0
	}
}

// Name returns a human-readable codec name for stats/logging.
func (c PayloadCodec) Name() string {
	switch c {
	case CodecG711Ulaw:
		return "G.711 u-Law"
	case CodecG722:
		return "G.722"
	case CodecPCM16:
		return "PCM 16-bit"
	case CodecPCM20:
		return "PCM 20-bit"
	case CodecPCM24:
		return "PCM 24-bit"
	case CodecMP2:
		return "MP2"
	case CodecOpus:
		return "OPUS"
	case CodecFlac:
		return "FLAC"
	case CodecAAC:
		return "AAC"
	default:
		return "Unknown"
	}
}

// SamplesPerPacket returns the typical samples-per-channel-per-packet for
// this codec at sampleRate.
func (c PayloadCodec) SamplesPerPacket(sampleRate uint32) int {
	switch c {
	case CodecPCM16, CodecPCM20, CodecPCM24:
		return int(sampleRate / 1000) // 1ms
	case CodecMP2, CodecFlac:
		return 1152
	case CodecOpus:
		return int(sampleRate / 50) // 20ms
	case CodecG711Ulaw:
		return 160 // 8kHz, 20ms
	case CodecG722:
		return 320 // 16kHz, 20ms
	case CodecAAC:
		return 1024
	default:
		return int(sampleRate / 1000)
	}
}

// BytesPerSample returns the wire byte width for PCM codecs, 0 for
// compressed (variable-size) codecs.
func (c PayloadCodec) BytesPerSample() int {
	switch c {
	case CodecPCM16:
		return 2
	case CodecPCM20, CodecPCM24:
		return 3
	default:
		return 0
	}
}

// The BassCodec* constants mirror the BASS_RTP_CODEC_* numeric IDs the
// plugin-host's `codec=` configuration key exchanges.
const (
	BassCodecPCM16 uint8 = 0
	BassCodecPCM24 uint8 = 1
	BassCodecMP2   uint8 = 2
	BassCodecOpus  uint8 = 3
	BassCodecFlac  uint8 = 4
)

// CodecFromBassConstant converts a BASS_RTP_CODEC_* value to a PayloadCodec.
func CodecFromBassConstant(v uint8) PayloadCodec {
	switch v {
	case BassCodecPCM16:
		return CodecPCM16
	case BassCodecPCM24:
		return CodecPCM24
	case BassCodecMP2:
		return CodecMP2
	case BassCodecOpus:
		return CodecOpus
	case BassCodecFlac:
		return CodecFlac
	default:
		return CodecPCM16
	}
}

// CodecToBassConstant converts a PayloadCodec to its BASS_RTP_CODEC_* value.
func CodecToBassConstant(c PayloadCodec) uint8 {
	switch c {
	case CodecPCM16:
		return BassCodecPCM16
	case CodecPCM24:
		return BassCodecPCM24
	case CodecMP2:
		return BassCodecMP2
	case CodecOpus:
		return BassCodecOpus
	case CodecFlac:
		return BassCodecFlac
	default:
		return BassCodecPCM16
	}
}
