package rtpcodec

import (
	"crypto/rand"
	"encoding/binary"
)

// Builder advances a monotonic sequence/timestamp pair and assembles RTP
// packets for a single transmit stream with V=2, P=0, X=0, CC=0, M=0.
type Builder struct {
	ssrc        uint32
	sequence    uint16
	timestamp   uint32
	payloadType uint8
	buf         [1500]byte
}

// NewBuilder constructs a builder with a random SSRC chosen once.
func NewBuilder(payloadType uint8) *Builder {
	return &Builder{ssrc: randomSSRC(), payloadType: payloadType}
}

// NewBuilderWithSSRC constructs a builder pinned to a caller-chosen SSRC.
func NewBuilderWithSSRC(ssrc uint32, payloadType uint8) *Builder {
	return &Builder{ssrc: ssrc, payloadType: payloadType}
}

func randomSSRC() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0x12345678
	}
	return binary.BigEndian.Uint32(b[:])
}

func (b *Builder) SetPayloadType(pt uint8) { b.payloadType = pt }

// BuildPacket assembles one RTP packet around payload, advancing sequence
// by 1 and timestamp by samplesPerPacket (both wrap naturally on overflow).
// The returned slice aliases the builder's internal buffer and is valid
// only until the next BuildPacket call.
func (b *Builder) BuildPacket(payload []byte, samplesPerPacket uint32) []byte {
	h := Header{
		Version:     2,
		PayloadType: b.payloadType,
		Sequence:    b.sequence,
		Timestamp:   b.timestamp,
		SSRC:        b.ssrc,
	}

	headerLen := h.Encode(b.buf[:])
	totalLen := headerLen + len(payload)
	if totalLen <= len(b.buf) {
		copy(b.buf[headerLen:totalLen], payload)
	} else {
		totalLen = len(b.buf)
	}

	b.sequence++
	b.timestamp += samplesPerPacket

	return b.buf[:totalLen]
}

func (b *Builder) Sequence() uint16  { return b.sequence }
func (b *Builder) Timestamp() uint32 { return b.timestamp }
func (b *Builder) SSRC() uint32      { return b.ssrc }
