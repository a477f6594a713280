// Package srtio layers a small TYPE/FORMAT/LENGTH framing envelope over
// an SRT transport (github.com/datarhei/gosrt) so that audio and
// metadata packets can share one SRT connection. SRT's own congestion
// control and encryption are left entirely to gosrt.
package srtio

import (
	"encoding/binary"

	"github.com/bassaes67/engine/shared"
)

// HeaderSize is the fixed TYPE(1)+FORMAT(1)+LENGTH(2) envelope size.
const HeaderSize = 4

// MaxPayloadSize keeps a framed packet within one SRT live-mode datagram.
const MaxPayloadSize = 1316 - HeaderSize

// Packet types.
const (
	TypeAudio uint8 = 0x01
	TypeJSON  uint8 = 0x02
)

// Audio formats, valid when Type == TypeAudio.
const (
	FormatPCML16 uint8 = 0x00
	FormatOpus   uint8 = 0x01
	FormatMP2    uint8 = 0x02
	FormatFLAC   uint8 = 0x03
)

// FormatJSONUTF8 is the sole format valid when Type == TypeJSON.
const FormatJSONUTF8 uint8 = 0x00

// Header is the 4-byte wire envelope: type, format, little-endian u16
// payload length (not including the header itself).
type Header struct {
	Type   uint8
	Format uint8
	Length uint16
}

// Encode writes the header into buf (must be at least HeaderSize bytes).
func (h Header) Encode(buf []byte) {
	buf[0] = h.Type
	buf[1] = h.Format
	binary.LittleEndian.PutUint16(buf[2:4], h.Length)
}

// DecodeHeader parses a 4-byte envelope from the front of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, shared.ErrShortPacket
	}
	return Header{
		Type:   data[0],
		Format: data[1],
		Length: binary.LittleEndian.Uint16(data[2:4]),
	}, nil
}

// Packet is a full framed packet: header plus payload.
type Packet struct {
	Header  Header
	Payload []byte
}

// EncodePacket assembles a framed packet (header + payload) into out.
func EncodePacket(ptype, format uint8, payload []byte, out []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return out, shared.ErrInvalidConfig
	}
	var hdr [HeaderSize]byte
	Header{Type: ptype, Format: format, Length: uint16(len(payload))}.Encode(hdr[:])
	out = append(out, hdr[:]...)
	out = append(out, payload...)
	return out, nil
}

// DecodePacket parses one framed packet from the front of data,
// validating that the declared length doesn't exceed what's available.
func DecodePacket(data []byte) (Packet, error) {
	header, err := DecodeHeader(data)
	if err != nil {
		return Packet{}, err
	}
	end := HeaderSize + int(header.Length)
	if len(data) < end {
		return Packet{}, shared.ErrShortPacket
	}
	return Packet{Header: header, Payload: data[HeaderSize:end]}, nil
}

// EncodePCML16 frames a TYPE_AUDIO/FORMAT_PCM_L16 packet from
// little-endian 16-bit samples.
func EncodePCML16(samples []int16, out []byte) ([]byte, error) {
	payload := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(s))
	}
	return EncodePacket(TypeAudio, FormatPCML16, payload, out)
}

// AsPCML16 decodes a packet's payload as little-endian 16-bit samples,
// returning false if the packet isn't PCM L16 audio.
func (p Packet) AsPCML16() ([]int16, bool) {
	if p.Header.Type != TypeAudio || p.Header.Format != FormatPCML16 {
		return nil, false
	}
	if len(p.Payload)%2 != 0 {
		return nil, false
	}
	samples := make([]int16, len(p.Payload)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(p.Payload[i*2:]))
	}
	return samples, true
}

// AsJSON returns the payload as a string, valid only for TypeJSON packets.
func (p Packet) AsJSON() (string, bool) {
	if p.Header.Type != TypeJSON {
		return "", false
	}
	return string(p.Payload), true
}
