// Package rtpcodec implements RFC 3550 RTP header parsing/building and the
// codec façade (PCM, G.711, G.722, Opus) that the RX/TX paths encode and
// decode payloads through.
package rtpcodec

import (
	"encoding/binary"

	"github.com/bassaes67/engine/shared"
)

// Header is a parsed RTP fixed header (12 bytes plus CSRC list).
type Header struct {
	Version    uint8
	Padding    bool
	Extension  bool
	CSRCCount  uint8
	Marker     bool
	PayloadType uint8
	Sequence   uint16
	Timestamp  uint32
	SSRC       uint32
}

// HeaderSize returns the fixed header's size including its CSRC list, not
// counting any extension header.
func (h Header) HeaderSize() int {
	return 12 + int(h.CSRCCount)*4
}

// ParseHeader parses the fixed RTP header from data. Version other than 2
// is rejected per spec.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < 12 {
		return Header{}, shared.ErrShortPacket
	}

	byte0 := data[0]
	version := (byte0 >> 6) & 0x03
	if version != 2 {
		return Header{}, shared.ErrBadRTPVersion
	}

	h := Header{
		Version:     version,
		Padding:     byte0&0x20 != 0,
		Extension:   byte0&0x10 != 0,
		CSRCCount:   byte0 & 0x0F,
		Marker:      data[1]&0x80 != 0,
		PayloadType: data[1] & 0x7F,
		Sequence:    binary.BigEndian.Uint16(data[2:4]),
		Timestamp:   binary.BigEndian.Uint32(data[4:8]),
		SSRC:        binary.BigEndian.Uint32(data[8:12]),
	}
	return h, nil
}

// Encode writes the fixed header into buf (must be at least 12 bytes) and
// returns the number of bytes written.
func (h Header) Encode(buf []byte) int {
	if len(buf) < 12 {
		return 0
	}

	byte0 := h.Version << 6
	if h.Padding {
		byte0 |= 0x20
	}
	if h.Extension {
		byte0 |= 0x10
	}
	byte0 |= h.CSRCCount & 0x0F

	byte1 := h.PayloadType & 0x7F
	if h.Marker {
		byte1 |= 0x80
	}

	buf[0] = byte0
	buf[1] = byte1
	binary.BigEndian.PutUint16(buf[2:4], h.Sequence)
	binary.BigEndian.PutUint32(buf[4:8], h.Timestamp)
	binary.BigEndian.PutUint32(buf[8:12], h.SSRC)

	return 12
}

// Packet is a parsed RTP packet: the header plus a reference to the
// payload slice (after header + CSRCs + extension, with any trailing
// padding trimmed).
type Packet struct {
	Header  Header
	Payload []byte
}

// ParsePacket parses an RTP packet from data, validating extension length
// and padding length against the available bytes.
func ParsePacket(data []byte) (Packet, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return Packet{}, err
	}

	offset := header.HeaderSize()

	if header.Extension {
		if len(data) < offset+4 {
			return Packet{}, shared.ErrShortPacket
		}
		extWords := int(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
		offset += 4 + extWords*4
	}

	if offset > len(data) {
		return Packet{}, shared.ErrShortPacket
	}

	payloadEnd := len(data)
	if header.Padding && len(data) > 0 {
		paddingLen := int(data[len(data)-1])
		if paddingLen > len(data)-offset {
			return Packet{}, shared.ErrBadPadding
		}
		payloadEnd = len(data) - paddingLen
	}

	return Packet{
		Header:  header,
		Payload: data[offset:payloadEnd],
	}, nil
}

// SignedSeqDist computes the signed 16-bit modular distance a-b,
// reinterpreted as a signed i16; this underlies every reorder decision in
// the receive path.
func SignedSeqDist(a, b uint16) int16 {
	return int16(a - b)
}
