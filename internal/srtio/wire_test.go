package srtio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncodeDecode(t *testing.T) {
	var buf [HeaderSize]byte
	Header{Type: TypeAudio, Format: FormatPCML16, Length: 960}.Encode(buf[:])

	h, err := DecodeHeader(buf[:])
	require.NoError(t, err)
	assert.Equal(t, TypeAudio, h.Type)
	assert.Equal(t, FormatPCML16, h.Format)
	assert.Equal(t, uint16(960), h.Length)
}

func TestPacketPCML16RoundTrip(t *testing.T) {
	samples := []int16{1000, -1000, 2000, -2000}
	wire, err := EncodePCML16(samples, nil)
	require.NoError(t, err)

	pkt, err := DecodePacket(wire)
	require.NoError(t, err)

	decoded, ok := pkt.AsPCML16()
	require.True(t, ok)
	assert.Equal(t, samples, decoded)
}

func TestPacketJSONRoundTrip(t *testing.T) {
	wire, err := EncodePacket(TypeJSON, FormatJSONUTF8, []byte(`{"test":true}`), nil)
	require.NoError(t, err)

	pkt, err := DecodePacket(wire)
	require.NoError(t, err)

	s, ok := pkt.AsJSON()
	require.True(t, ok)
	assert.Equal(t, `{"test":true}`, s)
}

func TestDecodePacketShortBuffer(t *testing.T) {
	_, err := DecodePacket([]byte{0x01, 0x00})
	assert.Error(t, err)
}

func TestEncodePacketRejectsOversizedPayload(t *testing.T) {
	_, err := EncodePacket(TypeAudio, FormatPCML16, make([]byte, MaxPayloadSize+1), nil)
	assert.Error(t, err)
}
