package streams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassaes67/engine/internal/pluginhost"
)

func TestCodecForAES67DefaultsToPCM16(t *testing.T) {
	u, err := pluginhost.ParseAES67URL("aes67://239.192.76.52:5004")
	require.NoError(t, err)

	codec := codecForAES67(u)
	assert.Equal(t, 2, codec.Channels())
}

func TestCodecForAES67SelectsPCM24ByPayloadType(t *testing.T) {
	u, err := pluginhost.ParseAES67URL("aes67://239.192.76.52:5004?pt=22")
	require.NoError(t, err)

	codec := codecForAES67(u)
	assert.Equal(t, uint8(22), codec.PayloadType())
}

func TestAES67OpenerSchemeAndScheme(t *testing.T) {
	o := &AES67Opener{}
	assert.Equal(t, "aes67", o.Scheme())

	rtpO := &RTPOpener{}
	assert.Equal(t, "rtp", rtpO.Scheme())

	srtO := &SRTOpener{}
	assert.Equal(t, "srt", srtO.Scheme())

	wO := &WebRTCOpener{}
	assert.Equal(t, "webrtc", wO.Scheme())
}
