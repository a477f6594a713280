package streams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassaes67/engine/internal/pluginhost"
)

func TestCodecForRTPSelectsPCM16(t *testing.T) {
	u, err := pluginhost.ParseRTPURL("rtp://127.0.0.1:9152?codec=pcm16&channels=2")
	require.NoError(t, err)

	codec, err := codecForRTP(u)
	require.NoError(t, err)
	assert.Equal(t, 2, codec.Channels())
	assert.Equal(t, uint8(21), codec.PayloadType())
}

func TestCodecForRTPSelectsG711(t *testing.T) {
	u, err := pluginhost.ParseRTPURL("rtp://127.0.0.1:9152?codec=pcm16&channels=2")
	require.NoError(t, err)
	u.Codec = 0 // CodecG711Ulaw

	codec, err := codecForRTP(u)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), codec.PayloadType())
}

func TestCodecForRTPRejectsUnknown(t *testing.T) {
	u, err := pluginhost.ParseRTPURL("rtp://127.0.0.1:9152?codec=pcm16&channels=2")
	require.NoError(t, err)
	u.Codec = 9 // CodecUnknown

	_, err = codecForRTP(u)
	assert.Error(t, err)
}
