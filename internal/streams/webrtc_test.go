package streams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassaes67/engine/internal/pluginhost"
)

func TestParseWebRTCURLDefaultsToSource(t *testing.T) {
	endpoint, dir, token, err := parseWebRTCURL("webrtc://whep.example.com/stream/1")
	require.NoError(t, err)
	assert.Equal(t, "https://whep.example.com/stream/1", endpoint)
	assert.Equal(t, pluginhost.DirectionSource, dir)
	assert.Empty(t, token)
}

func TestParseWebRTCURLParsesDirAndToken(t *testing.T) {
	endpoint, dir, token, err := parseWebRTCURL("webrtc://whip.example.com/publish?dir=tx&token=abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://whip.example.com/publish", endpoint)
	assert.Equal(t, pluginhost.DirectionSink, dir)
	assert.Equal(t, "abc123", token)
}

func TestParseWebRTCURLRejectsWrongScheme(t *testing.T) {
	_, _, _, err := parseWebRTCURL("http://example.com/stream")
	assert.Error(t, err)
}
