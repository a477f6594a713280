package pluginhost

import (
	"testing"

	"github.com/bassaes67/engine/internal/rtpcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAES67URLBasic(t *testing.T) {
	u, err := ParseAES67URL("aes67://239.192.76.52:5004")
	require.NoError(t, err)
	assert.Equal(t, "239.192.76.52", u.MulticastAddr.String())
	assert.Equal(t, uint16(5004), u.Port)
}

func TestParseAES67URLWithParams(t *testing.T) {
	u, err := ParseAES67URL("aes67://239.192.76.52:5004?iface=192.168.60.102&pt=96&jitter=10")
	require.NoError(t, err)
	assert.Equal(t, "192.168.60.102", u.Interface.String())
	assert.Equal(t, uint8(96), u.PayloadType)
	assert.Equal(t, uint32(10), u.JitterMs)
}

func TestParseRTPURLRequiresPort(t *testing.T) {
	_, err := ParseRTPURL("rtp://192.168.1.1")
	assert.Error(t, err)
}

func TestParseRTPURLWithCodec(t *testing.T) {
	u, err := ParseRTPURL("rtp://10.0.0.1:9151?codec=mp2&bitrate=256&jitter=50")
	require.NoError(t, err)
	assert.Equal(t, rtpcodec.CodecMP2, u.Codec)
	assert.Equal(t, uint32(256), u.BitrateKbps)
	assert.Equal(t, uint32(50), u.JitterMs)
}

func TestParseRTPURLRejectsBadChannels(t *testing.T) {
	_, err := ParseRTPURL("rtp://192.168.1.1:9152?channels=5")
	assert.Error(t, err)
}

func TestParseSRTURLDefaults(t *testing.T) {
	u, err := ParseSRTURL("srt://127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, SRTModeCaller, u.Mode)
	assert.Equal(t, uint32(120), u.LatencyMs)
}

func TestParseSRTURLMode(t *testing.T) {
	u, err := ParseSRTURL("srt://host:9000?mode=listener&latency=200")
	require.NoError(t, err)
	assert.Equal(t, SRTModeListener, u.Mode)
	assert.Equal(t, uint32(200), u.LatencyMs)
}

func TestParseInvalidScheme(t *testing.T) {
	_, err := ParseAES67URL("rtp://1.2.3.4:5004")
	assert.Error(t, err)
}
