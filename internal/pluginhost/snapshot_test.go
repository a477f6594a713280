package pluginhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := StreamSnapshot{URL: "aes67://239.192.76.52:5004", Scheme: "aes67"}
	data, err := MarshalSnapshot(s)
	require.NoError(t, err)

	decoded, err := UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, s, decoded)
}
