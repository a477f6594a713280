package pluginhost

import (
	"github.com/bytedance/sonic"
)

// StreamSnapshot is a host-facing JSON view of one open stream's
// configuration and identity, used by diagnostics/status endpoints that
// want a fast-path marshal rather than encoding/json's reflection.
type StreamSnapshot struct {
	URL    string `json:"url"`
	Scheme string `json:"scheme"`
}

// MarshalSnapshot encodes a StreamSnapshot with sonic's fast-path JSON
// encoder.
func MarshalSnapshot(s StreamSnapshot) ([]byte, error) {
	return sonic.Marshal(s)
}

// UnmarshalSnapshot decodes a StreamSnapshot previously produced by
// MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (StreamSnapshot, error) {
	var s StreamSnapshot
	err := sonic.Unmarshal(data, &s)
	return s, err
}
