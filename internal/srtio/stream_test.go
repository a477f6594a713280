package srtio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigTimeoutDefault(t *testing.T) {
	var c Config
	assert.Equal(t, 3*time.Second, c.timeout())

	c.Timeout = 500 * time.Millisecond
	assert.Equal(t, 500*time.Millisecond, c.timeout())
}

func TestNewStreamReportsURL(t *testing.T) {
	s := NewStream(nil, "srt://127.0.0.1:9000", Config{Host: "127.0.0.1", Port: 9000}, nil)
	assert.Equal(t, "srt://127.0.0.1:9000", s.URL())
}
