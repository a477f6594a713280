package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDefaults(), d)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bassaes67.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nmax_reorder: 64\n"), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", d.LogLevel)
	assert.Equal(t, 64, d.MaxReorder)
	assert.Equal(t, 2000, d.FailoverGraceMs) // untouched default survives merge
}
