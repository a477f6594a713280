// Package config loads the process-wide defaults (log level and path,
// system tick, failover/relock timings, max reorder) that sit alongside the per-stream
// URL-driven configuration. URLs remain the primary configuration
// surface (spec.md §4.10/§6); this file covers the smaller set of
// knobs that apply before any URL is opened.
package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/bassaes67/engine/shared"
)

// Defaults is the optional process-wide configuration file, normally
// named bassaes67.yaml alongside the host application.
type Defaults struct {
	LogLevel           string `yaml:"log_level"`
	LogFilePath        string `yaml:"log_file_path"`
	SystemTickMs       int    `yaml:"system_tick_ms"`
	FailoverGraceMs    int    `yaml:"failover_grace_ms"`
	RelockHysteresisMs int    `yaml:"relock_hysteresis_ms"`
	MaxReorder         int    `yaml:"max_reorder"`
}

// DefaultDefaults returns the built-in values used when no file is
// present or a key is omitted.
func DefaultDefaults() Defaults {
	return Defaults{
		LogLevel:           "info",
		SystemTickMs:       20,
		FailoverGraceMs:    2000,
		RelockHysteresisMs: 5000,
		MaxReorder:         32,
	}
}

// Load reads and merges a YAML defaults file over the built-in values.
// A missing file is not an error — the caller gets the built-in
// defaults back unchanged.
func Load(path string) (Defaults, error) {
	d := DefaultDefaults()
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return Defaults{}, err
	}

	if err := yaml.Unmarshal(data, &d); err != nil {
		return Defaults{}, shared.ErrInvalidConfig
	}
	return d, nil
}
