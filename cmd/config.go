package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/weberfit/internal/weber"
	"gopkg.in/yaml.v3"
)

// loadSolverConfig returns the default solver configuration overlaid with
// the YAML file at path. An empty path yields the defaults.
//
// Example:
//
//	method: nelder-mead
//	weighted: true
//	seedIndex: -1
//	randSeed: 7
//	settings:
//	  epsilon: 1.0e-12
//	  maxIterations: 10000
//	  stopRule: ranked
func loadSolverConfig(path string) (weber.Config, error) {
	cfg := weber.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Settings.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
