// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(&cfg))
}

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fma", "fma.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.Search.Algorithm)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk FMAConfig
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, DefaultConfig().Bench, onDisk.Bench)
	assert.Equal(t, 30*time.Second, onDisk.Search.Timeout)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fma.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  algorithm: astar\n  timeout: 5s\nstore:\n  in_memory: true\n  path: \"\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "astar", cfg.Search.Algorithm)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 1024, cfg.Search.CheckInterval)
	assert.True(t, cfg.Store.InMemory)
	assert.Equal(t, 4, cfg.Bench.Parallelism)
}

func TestLoad_EncoderSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fma.yaml")
	require.NoError(t, os.WriteFile(path, []byte("encoder:\n  horizon: 7\n  smart: false\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Encoder.Horizon)
	assert.False(t, cfg.Encoder.Smart)

	require.NoError(t, os.WriteFile(path, []byte("encoder:\n  horizon: -2\n"), 0644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorContains(t, err, "Horizon")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FMAConfig)
	}{
		{"unknown algorithm", func(c *FMAConfig) { c.Search.Algorithm = "dfs" }},
		{"zero check interval", func(c *FMAConfig) { c.Search.CheckInterval = 0 }},
		{"negative horizon", func(c *FMAConfig) { c.Encoder.Horizon = -1 }},
		{"no parallelism", func(c *FMAConfig) { c.Bench.Parallelism = 0 }},
		{"bad exporter", func(c *FMAConfig) { c.Telemetry.MetricExporter = "graphite" }},
		{"bad level", func(c *FMAConfig) { c.Log.Level = "trace" }},
		{"store without path", func(c *FMAConfig) { c.Store.Path = "" }},
		{"filled beyond registers", func(c *FMAConfig) { c.Bench.Shape.Filled = c.Bench.Shape.Registers + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, Validate(&cfg), ErrInvalidConfig)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fma.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: [unclosed\n"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".fma", "store"), expandHome("~/.fma/store"))
	assert.Equal(t, "/var/fma", expandHome("/var/fma"))
}
