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
	"time"

	"github.com/AleutianAI/AleutianFMA/services/fma/generate"
	"github.com/AleutianAI/AleutianFMA/services/fma/strips"
)

// FMAConfig is the on-disk configuration of the fma CLI.
type FMAConfig struct {
	// Search: defaults for member and empty
	Search SearchConfig `yaml:"search"`

	// Encoder: defaults for encode
	Encoder strips.Options `yaml:"encoder"`

	// Bench: workload for the bench command
	Bench BenchConfig `yaml:"bench"`

	// Store: where run records go
	Store StoreConfig `yaml:"store"`

	// Telemetry: OTel exporters
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Log: slog level
	Log LogConfig `yaml:"log"`
}

type SearchConfig struct {
	// Algorithm is a registry name, "auto" (deterministic when possible,
	// else bflgs) or "all" (every membership strategy, cross-validated).
	Algorithm     string        `yaml:"algorithm" validate:"oneof=auto all deterministic ldfts bflgs greedy astar"`
	MaxNodes      int           `yaml:"max_nodes" validate:"min=0"`
	CheckInterval int           `yaml:"check_interval" validate:"min=1"`
	Timeout       time.Duration `yaml:"timeout" validate:"min=0"`
	Witness       bool          `yaml:"witness"`
}

type BenchConfig struct {
	Automata      int             `yaml:"automata" validate:"min=1"`
	Words         int             `yaml:"words" validate:"min=1"`
	MaxWordLength int             `yaml:"max_word_length" validate:"min=0"`
	Alphabet      int             `yaml:"alphabet" validate:"min=1"`
	Seed          uint64          `yaml:"seed"`
	Parallelism   int             `yaml:"parallelism" validate:"min=1,max=256"`
	Shape         generate.Params `yaml:"shape"`
}

type StoreConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path" validate:"required_without=InMemory"`
	InMemory bool   `yaml:"in_memory"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	MetricsAddr    string `yaml:"metrics_addr"` // e.g. ":9090"; serves /metrics during bench
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir"`  // also append JSON records to a daily file here
	JSON  bool   `yaml:"json"` // JSON instead of text on stderr
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() FMAConfig {
	return FMAConfig{
		Search: SearchConfig{
			Algorithm:     "auto",
			CheckInterval: 1024,
			Timeout:       30 * time.Second,
		},
		Encoder: strips.Options{Smart: true},
		Bench: BenchConfig{
			Automata:      20,
			Words:         50,
			MaxWordLength: 12,
			Alphabet:      6,
			Seed:          1,
			Parallelism:   4,
			Shape:         generate.DefaultParams(),
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "~/.fma/store",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
		},
		Log: LogConfig{Level: "warn"},
	}
}
