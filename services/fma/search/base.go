// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"log/slog"
	"time"
)

// searchFunc is the core of one algorithm. It receives a validated input.
type searchFunc func(ctx context.Context, in *Input) (*Result, error)

// base carries what every algorithm shares.
type base struct {
	name   string
	kind   Kind
	config *Config
}

func newBase(name string, kind Kind, config *Config) base {
	return base{name: name, kind: kind, config: orDefault(config)}
}

// Name returns the algorithm name.
func (b *base) Name() string {
	return b.name
}

// Kind returns the question the algorithm answers.
func (b *base) Kind() Kind {
	return b.kind
}

// Timeout returns the runner-enforced deadline.
func (b *base) Timeout() time.Duration {
	return b.config.Timeout
}

// run validates the input, times the search and wraps failures.
func (b *base) run(ctx context.Context, in *Input, fn searchFunc) (*Result, error) {
	if err := in.validate(b.kind); err != nil {
		return nil, NewAlgorithmError(b.name, "Decide", err)
	}
	if err := b.config.Validate(); err != nil {
		return nil, NewAlgorithmError(b.name, "Decide", err)
	}

	start := time.Now()
	res, err := fn(ctx, in)
	if err != nil {
		return nil, NewAlgorithmError(b.name, "Decide", err)
	}
	res.Algorithm = b.name
	res.Duration = time.Since(start)

	b.config.logger(b.name).Debug("decision complete",
		slog.String("verdict", res.Verdict.String()),
		slog.Int("expanded", res.Stats.Expanded),
		slog.Int("peak_frontier", res.Stats.PeakFrontier),
		slog.Duration("duration", res.Duration),
	)
	return res, nil
}
