// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the decision instruments. All names carry the "fma_" prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// DecisionsTotal counts finished decisions by algorithm, kind and verdict.
	DecisionsTotal metric.Int64Counter

	// DecisionDuration records decision wall time in seconds.
	DecisionDuration metric.Float64Histogram

	// NodesExpanded counts configurations expanded by algorithm.
	NodesExpanded metric.Int64Counter

	// PeakFrontier records the largest frontier of each decision.
	PeakFrontier metric.Int64Histogram

	// ErrorsTotal counts failed decisions by algorithm and reason.
	ErrorsTotal metric.Int64Counter

	// DisagreementsTotal counts cross-validation mismatches.
	DisagreementsTotal metric.Int64Counter
}

// NewMetrics registers every instrument with meter.
//
// Example:
//
//	m, err := telemetry.NewMetrics(otel.Meter("fma"))
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.DecisionsTotal, err = meter.Int64Counter(
		"fma_decisions_total",
		metric.WithDescription("Total decisions by algorithm, kind and verdict"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fma_decisions_total: %w", err)
	}

	m.DecisionDuration, err = meter.Float64Histogram(
		"fma_decision_duration_seconds",
		metric.WithDescription("Decision duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.001, 0.01, 0.1, 1, 10, 60),
	)
	if err != nil {
		return nil, fmt.Errorf("create fma_decision_duration_seconds: %w", err)
	}

	m.NodesExpanded, err = meter.Int64Counter(
		"fma_nodes_expanded_total",
		metric.WithDescription("Configurations expanded"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fma_nodes_expanded_total: %w", err)
	}

	m.PeakFrontier, err = meter.Int64Histogram(
		"fma_peak_frontier",
		metric.WithDescription("Largest frontier per decision"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fma_peak_frontier: %w", err)
	}

	m.ErrorsTotal, err = meter.Int64Counter(
		"fma_errors_total",
		metric.WithDescription("Failed decisions by algorithm and reason"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fma_errors_total: %w", err)
	}

	m.DisagreementsTotal, err = meter.Int64Counter(
		"fma_disagreements_total",
		metric.WithDescription("Verdict mismatches between algorithms"),
		metric.WithUnit("{disagreement}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fma_disagreements_total: %w", err)
	}

	return m, nil
}

// Decision is one finished algorithm run as seen by RecordDecision.
type Decision struct {
	Algorithm    string
	Kind         string
	Verdict      string
	Expanded     int
	PeakFrontier int
	Duration     time.Duration
}

// RecordDecision records a successful run. A nil receiver is a no-op.
func (m *Metrics) RecordDecision(ctx context.Context, d Decision) {
	if m == nil {
		return
	}
	algo := attribute.String("algorithm", d.Algorithm)
	m.DecisionsTotal.Add(ctx, 1, metric.WithAttributes(
		algo,
		attribute.String("kind", d.Kind),
		attribute.String("verdict", d.Verdict),
	))
	m.DecisionDuration.Record(ctx, d.Duration.Seconds(), metric.WithAttributes(algo))
	m.NodesExpanded.Add(ctx, int64(d.Expanded), metric.WithAttributes(algo))
	m.PeakFrontier.Record(ctx, int64(d.PeakFrontier), metric.WithAttributes(algo))
}

// RecordError records a failed run under a short reason such as "budget"
// or "timeout". A nil receiver is a no-op.
func (m *Metrics) RecordError(ctx context.Context, algorithm, reason string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("algorithm", algorithm),
		attribute.String("reason", reason),
	))
}

// RecordDisagreement records one cross-validation mismatch.
func (m *Metrics) RecordDisagreement(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.DisagreementsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
