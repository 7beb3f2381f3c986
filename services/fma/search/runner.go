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
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianFMA/services/fma/telemetry"
)

// -----------------------------------------------------------------------------
// Runner
// -----------------------------------------------------------------------------

// Outcome is the record of one algorithm run by a Runner.
type Outcome struct {
	// Name is the algorithm name.
	Name string

	// Result is nil when Err is set.
	Result *Result

	// Err is the algorithm error, or the context error when cancelled.
	Err error

	// Duration is the wall time including setup.
	Duration time.Duration

	// Cancelled is true when the run's context ended before it returned.
	Cancelled bool
}

// Success reports whether the run produced a verdict.
func (o *Outcome) Success() bool {
	return o.Err == nil && o.Result != nil
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records every outcome on m.
func WithMetrics(m *telemetry.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// Runner executes algorithms in goroutines and collects their outcomes.
//
// Description:
//
//	Each Run spawns one goroutine that enforces the algorithm's timeout,
//	opens an "algorithm.<name>" span, records metrics and sends an Outcome
//	on a buffered channel. Collect waits for every run and drains the
//	channel. Inputs are shared read-only between runs.
//
// Thread Safety: Run is safe for concurrent calls. Collect must be called
// once, after the last Run.
type Runner struct {
	mu      sync.Mutex
	results chan *Outcome
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *telemetry.Metrics

	started   int
	completed int
}

// NewRunner creates a runner whose channel buffers capacity outcomes.
// Runs beyond capacity block until Collect drains them.
func NewRunner(capacity int, opts ...RunnerOption) *Runner {
	if capacity <= 0 {
		capacity = 8
	}
	r := &Runner{
		results: make(chan *Outcome, capacity),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(slog.String("component", "search_runner"))
	return r
}

// Run starts algo on in in a new goroutine.
func (r *Runner) Run(ctx context.Context, algo Algorithm, in *Input) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()

	r.wg.Add(1)
	go r.runAlgorithm(ctx, algo, in)
}

func (r *Runner) runAlgorithm(ctx context.Context, algo Algorithm, in *Input) {
	defer r.wg.Done()

	name := algo.Name()
	start := time.Now()

	timeout := algo.Timeout()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := telemetry.StartSpan(ctx, "algorithm."+name,
		attribute.String("algorithm", name),
		attribute.String("kind", algo.Kind().String()),
		attribute.String("timeout", timeout.String()),
	)
	defer span.End()

	res, err := algo.Decide(ctx, in)
	out := &Outcome{
		Name:     name,
		Result:   res,
		Err:      err,
		Duration: time.Since(start),
	}
	if ctx.Err() != nil && err != nil {
		out.Cancelled = true
	}

	span.SetAttributes(
		attribute.Int64("duration_ms", out.Duration.Milliseconds()),
		attribute.Bool("success", out.Success()),
		attribute.Bool("cancelled", out.Cancelled),
	)
	logger := telemetry.LoggerWithTrace(ctx, r.logger)
	if err != nil {
		telemetry.RecordError(span, err)
		r.metrics.RecordError(ctx, name, errorReason(err))
		if !out.Cancelled {
			logger.Warn("algorithm failed",
				slog.String("algorithm", name),
				slog.Duration("duration", out.Duration),
				slog.String("error", err.Error()),
			)
		}
	} else {
		span.SetAttributes(
			attribute.String("verdict", res.Verdict.String()),
			attribute.Int("expanded", res.Stats.Expanded),
		)
		r.metrics.RecordDecision(ctx, telemetry.Decision{
			Algorithm:    name,
			Kind:         algo.Kind().String(),
			Verdict:      res.Verdict.String(),
			Expanded:     res.Stats.Expanded,
			PeakFrontier: res.Stats.PeakFrontier,
			Duration:     res.Duration,
		})
		logger.Debug("algorithm completed",
			slog.String("algorithm", name),
			slog.String("verdict", res.Verdict.String()),
			slog.Duration("duration", out.Duration),
		)
	}

	r.mu.Lock()
	r.completed++
	r.mu.Unlock()

	r.results <- out
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrBudgetExceeded):
		return "budget"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, ErrNondeterministic):
		return "nondeterministic"
	default:
		return "error"
	}
}

// Collect waits for every started run and returns the outcomes sorted by
// algorithm name.
//
// Outputs:
//   - []*Outcome: One entry per Run, failures included.
//   - error: ctx.Err() if ctx ends first; the runs keep going until their
//     own contexts end.
func (r *Runner) Collect(ctx context.Context) ([]*Outcome, error) {
	done := make(chan struct{})
	var outcomes []*Outcome
	go func() {
		defer close(done)
		finished := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(finished)
		}()
		for {
			select {
			case o := <-r.results:
				outcomes = append(outcomes, o)
			case <-finished:
				for {
					select {
					case o := <-r.results:
						outcomes = append(outcomes, o)
					default:
						return
					}
				}
			}
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	slices.SortFunc(outcomes, func(a, b *Outcome) int {
		return strings.Compare(a.Name, b.Name)
	})
	return outcomes, nil
}

// Stats returns execution counters.
func (r *Runner) Stats() RunnerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RunnerStats{
		Started:   r.started,
		Completed: r.completed,
		Pending:   r.started - r.completed,
	}
}

// RunnerStats contains runner execution counters.
type RunnerStats struct {
	Started   int
	Completed int
	Pending   int
}

// -----------------------------------------------------------------------------
// Parallel decision
// -----------------------------------------------------------------------------

// Decide runs every algorithm on in concurrently and cross-validates the
// verdicts.
//
// Outputs:
//   - Verdict: The agreed verdict.
//   - []*Outcome: Every outcome, sorted by algorithm name.
//   - error: ErrDisagreement if two successful runs differ, or the joined
//     errors when no run succeeded.
func Decide(ctx context.Context, in *Input, algos []Algorithm, opts ...RunnerOption) (Verdict, []*Outcome, error) {
	runner := NewRunner(len(algos), opts...)
	for _, algo := range algos {
		runner.Run(ctx, algo, in)
	}
	outcomes, err := runner.Collect(ctx)
	if err != nil {
		return Exploring, nil, err
	}
	verdict, err := CrossValidate(outcomes)
	if errors.Is(err, ErrDisagreement) && len(algos) > 0 {
		runner.metrics.RecordDisagreement(ctx, algos[0].Kind().String())
	}
	return verdict, outcomes, err
}

// CrossValidate returns the verdict shared by every successful outcome.
// Failed outcomes are ignored unless all of them failed.
func CrossValidate(outcomes []*Outcome) (Verdict, error) {
	verdict := Exploring
	var agreed string
	var errs []error
	for _, o := range outcomes {
		if !o.Success() {
			if o.Err != nil {
				errs = append(errs, o.Err)
			}
			continue
		}
		if verdict == Exploring {
			verdict = o.Result.Verdict
			agreed = o.Name
			continue
		}
		if o.Result.Verdict != verdict {
			return Exploring, fmt.Errorf("%w: %s says %s, %s says %s",
				ErrDisagreement, agreed, verdict, o.Name, o.Result.Verdict)
		}
	}
	if verdict == Exploring {
		if len(errs) == 0 {
			return Exploring, fmt.Errorf("%w: no algorithms ran", ErrInvalidConfig)
		}
		return Exploring, errors.Join(errs...)
	}
	return verdict, nil
}
