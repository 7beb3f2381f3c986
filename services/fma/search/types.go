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
	"time"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/heuristic"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// Package-level error definitions.
var (
	// ErrNilInput is returned when the input or its automaton is nil.
	ErrNilInput = errors.New("input must not be nil")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNondeterministic is returned by the deterministic fast path when the
	// automaton has a (state, register) pair with several targets.
	ErrNondeterministic = errors.New("automaton is not deterministic")

	// ErrBudgetExceeded is returned when a search expands more nodes than
	// Config.MaxNodes allows.
	ErrBudgetExceeded = errors.New("node budget exceeded")

	// ErrDisagreement is returned when two algorithms reach different
	// verdicts on the same input.
	ErrDisagreement = errors.New("algorithms disagree")

	// ErrUnknownAlgorithm is returned by NewAlgorithm for an unknown name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// AlgorithmError wraps an error with algorithm context.
type AlgorithmError struct {
	Algorithm string
	Operation string
	Err       error
}

func (e *AlgorithmError) Error() string {
	return e.Algorithm + "." + e.Operation + ": " + e.Err.Error()
}

func (e *AlgorithmError) Unwrap() error {
	return e.Err
}

// NewAlgorithmError creates a new algorithm error.
func NewAlgorithmError(algorithm, operation string, err error) *AlgorithmError {
	return &AlgorithmError{
		Algorithm: algorithm,
		Operation: operation,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Algorithm Interface
// -----------------------------------------------------------------------------

// Kind says which question an algorithm answers.
type Kind int

const (
	// KindMembership algorithms decide whether Input.Word is accepted.
	KindMembership Kind = iota + 1

	// KindEmptiness algorithms decide whether any word is accepted.
	KindEmptiness
)

func (k Kind) String() string {
	switch k {
	case KindMembership:
		return "membership"
	case KindEmptiness:
		return "emptiness"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Algorithm is one decision procedure.
//
// Description:
//
//	Decide answers the question of Kind() for in. Membership algorithms
//	read in.Word; emptiness algorithms ignore it. The returned Result always
//	carries Accepted or Rejected when err is nil.
//
// Thread Safety: Implementations hold only configuration and are safe for
// concurrent use; each call owns its search structures.
type Algorithm interface {
	// Name returns a stable identifier, e.g. "bflgs".
	Name() string

	// Kind returns the question the algorithm answers.
	Kind() Kind

	// Timeout returns the runner-enforced deadline. Zero means none.
	Timeout() time.Duration

	// Decide runs the search.
	//
	// Inputs:
	//   - ctx: Cancellation. Polled every Config.CheckInterval expansions.
	//   - in: The automaton and, for membership, the word.
	//
	// Outputs:
	//   - *Result: Verdict, optional witness and counters.
	//   - error: ErrNilInput, automaton.ErrInvalidSymbol,
	//     ErrBudgetExceeded, ErrNondeterministic or ctx.Err(), wrapped in
	//     *AlgorithmError.
	Decide(ctx context.Context, in *Input) (*Result, error)
}

// Input is the problem handed to an algorithm.
type Input struct {
	// Automaton is the automaton to query. Must not be nil.
	Automaton *automaton.Automaton

	// Word is the membership query. Ignored by emptiness algorithms.
	Word automaton.Word
}

// validate checks the input for the given kind.
func (in *Input) validate(kind Kind) error {
	if in == nil || in.Automaton == nil {
		return ErrNilInput
	}
	if kind == KindMembership {
		return in.Word.Validate()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Results
// -----------------------------------------------------------------------------

// Verdict is the state of a decision.
//
// Exploring is the only non-terminal value and never escapes Decide.
type Verdict int

const (
	// Exploring means the search is still running.
	Exploring Verdict = iota

	// Accepted means a final configuration was reached with the word
	// consumed (membership) or at all (emptiness).
	Accepted

	// Rejected means the frontier was exhausted.
	Rejected
)

func (v Verdict) String() string {
	switch v {
	case Exploring:
		return "exploring"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Step is one configuration of a witness path.
type Step struct {
	// Configuration is the configuration reached.
	Configuration automaton.Configuration

	// Symbol is the symbol read to reach it; Empty for the first step.
	Symbol automaton.Symbol
}

// Stats are incidental counters for benchmarking.
type Stats struct {
	// Expanded counts configurations whose successors were generated.
	Expanded int

	// Generated counts successor configurations produced.
	Generated int

	// PeakFrontier is the largest frontier (stack, level, heap) observed.
	PeakFrontier int

	// Pruned counts configurations discarded without expansion
	// (zero heuristic score, duplicate, or provably dead).
	Pruned int
}

// Result is the outcome of Decide.
type Result struct {
	// Algorithm is the name of the algorithm that produced the result.
	Algorithm string

	// Verdict is Accepted or Rejected.
	Verdict Verdict

	// Witness is the accepting path from the initial configuration, set
	// when Verdict is Accepted and witnesses were requested (always for
	// emptiness).
	Witness []Step

	// Word is the accepted word for emptiness results.
	Word automaton.Word

	// Stats are the search counters.
	Stats Stats

	// Duration is the wall time of Decide.
	Duration time.Duration
}

// Accepted reports whether the verdict is Accepted.
func (r *Result) Accepted() bool {
	return r != nil && r.Verdict == Accepted
}

// -----------------------------------------------------------------------------
// Config
// -----------------------------------------------------------------------------

// Config provides common configuration for algorithms.
type Config struct {
	// MaxNodes bounds expansions per call. Zero means unbounded.
	MaxNodes int

	// CheckInterval is how many expansions pass between ctx polls.
	CheckInterval int

	// Timeout is enforced by the Runner. Zero means none.
	Timeout time.Duration

	// Witness requests witness paths for membership results.
	Witness bool

	// Heuristic optionally supplies a precomputed table to astar. It is
	// used only when it was loaded for the same automaton and covers the
	// word length; otherwise astar loads its own.
	Heuristic *heuristic.Table

	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default algorithm configuration.
func DefaultConfig() *Config {
	return &Config{
		CheckInterval: 1024,
		Timeout:       30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxNodes < 0 {
		return fmt.Errorf("%w: max nodes %d", ErrInvalidConfig, c.MaxNodes)
	}
	if c.CheckInterval < 0 {
		return fmt.Errorf("%w: check interval %d", ErrInvalidConfig, c.CheckInterval)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// orDefault returns c, or DefaultConfig when c is nil.
func orDefault(c *Config) *Config {
	if c == nil {
		return DefaultConfig()
	}
	return c
}

func (c *Config) logger(name string) *slog.Logger {
	l := c.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("algorithm", name))
}
