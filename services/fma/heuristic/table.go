// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package heuristic precomputes path-count scores that guide search.
//
// Description:
//
//	Table holds hScore[state][n], the number of transition paths of exactly
//	n edges from state to a final state in the relaxed transition graph
//	(registers ignored), saturating at math.MaxInt32. Every symbol of a word
//	consumes exactly one edge, so a zero score proves that no accepting run
//	consuming exactly n more symbols starts in that state.
package heuristic

import (
	"math"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
)

// Saturated is the ceiling of every score.
const Saturated = math.MaxInt32

// Table is an automaton augmented with its hScore table.
//
// Thread Safety: Immutable after Load; safe for concurrent reads.
type Table struct {
	automaton *automaton.Automaton
	scores    [][]int32
	horizon   int
}

// Load computes scores for residual lengths 0..horizon.
//
// Description:
//
//	h[s][0] = 1 if s is final, else 0.
//	h[s][n] = sum over every (register, target) edge leaving s of
//	h[target][n-1], clamped at Saturated.
//
// Inputs:
//   - a: The automaton. Must not be nil.
//   - horizon: Largest residual length of interest. Negative means 0.
//
// Outputs:
//   - *Table: The read-only table.
func Load(a *automaton.Automaton, horizon int) *Table {
	if horizon < 0 {
		horizon = 0
	}
	n := a.NumStates()
	scores := make([][]int32, n)
	for q := range scores {
		scores[q] = make([]int32, horizon+1)
		if a.IsFinal(q) {
			scores[q][0] = 1
		}
	}

	for k := 1; k <= horizon; k++ {
		for q := 0; q < n; q++ {
			var sum int64
			for reg := 0; reg < a.NumRegisters() && sum < Saturated; reg++ {
				for _, t := range a.Transitions(q, reg) {
					sum += int64(scores[t][k-1])
					if sum >= Saturated {
						sum = Saturated
						break
					}
				}
			}
			scores[q][k] = int32(sum)
		}
	}

	return &Table{automaton: a, scores: scores, horizon: horizon}
}

// Automaton returns the automaton the table was computed for.
func (t *Table) Automaton() *automaton.Automaton {
	return t.automaton
}

// Horizon returns the largest residual length the table covers.
func (t *Table) Horizon() int {
	return t.horizon
}

// Covers reports whether the table was computed for a and reaches n.
func (t *Table) Covers(a *automaton.Automaton, n int) bool {
	return t != nil && t.automaton == a && n <= t.horizon
}

// Score returns hScore[state][n].
//
// Residual lengths outside [0, Horizon()] return Saturated, which never
// prunes.
func (t *Table) Score(state, n int) int {
	if n < 0 || n > t.horizon {
		return Saturated
	}
	return int(t.scores[state][n])
}
