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

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
)

// -----------------------------------------------------------------------------
// Deterministic fast path
// -----------------------------------------------------------------------------

// Deterministic decides membership with a single forward pass.
//
// Description:
//
//	On a deterministic automaton every symbol has at most one successor,
//	so no frontier is needed and the check runs in O(|w|·R). Decide
//	refuses nondeterministic automata with ErrNondeterministic rather than
//	silently picking a branch.
//
// Thread Safety: Safe for concurrent use.
type Deterministic struct {
	base
}

// NewDeterministic creates the deterministic fast path.
func NewDeterministic(config *Config) *Deterministic {
	return &Deterministic{base: newBase("deterministic", KindMembership, config)}
}

// Decide runs the single pass.
func (d *Deterministic) Decide(ctx context.Context, in *Input) (*Result, error) {
	return d.run(ctx, in, d.search)
}

func (d *Deterministic) search(ctx context.Context, in *Input) (*Result, error) {
	a, w := in.Automaton, in.Word
	if !a.IsDeterministic() {
		return nil, ErrNondeterministic
	}

	b := newBudget(ctx, d.config)
	res := &Result{Verdict: Exploring}
	cur := a.InitialConfiguration()
	var trail []Step
	if d.config.Witness {
		trail = append(trail, Step{Configuration: cur, Symbol: automaton.Empty})
	}

	for _, s := range w {
		if err := b.tick(); err != nil {
			return nil, err
		}
		res.Stats.Expanded++

		alive := false
		successors(a, cur, s, func(next automaton.Configuration) {
			cur, alive = next, true
		})
		if !alive {
			res.Verdict = Rejected
			return res, nil
		}
		res.Stats.Generated++
		if d.config.Witness {
			trail = append(trail, Step{Configuration: cur, Symbol: s})
		}
	}

	res.Stats.PeakFrontier = 1
	if a.IsFinal(cur.State) {
		res.Verdict = Accepted
		res.Witness = trail
		return res, nil
	}
	res.Verdict = Rejected
	return res, nil
}
