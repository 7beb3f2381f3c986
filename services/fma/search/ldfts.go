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
// LDFTS (depth-first)
// -----------------------------------------------------------------------------

// LDFTS decides membership depth-first over an explicit stack.
//
// Description:
//
//	The most recently pushed item is expanded first and the search stops
//	at the first final item with the word consumed. Branches are not
//	de-duplicated, which keeps memory proportional to the stack at the
//	price of repeated work on confluent branches. Termination follows from
//	the cursor growing by one on every step.
//
// Thread Safety: Safe for concurrent use.
type LDFTS struct {
	base
}

// NewLDFTS creates the depth-first strategy.
func NewLDFTS(config *Config) *LDFTS {
	return &LDFTS{base: newBase("ldfts", KindMembership, config)}
}

// Decide runs the depth-first search.
func (d *LDFTS) Decide(ctx context.Context, in *Input) (*Result, error) {
	return d.run(ctx, in, d.search)
}

func (d *LDFTS) search(ctx context.Context, in *Input) (*Result, error) {
	a, w := in.Automaton, in.Word
	b := newBudget(ctx, d.config)
	lin := &lineage{enabled: d.config.Witness}
	res := &Result{Verdict: Exploring}

	stack := []item{{cfg: a.InitialConfiguration(), symbol: automaton.Empty, parent: noParent}}
	var children []automaton.Configuration

	for len(stack) > 0 {
		res.Stats.PeakFrontier = max(res.Stats.PeakFrontier, len(stack))
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.pos == len(w) {
			if a.IsFinal(top.cfg.State) {
				res.Verdict = Accepted
				res.Witness = lin.path(top)
				return res, nil
			}
			continue
		}

		if err := b.tick(); err != nil {
			return nil, err
		}
		res.Stats.Expanded++
		id := lin.record(top)
		s := w[top.pos]

		children = children[:0]
		successors(a, top.cfg, s, func(c automaton.Configuration) {
			children = append(children, c)
		})
		res.Stats.Generated += len(children)
		// Reverse push so the first target is expanded first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, item{cfg: children[i], pos: top.pos + 1, symbol: s, parent: id})
		}
	}

	res.Verdict = Rejected
	return res, nil
}
