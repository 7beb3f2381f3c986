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
// Generative emptiness
// -----------------------------------------------------------------------------

// Emptiness decides whether an automaton accepts any word.
//
// Description:
//
//	Breadth-first search over the configuration graph with no input word.
//	From (q, regs) the moves are:
//	  - for every non-empty register i, read regs[i] and follow mu(q, i)
//	    with regs unchanged;
//	  - if rho(q) = r, read a fresh symbol (the smallest positive integer
//	    no register holds), store it in r and follow mu(q, r).
//	Fresh symbols are drawn from 1..R+1 beyond the initial values, so the
//	reachable (state, registers) space is finite and the visited set makes
//	the search terminate, cycles included.
//
//	Decide returns Accepted ("non-empty") as soon as a final configuration
//	is generated, together with the witness path and its word.
//
// Thread Safety: Safe for concurrent use.
type Emptiness struct {
	base
}

// NewEmptiness creates the generative emptiness search.
func NewEmptiness(config *Config) *Emptiness {
	return &Emptiness{base: newBase("emptiness", KindEmptiness, config)}
}

// Decide runs the generative search.
func (e *Emptiness) Decide(ctx context.Context, in *Input) (*Result, error) {
	return e.run(ctx, in, e.search)
}

func (e *Emptiness) search(ctx context.Context, in *Input) (*Result, error) {
	a := in.Automaton
	b := newBudget(ctx, e.config)
	lin := &lineage{enabled: true}
	visited := newSeenSet(false)
	res := &Result{Verdict: Exploring}

	accept := func(it item) *Result {
		res.Verdict = Accepted
		res.Witness = lin.path(it)
		res.Word = word(res.Witness)
		return res
	}

	root := item{cfg: a.InitialConfiguration(), symbol: automaton.Empty, parent: noParent}
	visited.insert(root.cfg, -1)
	if a.IsFinal(root.cfg.State) {
		return accept(root), nil
	}

	queue := []item{root}
	for head := 0; head < len(queue); head++ {
		res.Stats.PeakFrontier = max(res.Stats.PeakFrontier, len(queue)-head)
		cur := queue[head]
		if err := b.tick(); err != nil {
			return nil, err
		}
		res.Stats.Expanded++
		id := lin.record(cur)
		q, regs := cur.cfg.State, cur.cfg.Registers

		var found *item
		visit := func(reg int, next automaton.Registers, sym automaton.Symbol) {
			for _, t := range a.Transitions(q, reg) {
				if found != nil {
					return
				}
				res.Stats.Generated++
				child := item{cfg: automaton.Configuration{State: t, Registers: next}, symbol: sym, parent: id}
				if !visited.insert(child.cfg, -1) {
					res.Stats.Pruned++
					continue
				}
				if a.IsFinal(t) {
					found = &child
					return
				}
				queue = append(queue, child)
			}
		}

		for reg, v := range regs {
			if v != automaton.Empty {
				visit(reg, regs, v)
			}
		}
		if r, ok := a.Assignment(q); ok && found == nil && len(a.Transitions(q, r)) > 0 {
			fresh := regs.Fresh()
			visit(r, regs.With(r, fresh), fresh)
		}
		if found != nil {
			return accept(*found), nil
		}
	}

	res.Verdict = Rejected
	return res, nil
}
