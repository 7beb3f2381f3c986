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
// BFLGS (level-synchronised breadth-first)
// -----------------------------------------------------------------------------

// BFLGS decides membership breadth-first, one word position at a time.
//
// Description:
//
//	All items of a level share the same remaining suffix, so the level set
//	is keyed by (state, registers) alone. Leaving the cursor out of the key
//	makes equal configurations collide on purpose and keeps each level
//	free of duplicates. The search rejects as soon as a level is empty and
//	accepts iff the last level holds a final configuration.
//
// Thread Safety: Safe for concurrent use.
type BFLGS struct {
	base
}

// NewBFLGS creates the level-synchronised breadth-first strategy.
func NewBFLGS(config *Config) *BFLGS {
	return &BFLGS{base: newBase("bflgs", KindMembership, config)}
}

// Decide runs the level-by-level search.
func (d *BFLGS) Decide(ctx context.Context, in *Input) (*Result, error) {
	return d.run(ctx, in, d.search)
}

func (d *BFLGS) search(ctx context.Context, in *Input) (*Result, error) {
	a, w := in.Automaton, in.Word
	b := newBudget(ctx, d.config)
	lin := &lineage{enabled: d.config.Witness}
	res := &Result{Verdict: Exploring}

	level := []item{{cfg: a.InitialConfiguration(), symbol: automaton.Empty, parent: noParent}}
	res.Stats.PeakFrontier = 1

	for pos, s := range w {
		seen := newSeenSet(false)
		next := make([]item, 0, len(level))

		for _, it := range level {
			if err := b.tick(); err != nil {
				return nil, err
			}
			res.Stats.Expanded++
			id := lin.record(it)
			successors(a, it.cfg, s, func(c automaton.Configuration) {
				res.Stats.Generated++
				if !seen.insert(c, pos+1) {
					res.Stats.Pruned++
					return
				}
				next = append(next, item{cfg: c, pos: pos + 1, symbol: s, parent: id})
			})
		}

		if len(next) == 0 {
			res.Verdict = Rejected
			return res, nil
		}
		res.Stats.PeakFrontier = max(res.Stats.PeakFrontier, len(next))
		level = next
	}

	for _, it := range level {
		if a.IsFinal(it.cfg.State) {
			res.Verdict = Accepted
			res.Witness = lin.path(it)
			return res, nil
		}
	}
	res.Verdict = Rejected
	return res, nil
}
