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
	"container/heap"
	"context"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/heuristic"
)

// -----------------------------------------------------------------------------
// Heuristic-guided (A*-like)
// -----------------------------------------------------------------------------

// AStar decides membership best-first on hScore[state][remaining].
//
// Description:
//
//	The frontier is a max-heap on the heuristic score of the item's state
//	for the number of symbols still to read; ties prefer deeper items, then
//	insertion order. Items scoring zero cannot reach a final state in
//	exactly the remaining number of steps and are never inserted.
//
//	Duplicates are suppressed on (state, registers, cursor), not on the
//	configuration alone. The heap mixes word positions, so an equal
//	configuration at a different cursor is a different search node and
//	is kept.
//
// Thread Safety: Safe for concurrent use.
type AStar struct {
	base
}

// NewAStar creates the heuristic-guided strategy.
func NewAStar(config *Config) *AStar {
	return &AStar{base: newBase("astar", KindMembership, config)}
}

// Decide runs the best-first search.
func (d *AStar) Decide(ctx context.Context, in *Input) (*Result, error) {
	return d.run(ctx, in, d.search)
}

type scored struct {
	it    item
	score int
	seq   int
}

// priorityQueue implements heap.Interface as a max-heap on score.
type priorityQueue []scored

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].score != pq[j].score {
		return pq[i].score > pq[j].score
	}
	if pq[i].it.pos != pq[j].it.pos {
		return pq[i].it.pos > pq[j].it.pos
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) { *pq = append(*pq, x.(scored)) }

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	x := old[n-1]
	*pq = old[:n-1]
	return x
}

func (d *AStar) table(a *automaton.Automaton, n int) *heuristic.Table {
	if d.config.Heuristic.Covers(a, n) {
		return d.config.Heuristic
	}
	return heuristic.Load(a, n)
}

func (d *AStar) search(ctx context.Context, in *Input) (*Result, error) {
	a, w := in.Automaton, in.Word
	h := d.table(a, len(w))
	b := newBudget(ctx, d.config)
	lin := &lineage{enabled: d.config.Witness}
	seen := newSeenSet(true)
	res := &Result{Verdict: Exploring}

	pq := &priorityQueue{}
	seq := 0
	push := func(it item) {
		score := h.Score(it.cfg.State, len(w)-it.pos)
		if score == 0 {
			res.Stats.Pruned++
			return
		}
		if !seen.insert(it.cfg, it.pos) {
			res.Stats.Pruned++
			return
		}
		heap.Push(pq, scored{it: it, score: score, seq: seq})
		seq++
		res.Stats.PeakFrontier = max(res.Stats.PeakFrontier, pq.Len())
	}

	push(item{cfg: a.InitialConfiguration(), symbol: automaton.Empty, parent: noParent})

	for pq.Len() > 0 {
		top := heap.Pop(pq).(scored).it
		if top.pos == len(w) {
			// Score h[q][0] > 0 only for final states.
			res.Verdict = Accepted
			res.Witness = lin.path(top)
			return res, nil
		}

		if err := b.tick(); err != nil {
			return nil, err
		}
		res.Stats.Expanded++
		id := lin.record(top)
		s := w[top.pos]
		successors(a, top.cfg, s, func(c automaton.Configuration) {
			res.Stats.Generated++
			push(item{cfg: c, pos: top.pos + 1, symbol: s, parent: id})
		})
	}

	res.Verdict = Rejected
	return res, nil
}
