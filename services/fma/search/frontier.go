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
	"slices"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
)

// -----------------------------------------------------------------------------
// Search items and lineage
// -----------------------------------------------------------------------------

// noParent marks a root item or an item whose lineage is not tracked.
const noParent int32 = -1

// item is a search state: a configuration, the word cursor, the symbol read
// to reach it and its parent in the lineage arena.
type item struct {
	cfg    automaton.Configuration
	pos    int
	symbol automaton.Symbol
	parent int32
}

// lineage is an arena of expanded items. Parents are referenced by index,
// so a witness is rebuilt by walking indices back to the root.
type lineage struct {
	enabled bool
	nodes   []item
}

// record stores it and returns its index, or noParent when disabled.
func (l *lineage) record(it item) int32 {
	if !l.enabled {
		return noParent
	}
	l.nodes = append(l.nodes, it)
	return int32(len(l.nodes) - 1)
}

// path returns the steps from the root to leaf.
func (l *lineage) path(leaf item) []Step {
	if !l.enabled {
		return nil
	}
	steps := []Step{{Configuration: leaf.cfg, Symbol: leaf.symbol}}
	for p := leaf.parent; p != noParent; p = l.nodes[p].parent {
		n := l.nodes[p]
		steps = append(steps, Step{Configuration: n.cfg, Symbol: n.symbol})
	}
	slices.Reverse(steps)
	return steps
}

// word returns the symbols read along a witness path.
func word(steps []Step) automaton.Word {
	if len(steps) == 0 {
		return automaton.Word{}
	}
	w := make(automaton.Word, 0, len(steps)-1)
	for _, s := range steps[1:] {
		w = append(w, s.Symbol)
	}
	return w
}

// -----------------------------------------------------------------------------
// Budget
// -----------------------------------------------------------------------------

// budget enforces Config.MaxNodes and polls ctx every interval expansions.
type budget struct {
	ctx      context.Context
	max      int
	interval int
	spent    int
}

func newBudget(ctx context.Context, c *Config) *budget {
	interval := c.CheckInterval
	if interval <= 0 {
		interval = 1024
	}
	return &budget{ctx: ctx, max: c.MaxNodes, interval: interval}
}

// tick accounts for one expansion.
func (b *budget) tick() error {
	b.spent++
	if b.max > 0 && b.spent > b.max {
		return ErrBudgetExceeded
	}
	if b.spent%b.interval == 0 {
		select {
		case <-b.ctx.Done():
			return b.ctx.Err()
		default:
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Hashed configuration set
// -----------------------------------------------------------------------------

type seenEntry struct {
	state  int
	regs   automaton.Registers
	cursor int
}

// seenSet de-duplicates configurations by state identity and exact register
// contents, optionally together with the word cursor. Buckets are keyed by
// an xxhash digest and compared exactly on collision.
type seenSet struct {
	withCursor bool
	buckets    map[uint64][]seenEntry
	size       int
}

func newSeenSet(withCursor bool) *seenSet {
	return &seenSet{withCursor: withCursor, buckets: make(map[uint64][]seenEntry)}
}

// insert adds (cfg, cursor) and reports whether it was absent.
func (s *seenSet) insert(cfg automaton.Configuration, cursor int) bool {
	return s.insertHashed(s.hash(cfg, cursor), cfg, cursor)
}

func (s *seenSet) hash(cfg automaton.Configuration, cursor int) uint64 {
	if !s.withCursor {
		cursor = -1
	}
	return automaton.HashOf(cfg.State, cfg.Registers, cursor)
}

func (s *seenSet) insertHashed(h uint64, cfg automaton.Configuration, cursor int) bool {
	if !s.withCursor {
		cursor = -1
	}
	for _, e := range s.buckets[h] {
		if e.state == cfg.State && e.cursor == cursor && e.regs.Equal(cfg.Registers) {
			return false
		}
	}
	s.buckets[h] = append(s.buckets[h], seenEntry{state: cfg.State, regs: cfg.Registers, cursor: cursor})
	s.size++
	return true
}

// len returns the number of distinct entries.
func (s *seenSet) len() int {
	return s.size
}

// -----------------------------------------------------------------------------
// Membership step
// -----------------------------------------------------------------------------

// successors applies the membership step rule for symbol s.
//
// Description:
//
//	If a register holds s, every target of mu(q, that register) is
//	emitted with the unchanged snapshot. Otherwise, if rho(q) = r, a new
//	snapshot with r := s is allocated once and shared by the emitted
//	targets; nobody writes to it afterwards. Otherwise nothing is emitted.
//
// Outputs:
//   - int: Number of successors emitted.
func successors(a *automaton.Automaton, cfg automaton.Configuration, s automaton.Symbol,
	emit func(automaton.Configuration)) int {

	reg := a.Locate(cfg.Registers, s)
	regs := cfg.Registers
	if reg < 0 {
		r, ok := a.Assignment(cfg.State)
		if !ok {
			return 0
		}
		reg = r
		if len(a.Transitions(cfg.State, reg)) == 0 {
			return 0
		}
		regs = regs.With(reg, s)
	}
	targets := a.Transitions(cfg.State, reg)
	for _, t := range targets {
		emit(automaton.Configuration{State: t, Registers: regs})
	}
	return len(targets)
}
