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
// Greedy frontier
// -----------------------------------------------------------------------------

// Greedy decides membership over a frontier partitioned into priority
// classes.
//
// Description:
//
//	Every live configuration of a generation is filed into exactly one
//	class when it is added:
//
//	  unstable        fewer registers with an outgoing transition than R
//	  rhoCompatible   stable, and mu(q, rho(q)) has a target other than q
//	  symbolNeeding   stable otherwise; it can only move on a symbol it holds
//
//	Independently, waiting[v] indexes every configuration holding v in a
//	register that has an outgoing transition. Reading symbol s drains
//	waiting[s], then rhoCompatible, then unstable. A configuration is
//	marked dead after its one expansion. What is still live afterwards is
//	symbolNeeding with s fresh: it is swept with the plain step rule, which
//	follows a rho self-loop when there is one and otherwise prunes it, so no
//	live configuration is dropped unexamined.
//
//	A register hit that follows a self-loop yields the parent configuration
//	itself; the child shares its snapshot and digest.
//
// Thread Safety: Safe for concurrent use.
type Greedy struct {
	base
}

// NewGreedy creates the greedy-frontier strategy.
func NewGreedy(config *Config) *Greedy {
	return &Greedy{base: newBase("greedy", KindMembership, config)}
}

// Decide runs the greedy-frontier search.
func (g *Greedy) Decide(ctx context.Context, in *Input) (*Result, error) {
	return g.run(ctx, in, g.search)
}

// greedyClass is the priority class of a greedy configuration.
type greedyClass int

const (
	classUnstable greedyClass = iota + 1
	classRhoCompatible
	classSymbolNeeding
)

// gConfig is a live configuration of the greedy frontier.
type gConfig struct {
	it    item
	hash  uint64
	class greedyClass
	dead  bool
}

// generation is one frontier of the greedy search with its class index.
type generation struct {
	a             *automaton.Automaton
	seen          *seenSet
	all           []*gConfig
	waiting       map[automaton.Symbol][]*gConfig
	unstable      []*gConfig
	rhoCompatible []*gConfig
	symbolNeeding []*gConfig
}

func newGeneration(a *automaton.Automaton) *generation {
	return &generation{
		a:       a,
		seen:    newSeenSet(false),
		waiting: make(map[automaton.Symbol][]*gConfig),
	}
}

// classify returns the class of state q. It depends on q only.
func classify(a *automaton.Automaton, q int) greedyClass {
	if a.LabeledRegisters(q) < a.NumRegisters() {
		return classUnstable
	}
	if r, ok := a.Assignment(q); ok {
		for _, t := range a.Transitions(q, r) {
			if t != q {
				return classRhoCompatible
			}
		}
	}
	return classSymbolNeeding
}

// add files it into its class unless an equal configuration is present.
func (g *generation) add(it item, hash uint64) bool {
	if !g.seen.insertHashed(hash, it.cfg, -1) {
		return false
	}
	q, regs := it.cfg.State, it.cfg.Registers
	c := &gConfig{it: it, hash: hash, class: classify(g.a, q)}
	g.all = append(g.all, c)

	for reg, v := range regs {
		if v != automaton.Empty && len(g.a.Transitions(q, reg)) > 0 {
			g.waiting[v] = append(g.waiting[v], c)
		}
	}
	switch c.class {
	case classUnstable:
		g.unstable = append(g.unstable, c)
	case classRhoCompatible:
		g.rhoCompatible = append(g.rhoCompatible, c)
	default:
		g.symbolNeeding = append(g.symbolNeeding, c)
	}
	return true
}

func (g *Greedy) search(ctx context.Context, in *Input) (*Result, error) {
	a, w := in.Automaton, in.Word
	b := newBudget(ctx, g.config)
	lin := &lineage{enabled: g.config.Witness}
	res := &Result{Verdict: Exploring}

	cur := newGeneration(a)
	root := a.InitialConfiguration()
	cur.add(item{cfg: root, symbol: automaton.Empty, parent: noParent}, root.Hash())
	res.Stats.PeakFrontier = 1

	for pos, s := range w {
		next := newGeneration(a)

		// expand follows mu(q, reg) with regs; unchanged reports that regs is
		// the parent's own snapshot.
		expand := func(c *gConfig, reg int, regs automaton.Registers, unchanged bool) error {
			if err := b.tick(); err != nil {
				return err
			}
			c.dead = true
			res.Stats.Expanded++
			id := lin.record(c.it)
			for _, t := range a.Transitions(c.it.cfg.State, reg) {
				res.Stats.Generated++
				child := item{pos: pos + 1, symbol: s, parent: id}
				h := c.hash
				if unchanged && t == c.it.cfg.State {
					child.cfg = c.it.cfg
				} else {
					child.cfg = automaton.Configuration{State: t, Registers: regs}
					h = child.cfg.Hash()
				}
				if !next.add(child, h) {
					res.Stats.Pruned++
				}
			}
			return nil
		}

		// step applies the plain step rule to a live configuration and
		// prunes it when s has no move.
		step := func(c *gConfig) error {
			if c.dead {
				return nil
			}
			q, regs := c.it.cfg.State, c.it.cfg.Registers
			if reg := a.Locate(regs, s); reg >= 0 {
				if len(a.Transitions(q, reg)) > 0 {
					return expand(c, reg, regs, true)
				}
			} else if r, ok := a.Assignment(q); ok && len(a.Transitions(q, r)) > 0 {
				return expand(c, r, regs.With(r, s), false)
			}
			c.dead = true
			res.Stats.Pruned++
			return nil
		}

		// Configurations holding s.
		for _, c := range cur.waiting[s] {
			if err := step(c); err != nil {
				return nil, err
			}
		}
		// Rho-compatible stable configurations, then unstable ones.
		for _, class := range [][]*gConfig{cur.rhoCompatible, cur.unstable} {
			for _, c := range class {
				if err := step(c); err != nil {
					return nil, err
				}
			}
		}
		// Still live: symbol-needing configurations with s fresh.
		for _, c := range cur.symbolNeeding {
			if err := step(c); err != nil {
				return nil, err
			}
		}

		if len(next.all) == 0 {
			res.Verdict = Rejected
			return res, nil
		}
		res.Stats.PeakFrontier = max(res.Stats.PeakFrontier, len(next.all))
		cur = next
	}

	for _, c := range cur.all {
		if a.IsFinal(c.it.cfg.State) {
			res.Verdict = Accepted
			res.Witness = lin.path(c.it)
			return res, nil
		}
	}
	res.Verdict = Rejected
	return res, nil
}
