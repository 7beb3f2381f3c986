// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/generate"
)

func TestLoad_CountsPaths(t *testing.T) {
	// q0 has two edges to the final q1 and one self-loop.
	a, err := automaton.NewBuilder().
		State("q0", automaton.Assign(0)).
		State("q1", automaton.Final()).
		Initial("q0").
		Registers(automaton.Empty, automaton.Empty).
		Transition("q0", 0, "q1").
		Transition("q0", 1, "q1").
		Transition("q0", 0, "q0").
		Build()
	require.NoError(t, err)

	table := Load(a, 3)
	assert.Equal(t, 3, table.Horizon())
	assert.Same(t, a, table.Automaton())

	assert.Equal(t, 0, table.Score(0, 0))
	assert.Equal(t, 1, table.Score(1, 0))
	assert.Equal(t, 2, table.Score(0, 1))
	assert.Equal(t, 0, table.Score(1, 1))
	assert.Equal(t, 2, table.Score(0, 2))
	assert.Equal(t, 2, table.Score(0, 3))

	assert.Equal(t, Saturated, table.Score(0, 4), "beyond the horizon")
	assert.Equal(t, Saturated, table.Score(0, -1))
}

func TestLoad_Saturates(t *testing.T) {
	// 40 parallel self-loops on a final state: 40^k overflows int32 quickly.
	b := automaton.NewBuilder().State("q", automaton.Final()).Initial("q")
	regs := make([]automaton.Symbol, 40)
	for i := range regs {
		regs[i] = automaton.Symbol(i)
		b.Transition("q", i, "q")
	}
	a, err := b.Registers(regs...).Build()
	require.NoError(t, err)

	table := Load(a, 10)
	assert.Equal(t, 40, table.Score(0, 1))
	assert.Equal(t, Saturated, table.Score(0, 10))
}

func TestCovers(t *testing.T) {
	a, err := automaton.NewBuilder().State("q", automaton.Final()).Initial("q").Registers(automaton.Empty).Build()
	require.NoError(t, err)
	other, err := automaton.NewBuilder().State("q").Initial("q").Registers(automaton.Empty).Build()
	require.NoError(t, err)

	table := Load(a, 4)
	assert.True(t, table.Covers(a, 4))
	assert.False(t, table.Covers(a, 5))
	assert.False(t, table.Covers(other, 1))

	var none *Table
	assert.False(t, none.Covers(a, 0))
}

// reachable reports whether a final state is reachable from q in exactly n
// edges, ignoring registers.
func reachable(a *automaton.Automaton, q, n int) bool {
	layer := map[int]bool{q: true}
	for ; n > 0; n-- {
		next := map[int]bool{}
		for s := range layer {
			for reg := 0; reg < a.NumRegisters(); reg++ {
				for _, t := range a.Transitions(s, reg) {
					next[t] = true
				}
			}
		}
		layer = next
	}
	for s := range layer {
		if a.IsFinal(s) {
			return true
		}
	}
	return false
}

func TestScore_ZeroIffUnreachable(t *testing.T) {
	for seed := uint64(1); seed <= 30; seed++ {
		a, err := generate.Automaton(generate.Source(seed), generate.DefaultParams())
		require.NoError(t, err)
		table := Load(a, 6)
		for q := 0; q < a.NumStates(); q++ {
			for n := 0; n <= 6; n++ {
				assert.Equal(t, reachable(a, q, n), table.Score(q, n) > 0, "seed %d q%d n=%d", seed, q, n)
			}
		}
	}
}
