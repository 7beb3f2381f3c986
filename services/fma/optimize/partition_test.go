// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package optimize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/generate"
	"github.com/AleutianAI/AleutianFMA/services/fma/search"
)

func TestPartition_FixedFirst(t *testing.T) {
	// Register 0 is written by q0, registers 1 and 2 are never written.
	a, err := automaton.NewBuilder().
		State("q0", automaton.Assign(0)).
		State("q1", automaton.Final()).
		Initial("q0").
		Registers(automaton.Empty, 5, 9).
		Transition("q0", 0, "q1").
		Transition("q0", 2, "q1").
		Build()
	require.NoError(t, err)

	res, err := Partition(a)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Fixed)
	assert.Equal(t, []int{2, 0, 1}, res.Mapping)

	out := res.Automaton
	assert.Equal(t, 2, out.FixedPrefix())
	assert.Equal(t, automaton.Registers{5, 9, automaton.Empty}, out.Registers())

	reg, ok := out.Assignment(0)
	require.True(t, ok)
	assert.Equal(t, 2, reg)
	assert.Equal(t, []int{1}, out.Transitions(0, 2))
	assert.Equal(t, []int{1}, out.Transitions(0, 1))
	assert.Empty(t, out.Transitions(0, 0))

	assert.Equal(t, 1, out.Locate(out.Registers(), 9))
	assert.Equal(t, -1, out.Locate(out.Registers(), 4))
}

func TestPartition_Nil(t *testing.T) {
	_, err := Partition(nil)
	assert.ErrorIs(t, err, ErrNilAutomaton)
}

func TestPartition_PreservesLanguage(t *testing.T) {
	ctx := context.Background()
	bflgs := search.NewBFLGS(nil)
	empty := search.NewEmptiness(nil)

	for seed := uint64(1); seed <= 40; seed++ {
		rng := generate.Source(seed)
		p := generate.DefaultParams()
		p.Registers = 3
		p.Filled = 2
		p.AssignProbability = 0.4
		a, err := generate.Automaton(rng, p)
		require.NoError(t, err)

		res, err := Partition(a)
		require.NoError(t, err)

		for _, w := range generate.Words(rng, 30, 6, 5) {
			before, err := bflgs.Decide(ctx, &search.Input{Automaton: a, Word: w})
			require.NoError(t, err)
			after, err := bflgs.Decide(ctx, &search.Input{Automaton: res.Automaton, Word: w})
			require.NoError(t, err)
			assert.Equal(t, before.Verdict, after.Verdict, "seed %d word %v", seed, w)
		}

		before, err := empty.Decide(ctx, &search.Input{Automaton: a})
		require.NoError(t, err)
		after, err := empty.Decide(ctx, &search.Input{Automaton: res.Automaton})
		require.NoError(t, err)
		assert.Equal(t, before.Verdict, after.Verdict, "seed %d emptiness", seed)
	}
}
