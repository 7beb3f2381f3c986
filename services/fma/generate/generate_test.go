// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutomaton_Deterministic(t *testing.T) {
	p := DefaultParams()
	p.Deterministic = true
	p.EdgeProbability = 0.5
	rng := Source(7)
	for i := 0; i < 20; i++ {
		a, err := Automaton(rng, p)
		require.NoError(t, err)
		assert.True(t, a.IsDeterministic())
		assert.Equal(t, p.States, a.NumStates())
		assert.Equal(t, p.Registers, a.NumRegisters())
	}
}

func TestAutomaton_Reproducible(t *testing.T) {
	a, err := Automaton(Source(42), DefaultParams())
	require.NoError(t, err)
	b, err := Automaton(Source(42), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, a.States(), b.States())
	assert.Equal(t, a.NumTransitions(), b.NumTransitions())
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	bad := []Params{
		{States: 0, Registers: 1},
		{States: 1, Registers: 0},
		{States: 1, Registers: 1, Filled: 2},
		{States: 1, Registers: 1, EdgeProbability: 1.5},
	}
	for _, p := range bad {
		_, err := Automaton(Source(1), p)
		assert.True(t, errors.Is(err, ErrInvalidParams), "%+v", p)
	}
}

func TestWords(t *testing.T) {
	ws := Words(Source(3), 50, 4, 3)
	require.Len(t, ws, 50)
	for _, w := range ws {
		assert.LessOrEqual(t, len(w), 4)
		for _, s := range w {
			assert.True(t, s >= 0 && s < 3)
		}
	}
}
