// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package automaton

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneShot is the automaton of the basic acceptance scenario: q0 assigns
// register 0 and moves to the final q1 on it.
const oneShot = `q0 1
q1 _ F
-
q0
#
-
q0 1 q1
`

func TestRegisters_WithDoesNotAlias(t *testing.T) {
	base := Registers{1, Empty, 3}
	next := base.With(1, 9)

	assert.Equal(t, Registers{1, Empty, 3}, base, "source snapshot must be untouched")
	assert.Equal(t, Registers{1, 9, 3}, next)

	next[0] = 42
	assert.Equal(t, Symbol(1), base[0], "copies must not share a backing array")
}

func TestRegisters_Fresh(t *testing.T) {
	tests := []struct {
		name string
		regs Registers
		want Symbol
	}{
		{"all empty", Registers{Empty, Empty}, 1},
		{"skips held", Registers{1, 2, Empty}, 3},
		{"fills gap", Registers{1, 3}, 2},
		{"ignores zero", Registers{0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.regs.Fresh())
		})
	}
}

func TestWord_Validate(t *testing.T) {
	require.NoError(t, Word{0, 5, 7}.Validate())
	err := Word{1, -2}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSymbol))
}

func TestConfiguration_HashAndEqual(t *testing.T) {
	a := Configuration{State: 2, Registers: Registers{4, Empty}}
	b := Configuration{State: 2, Registers: Registers{4, Empty}}
	c := Configuration{State: 2, Registers: Registers{Empty, 4}}

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, HashOf(2, a.Registers, 0), HashOf(2, a.Registers, 1))
}

func TestBuilder_Build(t *testing.T) {
	t.Run("valid automaton", func(t *testing.T) {
		a, err := NewBuilder().
			State("q0", Assign(0)).
			State("q1", Final()).
			Initial("q0").
			Registers(Empty).
			Transition("q0", 0, "q1").
			Transition("q0", 0, "q1").
			Build()
		require.NoError(t, err)

		assert.Equal(t, 2, a.NumStates())
		assert.Equal(t, 1, a.NumRegisters())
		assert.Equal(t, []int{1}, a.Transitions(0, 0), "duplicate transitions merge")
		assert.True(t, a.IsFinal(1))
		r, ok := a.Assignment(0)
		assert.True(t, ok)
		assert.Equal(t, 0, r)
		_, ok = a.Assignment(1)
		assert.False(t, ok)
		assert.True(t, a.IsDeterministic())
	})

	t.Run("rejects invalid descriptions", func(t *testing.T) {
		tests := []struct {
			name string
			b    *Builder
		}{
			{"missing initial", NewBuilder().State("q0").Registers(Empty)},
			{"duplicate state", NewBuilder().State("q0").State("q0").Initial("q0").Registers(Empty)},
			{"rho out of range", NewBuilder().State("q0", Assign(3)).Initial("q0").Registers(Empty)},
			{"register out of range", NewBuilder().State("q0").Initial("q0").Registers(Empty).Transition("q0", 1, "q0")},
			{"unknown target", NewBuilder().State("q0").Initial("q0").Registers(Empty).Transition("q0", 0, "qx")},
			{"duplicate register value", NewBuilder().State("q0").Initial("q0").Registers(5, 5)},
			{"negative register value", NewBuilder().State("q0").Initial("q0").Registers(-7)},
			{"assigned fixed register", NewBuilder().State("q0", Assign(0)).Initial("q0").Registers(1, Empty).FixedPrefix(1)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := tt.b.Build()
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAutomaton))
			})
		}
	})
}

func TestAutomaton_IsDeterministic(t *testing.T) {
	a, err := NewBuilder().
		State("p").State("q").State("r", Final()).
		Initial("p").
		Registers(1).
		Transition("p", 0, "q").
		Transition("p", 0, "r").
		Build()
	require.NoError(t, err)
	assert.False(t, a.IsDeterministic())
	assert.Equal(t, 2, a.OutDegree(0))
	assert.Equal(t, 1, a.LabeledRegisters(0))
}

func TestAutomaton_Locate(t *testing.T) {
	build := func(fixed int) *Automaton {
		a, err := NewBuilder().
			State("q", Assign(2)).
			Initial("q").
			Registers(4, 70000, Empty).
			FixedPrefix(fixed).
			Build()
		require.NoError(t, err)
		return a
	}

	for _, fixed := range []int{0, 1, 2} {
		a := build(fixed)
		regs := a.Registers().With(2, 9)
		assert.Equal(t, 0, a.Locate(regs, 4), "fixed=%d", fixed)
		assert.Equal(t, 1, a.Locate(regs, 70000), "fixed=%d", fixed)
		assert.Equal(t, 2, a.Locate(regs, 9), "fixed=%d", fixed)
		assert.Equal(t, -1, a.Locate(regs, 5), "fixed=%d", fixed)
		assert.Equal(t, -1, a.Locate(regs, Empty), "fixed=%d", fixed)
	}
}

func TestParse(t *testing.T) {
	a, err := ParseString(oneShot)
	require.NoError(t, err)

	q0, ok := a.StateByName("q0")
	require.True(t, ok)
	q1, _ := a.StateByName("q1")
	assert.Equal(t, q0, a.Initial())
	r, ok := a.Assignment(q0)
	require.True(t, ok)
	assert.Equal(t, 0, r, "on-disk rho is 1-indexed")
	assert.Equal(t, []int{q1}, a.Transitions(q0, 0))
	assert.Equal(t, Registers{Empty}, a.Registers())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"too many state tokens", "q0 1 F x\n-\nq0\n#\n-\n", 1},
		{"bad rho", "q0 zero\n-\nq0\n#\n-\n", 1},
		{"rho out of range", "q0 2\n-\nq0\n#\n-\n", 1},
		{"unknown initial", "q0\n-\nq9\n#\n-\n", 3},
		{"bad register", "q0\n-\nq0\nx\n-\n", 4},
		{"duplicate register", "q0\n-\nq0\n3 3\n-\n", 4},
		{"missing separator", "q0\n-\nq0\n#\nq0 1 q0\n", 5},
		{"short transition", "q0\n-\nq0\n#\n-\nq0 1\n", 6},
		{"unknown target", "q0\n-\nq0\n#\n-\nq0 1 q7\n", 6},
		{"label out of range", "q0\n-\nq0\n#\n-\nq0 2 q0\n", 6},
		{"duplicate state", "q0\nq0\n-\nq0\n#\n-\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.text)
			require.Error(t, err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.Equal(t, tt.line, pe.Line)
		})
	}

	t.Run("truncated input", func(t *testing.T) {
		_, err := ParseString("q0\n-\nq0\n")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
	})
}

func TestFormat_RoundTrip(t *testing.T) {
	text := `% comment lines are skipped
p 2
q _ F
r 1 F

-
p
# 11 #
-
p 1 q
p 2 r
r 1 p
r 3 r
q 2 q
`
	a, err := ParseString(text)
	require.NoError(t, err)

	out, err := FormatString(a)
	require.NoError(t, err)

	b, err := ParseString(out)
	require.NoError(t, err)

	require.Equal(t, a.NumStates(), b.NumStates())
	assert.Equal(t, a.Registers(), b.Registers())
	assert.Equal(t, a.Initial(), b.Initial())
	for q := 0; q < a.NumStates(); q++ {
		assert.Equal(t, a.State(q), b.State(q))
		ra, oka := a.Assignment(q)
		rb, okb := b.Assignment(q)
		assert.Equal(t, oka, okb)
		assert.Equal(t, ra, rb)
		for reg := 0; reg < a.NumRegisters(); reg++ {
			assert.Equal(t, a.Transitions(q, reg), b.Transitions(q, reg))
		}
	}
}

func TestFormat_Rejects(t *testing.T) {
	a, err := NewBuilder().State("has space").Initial("has space").Registers(Empty).Build()
	require.NoError(t, err)
	_, err = FormatString(a)
	assert.True(t, errors.Is(err, ErrNotFormattable))

	z, err := NewBuilder().State("q").Initial("q").Build()
	require.NoError(t, err)
	_, err = FormatString(z)
	assert.True(t, errors.Is(err, ErrNotFormattable))
}
