// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generate produces seeded random register automata and words for
// benchmarks and cross-validation tests.
package generate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
)

// ErrInvalidParams is returned for out-of-range generator parameters.
var ErrInvalidParams = errors.New("invalid generator parameters")

// Params controls the shape of a random automaton.
type Params struct {
	// States is the number of states. Must be positive.
	States int `yaml:"states" validate:"min=1"`

	// Registers is the number of registers. Must be positive.
	Registers int `yaml:"registers" validate:"min=1"`

	// Filled is how many registers start with a symbol. At most Registers.
	Filled int `yaml:"filled" validate:"min=0"`

	// EdgeProbability is the chance that a (state, register, target)
	// triple becomes a transition.
	EdgeProbability float64 `yaml:"edge_probability" validate:"gte=0,lte=1"`

	// AssignProbability is the chance that a state gets a rho register.
	AssignProbability float64 `yaml:"assign_probability" validate:"gte=0,lte=1"`

	// FinalProbability is the chance that a state is final.
	FinalProbability float64 `yaml:"final_probability" validate:"gte=0,lte=1"`

	// Deterministic keeps at most one target per (state, register).
	Deterministic bool `yaml:"deterministic"`
}

// DefaultParams returns a small, moderately dense shape.
func DefaultParams() Params {
	return Params{
		States:            5,
		Registers:         2,
		Filled:            1,
		EdgeProbability:   0.25,
		AssignProbability: 0.6,
		FinalProbability:  0.3,
	}
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	switch {
	case p.States <= 0:
		return fmt.Errorf("%w: states=%d", ErrInvalidParams, p.States)
	case p.Registers <= 0:
		return fmt.Errorf("%w: registers=%d", ErrInvalidParams, p.Registers)
	case p.Filled < 0 || p.Filled > p.Registers:
		return fmt.Errorf("%w: filled=%d with %d registers", ErrInvalidParams, p.Filled, p.Registers)
	case !unit(p.EdgeProbability) || !unit(p.AssignProbability) || !unit(p.FinalProbability):
		return fmt.Errorf("%w: probabilities must lie in [0,1]", ErrInvalidParams)
	}
	return nil
}

func unit(p float64) bool {
	return p >= 0 && p <= 1
}

// Automaton builds a random automaton.
//
// Description:
//
//	States are named q0..q{n-1}; q0 is initial. The first Filled registers
//	hold the symbols 1..Filled, the rest start empty.
//
// Inputs:
//   - rng: Source of randomness. Must not be nil.
//   - p: Shape parameters.
//
// Outputs:
//   - *automaton.Automaton: The automaton.
//   - error: ErrInvalidParams for bad parameters.
func Automaton(rng *rand.Rand, p Params) (*automaton.Automaton, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	name := func(q int) string { return "q" + strconv.Itoa(q) }
	b := automaton.NewBuilder()
	for q := 0; q < p.States; q++ {
		var opts []automaton.StateOption
		if rng.Float64() < p.FinalProbability {
			opts = append(opts, automaton.Final())
		}
		if rng.Float64() < p.AssignProbability {
			opts = append(opts, automaton.Assign(rng.IntN(p.Registers)))
		}
		b.State(name(q), opts...)
	}

	regs := make([]automaton.Symbol, p.Registers)
	for i := range regs {
		if i < p.Filled {
			regs[i] = automaton.Symbol(i + 1)
		} else {
			regs[i] = automaton.Empty
		}
	}
	b.Initial(name(0)).Registers(regs...)

	for q := 0; q < p.States; q++ {
		for reg := 0; reg < p.Registers; reg++ {
			if p.Deterministic {
				if rng.Float64() < p.EdgeProbability*float64(p.States) {
					b.Transition(name(q), reg, name(rng.IntN(p.States)))
				}
				continue
			}
			for t := 0; t < p.States; t++ {
				if rng.Float64() < p.EdgeProbability {
					b.Transition(name(q), reg, name(t))
				}
			}
		}
	}

	return b.Build()
}

// Word draws a word of the given length over symbols [0, alphabet).
func Word(rng *rand.Rand, length, alphabet int) automaton.Word {
	if alphabet <= 0 {
		alphabet = 1
	}
	w := make(automaton.Word, length)
	for i := range w {
		w[i] = automaton.Symbol(rng.IntN(alphabet))
	}
	return w
}

// Words draws count words with lengths in [0, maxLen].
func Words(rng *rand.Rand, count, maxLen, alphabet int) []automaton.Word {
	out := make([]automaton.Word, count)
	for i := range out {
		out[i] = Word(rng, rng.IntN(maxLen+1), alphabet)
	}
	return out
}

// Source returns a deterministic generator for seed.
func Source(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
