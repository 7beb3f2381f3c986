// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package optimize rewrites register automata for faster membership search.
//
// The register-partition pass separates registers that are never assigned
// by rho ("fixed") from the ones that are ("writable"). Fixed registers keep
// their initial symbol forever, so the rewritten automaton resolves them
// through a direct symbol table instead of a scan.
package optimize

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
)

// ErrNilAutomaton is returned when Partition receives nil.
var ErrNilAutomaton = errors.New("automaton must not be nil")

// Result is the output of Partition.
type Result struct {
	// Automaton is the rewritten automaton. Its first Fixed registers are
	// the fixed ones.
	Automaton *automaton.Automaton

	// Fixed is the number of fixed registers.
	Fixed int

	// Mapping maps an original register index to its new index.
	Mapping []int
}

// Partition splits registers into a fixed prefix and a writable suffix.
//
// Description:
//
//	A register is writable iff some state names it in rho. The renumbering
//	is deterministic: fixed registers first in original order, then
//	writable registers in original order. mu and rho are rewritten through
//	the mapping; states keep their names, indices and finality, so the
//	rewritten automaton accepts exactly the same words.
//
// Inputs:
//   - a: The automaton to rewrite. Not modified.
//
// Outputs:
//   - *Result: The partitioned automaton and the register mapping.
//   - error: ErrNilAutomaton, or a build error (which would indicate a
//     defect in this pass).
//
// Thread Safety: Safe for concurrent use.
func Partition(a *automaton.Automaton) (*Result, error) {
	if a == nil {
		return nil, ErrNilAutomaton
	}

	r := a.NumRegisters()
	writable := make([]bool, r)
	for q := 0; q < a.NumStates(); q++ {
		if reg, ok := a.Assignment(q); ok {
			writable[reg] = true
		}
	}

	mapping := make([]int, r)
	next := 0
	for reg := 0; reg < r; reg++ {
		if !writable[reg] {
			mapping[reg] = next
			next++
		}
	}
	fixed := next
	for reg := 0; reg < r; reg++ {
		if writable[reg] {
			mapping[reg] = next
			next++
		}
	}

	initial := a.Registers()
	regs := make(automaton.Registers, r)
	for old, s := range initial {
		regs[mapping[old]] = s
	}

	b := automaton.NewBuilder()
	for q := 0; q < a.NumStates(); q++ {
		st := a.State(q)
		var opts []automaton.StateOption
		if st.Final {
			opts = append(opts, automaton.Final())
		}
		if reg, ok := a.Assignment(q); ok {
			opts = append(opts, automaton.Assign(mapping[reg]))
		}
		b.State(st.Name, opts...)
	}
	b.Initial(a.State(a.Initial()).Name).Registers(regs...).FixedPrefix(fixed)

	for q := 0; q < a.NumStates(); q++ {
		from := a.State(q).Name
		for reg := 0; reg < r; reg++ {
			for _, t := range a.Transitions(q, reg) {
				b.Transition(from, mapping[reg], a.State(t).Name)
			}
		}
	}

	out, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("rebuild partitioned automaton: %w", err)
	}
	return &Result{Automaton: out, Fixed: fixed, Mapping: mapping}, nil
}
