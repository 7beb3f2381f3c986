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
	"fmt"
	"slices"
)

// -----------------------------------------------------------------------------
// Builder
// -----------------------------------------------------------------------------

// StateOption configures a state declared with Builder.State.
type StateOption func(*stateDef)

// Final marks the state as accepting.
func Final() StateOption {
	return func(s *stateDef) { s.final = true }
}

// Assign sets rho for the state: reg receives fresh symbols read there.
func Assign(reg int) StateOption {
	return func(s *stateDef) { s.rho = reg }
}

type stateDef struct {
	name  string
	final bool
	rho   int
}

type transitionDef struct {
	from string
	reg  int
	to   string
}

// Builder collects an automaton description and validates it on Build.
//
// Description:
//
//	Methods chain and never fail; all validation happens in Build, which
//	reports every problem it finds joined into one error wrapping
//	ErrInvalidAutomaton.
//
// Example:
//
//	a, err := automaton.NewBuilder().
//	    State("q0", automaton.Assign(0)).
//	    State("q1", automaton.Final()).
//	    Initial("q0").
//	    Registers(automaton.Empty).
//	    Transition("q0", 0, "q1").
//	    Build()
//
// Thread Safety: Not safe for concurrent use.
type Builder struct {
	states      []stateDef
	transitions []transitionDef
	initial     string
	registers   Registers
	fixed       int
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		states:      make([]stateDef, 0, 8),
		transitions: make([]transitionDef, 0, 16),
	}
}

// State declares a state. Declaration order fixes the state index.
func (b *Builder) State(name string, opts ...StateOption) *Builder {
	def := stateDef{name: name, rho: noAssignment}
	for _, opt := range opts {
		opt(&def)
	}
	b.states = append(b.states, def)
	return b
}

// Initial names the initial state.
func (b *Builder) Initial(name string) *Builder {
	b.initial = name
	return b
}

// Registers sets the initial register contents; use Empty for empty slots.
func (b *Builder) Registers(regs ...Symbol) *Builder {
	b.registers = slices.Clone(Registers(regs))
	return b
}

// Transition adds (from, reg) -> to to mu. Duplicates are merged.
func (b *Builder) Transition(from string, reg int, to string) *Builder {
	b.transitions = append(b.transitions, transitionDef{from: from, reg: reg, to: to})
	return b
}

// FixedPrefix declares that the first k registers are never assigned by rho.
// Build verifies the claim and prepares the O(1) symbol table for them.
func (b *Builder) FixedPrefix(k int) *Builder {
	b.fixed = k
	return b
}

// Build validates the description and returns the immutable automaton.
//
// Description:
//
//	Checks that state names are unique and non-empty, the initial state
//	exists, transitions reference declared states, every register index in
//	mu and rho lies in [0, R), non-empty initial register values are
//	non-negative and pairwise distinct, and a declared fixed prefix is never
//	named by rho.
//
// Outputs:
//   - *Automaton: The automaton. Nil on error.
//   - error: Wraps ErrInvalidAutomaton (and ErrUnknownState for unresolved
//     names).
func (b *Builder) Build() (*Automaton, error) {
	var errs []error
	r := len(b.registers)

	index := make(map[string]int, len(b.states))
	for i, s := range b.states {
		if s.name == "" {
			errs = append(errs, fmt.Errorf("%w: state %d has an empty name", ErrInvalidAutomaton, i))
			continue
		}
		if _, dup := index[s.name]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate state %q", ErrInvalidAutomaton, s.name))
			continue
		}
		index[s.name] = i
		if s.rho != noAssignment && (s.rho < 0 || s.rho >= r) {
			errs = append(errs, fmt.Errorf("%w: state %q assigns register %d outside [0,%d)",
				ErrInvalidAutomaton, s.name, s.rho, r))
		}
		if s.rho != noAssignment && s.rho < b.fixed {
			errs = append(errs, fmt.Errorf("%w: state %q assigns fixed register %d",
				ErrInvalidAutomaton, s.name, s.rho))
		}
	}

	initial, ok := index[b.initial]
	if !ok {
		errs = append(errs, fmt.Errorf("%w: initial state %q: %w", ErrInvalidAutomaton, b.initial, ErrUnknownState))
	}

	seen := make(map[Symbol]int, r)
	for i, s := range b.registers {
		if s == Empty {
			continue
		}
		if s < 0 {
			errs = append(errs, fmt.Errorf("%w: register %d holds negative symbol %d", ErrInvalidAutomaton, i, int(s)))
			continue
		}
		if j, dup := seen[s]; dup {
			errs = append(errs, fmt.Errorf("%w: registers %d and %d both hold %d", ErrInvalidAutomaton, j, i, int(s)))
			continue
		}
		seen[s] = i
	}

	if b.fixed < 0 || b.fixed > r {
		errs = append(errs, fmt.Errorf("%w: fixed prefix %d outside [0,%d]", ErrInvalidAutomaton, b.fixed, r))
	}

	mu := make([][][]int, len(b.states))
	for q := range mu {
		mu[q] = make([][]int, r)
	}
	for _, t := range b.transitions {
		from, okFrom := index[t.from]
		to, okTo := index[t.to]
		switch {
		case !okFrom:
			errs = append(errs, fmt.Errorf("%w: transition source %q: %w", ErrInvalidAutomaton, t.from, ErrUnknownState))
			continue
		case !okTo:
			errs = append(errs, fmt.Errorf("%w: transition target %q: %w", ErrInvalidAutomaton, t.to, ErrUnknownState))
			continue
		case t.reg < 0 || t.reg >= r:
			errs = append(errs, fmt.Errorf("%w: transition %s -%d-> %s uses register outside [0,%d)",
				ErrInvalidAutomaton, t.from, t.reg, t.to, r))
			continue
		}
		mu[from][t.reg] = append(mu[from][t.reg], to)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for q := range mu {
		for reg, targets := range mu[q] {
			slices.Sort(targets)
			mu[q][reg] = slices.Compact(targets)
		}
	}

	states := make([]State, len(b.states))
	rho := make([]int, len(b.states))
	for i, s := range b.states {
		states[i] = State{Name: s.name, Final: s.final}
		rho[i] = s.rho
	}

	a := &Automaton{
		states:    states,
		index:     index,
		initial:   initial,
		registers: b.registers.Clone(),
		mu:        mu,
		rho:       rho,
		fixed:     b.fixed,
	}
	if b.fixed > 0 {
		a.fixedSlot = buildFixedTable(a.registers[:b.fixed])
	}
	return a, nil
}

// buildFixedTable maps each symbol held by a fixed register to that
// register. Returns nil when a fixed symbol exceeds fixedTableLimit, which
// makes Locate scan every register.
func buildFixedTable(fixed Registers) []int32 {
	maxSym := Symbol(-1)
	for _, s := range fixed {
		if s >= fixedTableLimit {
			return nil
		}
		maxSym = max(maxSym, s)
	}
	table := make([]int32, int(maxSym)+1)
	for i := range table {
		table[i] = -1
	}
	for i, s := range fixed {
		if s != Empty {
			table[s] = int32(i)
		}
	}
	return table
}
