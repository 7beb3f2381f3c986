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

// noAssignment marks a state without a rho register.
const noAssignment = -1

// fixedTableLimit bounds the symbol lookup table built for fixed registers.
// Fixed symbols at or above the limit fall back to a linear scan.
const fixedTableLimit = 1 << 16

// -----------------------------------------------------------------------------
// Automaton
// -----------------------------------------------------------------------------

// Automaton is an immutable finite-memory automaton.
//
// Description:
//
//	States are addressed by dense index. mu maps (state, register) to a
//	sorted, de-duplicated set of target states; rho maps a state to the
//	register that absorbs a fresh symbol when leaving it.
//
//	An automaton may carry a fixed register prefix (see FixedPrefix). Fixed
//	registers are never named by rho, so their contents never change and
//	Locate resolves them through a direct symbol table.
//
// Thread Safety: Immutable after Build; safe for concurrent use.
type Automaton struct {
	states    []State
	index     map[string]int
	initial   int
	registers Registers
	mu        [][][]int
	rho       []int

	fixed     int
	fixedSlot []int32
}

// NumStates returns the number of states.
func (a *Automaton) NumStates() int {
	return len(a.states)
}

// NumRegisters returns R, the number of register slots.
func (a *Automaton) NumRegisters() int {
	return len(a.registers)
}

// State returns the state at index q.
func (a *Automaton) State(q int) State {
	return a.states[q]
}

// States returns a copy of the state table in index order.
func (a *Automaton) States() []State {
	out := make([]State, len(a.states))
	copy(out, a.states)
	return out
}

// StateByName resolves a state name to its index.
func (a *Automaton) StateByName(name string) (int, bool) {
	q, ok := a.index[name]
	return q, ok
}

// Initial returns the index of the initial state.
func (a *Automaton) Initial() int {
	return a.initial
}

// Registers returns a copy of the initial register contents.
func (a *Automaton) Registers() Registers {
	return a.registers.Clone()
}

// InitialConfiguration returns the start configuration with its own
// register snapshot.
func (a *Automaton) InitialConfiguration() Configuration {
	return Configuration{State: a.initial, Registers: a.registers.Clone()}
}

// IsFinal reports whether state q is accepting.
func (a *Automaton) IsFinal(q int) bool {
	return a.states[q].Final
}

// Transitions returns the targets of mu(q, reg).
//
// The returned slice is shared with the automaton and must not be modified.
func (a *Automaton) Transitions(q, reg int) []int {
	return a.mu[q][reg]
}

// Assignment returns rho(q), the register receiving a fresh symbol when
// leaving q, and whether it is defined.
func (a *Automaton) Assignment(q int) (int, bool) {
	r := a.rho[q]
	return r, r != noAssignment
}

// IsDeterministic reports whether every (state, register) pair has at most
// one target.
func (a *Automaton) IsDeterministic() bool {
	for _, row := range a.mu {
		for _, targets := range row {
			if len(targets) > 1 {
				return false
			}
		}
	}
	return true
}

// OutDegree returns the number of (register, target) edges leaving q.
func (a *Automaton) OutDegree(q int) int {
	n := 0
	for _, targets := range a.mu[q] {
		n += len(targets)
	}
	return n
}

// LabeledRegisters returns how many registers have at least one outgoing
// transition from q.
func (a *Automaton) LabeledRegisters(q int) int {
	n := 0
	for _, targets := range a.mu[q] {
		if len(targets) > 0 {
			n++
		}
	}
	return n
}

// NumTransitions returns the total number of (state, register, target)
// triples.
func (a *Automaton) NumTransitions() int {
	n := 0
	for q := range a.mu {
		n += a.OutDegree(q)
	}
	return n
}

// FixedPrefix returns how many leading registers are fixed (never assigned).
// Zero means the automaton was not partitioned.
func (a *Automaton) FixedPrefix() int {
	return a.fixed
}

// Locate returns the register of regs holding s, or -1.
//
// Description:
//
//	Initial register values are pairwise distinct and rho only stores
//	symbols no register holds, so at most one register matches. Fixed
//	registers are resolved through the symbol table in O(1); the writable
//	suffix is scanned.
//
// Inputs:
//   - regs: A snapshot derived from this automaton's initial registers.
//   - s: The symbol to look up.
//
// Outputs:
//   - int: Register index, or -1 when no register holds s.
func (a *Automaton) Locate(regs Registers, s Symbol) int {
	if s < 0 {
		return -1
	}
	start := 0
	if a.fixedSlot != nil {
		if int(s) < len(a.fixedSlot) {
			if i := a.fixedSlot[s]; i >= 0 {
				return int(i)
			}
		}
		start = a.fixed
	}
	for i := start; i < len(regs); i++ {
		if regs[i] == s {
			return i
		}
	}
	return -1
}
