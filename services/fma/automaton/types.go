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
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Package-level error definitions.
var (
	// ErrInvalidAutomaton is returned when a builder describes an automaton
	// that violates a structural invariant.
	ErrInvalidAutomaton = errors.New("invalid automaton")

	// ErrUnknownState is returned when a state name cannot be resolved.
	ErrUnknownState = errors.New("unknown state")

	// ErrInvalidSymbol is returned when a word contains a negative symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// -----------------------------------------------------------------------------
// Symbols and Registers
// -----------------------------------------------------------------------------

// Symbol is a letter of the unbounded alphabet.
//
// Symbols read from words are non-negative. Empty marks a register that
// holds no symbol.
type Symbol int

// Empty is the sentinel stored in a register that holds no symbol.
const Empty Symbol = -1

// IsEmpty reports whether s is the empty sentinel.
func (s Symbol) IsEmpty() bool {
	return s == Empty
}

// String renders the symbol, using "#" for Empty.
func (s Symbol) String() string {
	if s == Empty {
		return "#"
	}
	return strconv.Itoa(int(s))
}

// Word is a finite sequence of symbols.
type Word []Symbol

// Validate checks that every symbol of the word is non-negative.
func (w Word) Validate() error {
	for i, s := range w {
		if s < 0 {
			return fmt.Errorf("%w: position %d holds %d", ErrInvalidSymbol, i, int(s))
		}
	}
	return nil
}

// String renders the word as space separated symbols.
func (w Word) String() string {
	parts := make([]string, len(w))
	for i, s := range w {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Registers is a snapshot of register contents.
//
// Description:
//
//	A snapshot is never written after it has been attached to a
//	configuration. Use With to derive a modified copy.
//
// Thread Safety: Safe for concurrent reads.
type Registers []Symbol

// With returns a copy of r with slot i set to s.
//
// Inputs:
//   - i: Register index in [0, len(r)).
//   - s: Symbol to store.
//
// Outputs:
//   - Registers: A fresh snapshot. r itself is untouched.
func (r Registers) With(i int, s Symbol) Registers {
	next := make(Registers, len(r))
	copy(next, r)
	next[i] = s
	return next
}

// Clone returns an independent copy of r.
func (r Registers) Clone() Registers {
	return slices.Clone(r)
}

// Contains reports whether some register holds s.
func (r Registers) Contains(s Symbol) bool {
	return slices.Contains(r, s)
}

// Full reports whether slot i holds a symbol.
func (r Registers) Full(i int) bool {
	return r[i] != Empty
}

// Fresh returns the smallest positive symbol held by no register.
func (r Registers) Fresh() Symbol {
	for s := Symbol(1); ; s++ {
		if !r.Contains(s) {
			return s
		}
	}
}

// Equal reports whether both snapshots hold the same symbols slot by slot.
func (r Registers) Equal(o Registers) bool {
	return slices.Equal(r, o)
}

// String renders the snapshot, e.g. "[3 # 7]".
func (r Registers) String() string {
	return Word(r).String()
}

// -----------------------------------------------------------------------------
// States and Configurations
// -----------------------------------------------------------------------------

// State is an automaton state. Identity is the name, unique within an
// automaton.
type State struct {
	Name  string
	Final bool
}

// Configuration is a state paired with a register snapshot.
//
// Thread Safety: Immutable value; safe for concurrent reads.
type Configuration struct {
	// State is the dense state index inside the owning automaton.
	State int

	// Registers is the snapshot owned by this configuration.
	Registers Registers
}

// Equal reports whether c and o denote the same configuration.
func (c Configuration) Equal(o Configuration) bool {
	return c.State == o.State && c.Registers.Equal(o.Registers)
}

// Hash returns a 64-bit digest of the state and exact register contents.
func (c Configuration) Hash() uint64 {
	return HashOf(c.State, c.Registers, -1)
}

// HashOf digests a state, a register snapshot and an optional cursor.
//
// Description:
//
//	Used by the search engine to key visited and frontier sets. Pass a
//	negative cursor when the cursor is not part of the identity.
//
// Outputs:
//   - uint64: xxhash digest. Equal inputs give equal digests; callers must
//     still compare the inputs on collision.
func HashOf(state int, regs Registers, cursor int) uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(state))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(cursor))
	_, _ = d.Write(buf[:])
	for _, s := range regs {
		binary.LittleEndian.PutUint64(buf[:], uint64(s))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
