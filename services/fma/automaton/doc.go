// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package automaton provides the finite-memory (register) automaton model.
//
// Architecture:
//
//	A register automaton reads words over an unbounded alphabet of integer
//	symbols. It remembers at most R previously read symbols in registers and
//	branches on "is the current symbol already remembered":
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│  read s                                                              │
//	│     │                                                                │
//	│     ├── register i holds s ──────────────► follow mu(q, i)            │
//	│     │                                                                │
//	│     ├── no register holds s, rho(q) = r ─► reg[r] := s, mu(q, r)      │
//	│     │                                                                │
//	│     └── otherwise ───────────────────────► branch dies               │
//	└──────────────────────────────────────────────────────────────────────┘
//
// Ownership:
//
//	Automata are immutable after Builder.Build. Register snapshots
//	(Registers) are immutable by convention: every step that changes a
//	register produces a new snapshot via Registers.With, so configurations
//	never share a buffer that somebody later writes to.
//
// Text format:
//
//	Parse and Format read and write the line-oriented description used by the
//	command line tools. See Parse for the grammar.
package automaton
