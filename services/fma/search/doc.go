// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search decides membership and emptiness for register automata.
//
// Architecture:
//
//	Every decision procedure implements Algorithm. They differ only in how
//	they order and share the frontier of configurations:
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│  MEMBERSHIP (word given)                                            │
//	│    deterministic   single forward pass, deterministic automata only │
//	│    ldfts           explicit stack, no de-duplication                │
//	│    bflgs           one set per word position, keyed by (q, regs)    │
//	│    greedy          three-class frontier, one-shot expansion         │
//	│    astar           max-heap on hScore[q][remaining], zero pruned    │
//	│                                                                     │
//	│  EMPTINESS (no word)                                                │
//	│    emptiness       generative BFS with a visited set                │
//	└─────────────────────────────────────────────────────────────────────┘
//
//	A Runner executes several algorithms on the same input concurrently
//	and CrossValidate turns a disagreement into ErrDisagreement.
//
// Algorithm Contract:
//
//	Algorithms MUST:
//	1. Never write to a register snapshot they did not allocate themselves
//	   for the configuration being created
//	2. Own their frontier and visited structures for the length of a call
//	3. Poll ctx every Config.CheckInterval expansions
//	4. Return a definite verdict (Accepted or Rejected) or an error
//
//	A dead branch (no register holds the symbol and rho is undefined, or
//	the labelled register has no transition) is not an error.
package search
