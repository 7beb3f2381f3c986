// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package strips reduces bounded emptiness of a register automaton to SAT.
//
// An automaton is abstracted to a STRIPS planning problem whose fluents are
// the current state and the fullness of each register:
//
//	at(t, q)      the automaton is in state q after t steps
//	regset(t, r)  register r holds a symbol after t steps
//
// Every transition (q, r, q') becomes one action per step t:
//
//	                 q != q'                 q == q'
//	r != rho(q)      move(t,q,r,q')          movesame(t,q,r)
//	r == rho(q)      moverho(t,q,r,q')       movesamerho(t,q,r)
//
// Non-rho actions need regset(t, r); rho actions set regset(t+1, r). Steps
// with no action keep every fluent, so a plan of length N covers every
// shorter run. Non-empty register values are always pairwise distinct, so
// (state, fullness) determines a configuration up to renaming and the
// abstraction is exact: the CNF is satisfiable iff some accepted word has a
// run of at most N transitions.
//
// Encode emits the plan as CNF: initial units, the goal disjunction over
// at(N, final), preconditions, effects, explanatory frame axioms and
// pairwise mutex per step. WriteDIMACS and WriteLiteralMap serialize it;
// Decode turns a solver model back into actions and Word into an input
// the search package accepts.
package strips
