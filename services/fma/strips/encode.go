// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package strips

import "github.com/AleutianAI/AleutianFMA/services/fma/automaton"

// CNF is a formula in conjunctive normal form over DIMACS variables
// 1..NumVars. Names, when set, maps variable i to Names[i-1].
type CNF struct {
	NumVars int
	Clauses [][]int
	Names   []string
}

// NumClauses returns len(Clauses).
func (c *CNF) NumClauses() int {
	return len(c.Clauses)
}

// encoder resolves literal names through the registry and keeps the first
// lookup error.
type encoder struct {
	p       *Problem
	clauses [][]int
	err     error
}

func (e *encoder) lit(name string) int {
	if e.err != nil {
		return 0
	}
	i, err := e.p.literals.Lookup(name)
	if err != nil {
		e.err = err
	}
	return i
}

func (e *encoder) at(t, q int) int {
	return e.lit(atName(t, e.p.automaton.State(q).Name))
}

func (e *encoder) regset(t, r int) int {
	return e.lit(regsetName(t, r))
}

func (e *encoder) action(act Action) int {
	return e.lit(act.name(e.p.automaton))
}

func (e *encoder) add(lits ...int) {
	e.clauses = append(e.clauses, lits)
}

// Encode emits the CNF of the problem.
//
// Description:
//
//	Init: at(0,initial), ¬at(0,q) for q ≠ initial, and regset(0,r) or
//	¬regset(0,r) by initial fullness.
//	Goal: ∨ at(N,q) over final q. With no final state the goal is the
//	contradiction x ∧ ¬x on x = at(N,initial).
//	Per step t and action a:
//	  preconditions  ¬a ∨ at(t,from); non-rho: ¬a ∨ regset(t,r)
//	  effects        moving: ¬a ∨ at(t+1,to), ¬a ∨ ¬at(t+1,from);
//	                 rho: ¬a ∨ regset(t+1,r)
//	  mutex          ¬a ∨ ¬b for every other b at t
//	Per step t and fluent F:
//	  add-frame      ¬F(t+1) ∨ F(t) ∨ adders
//	  delete-frame   F(t+1) ∨ ¬F(t) ∨ deleters
//
// Outputs:
//   - *CNF: The formula with literal names attached.
//   - error: ErrUnknownLiteral if a clause names an unregistered literal.
func (p *Problem) Encode() (*CNF, error) {
	a := p.automaton
	e := &encoder{p: p}
	initial := a.Registers()

	for q := 0; q < a.NumStates(); q++ {
		if q == a.Initial() {
			e.add(e.at(0, q))
		} else {
			e.add(-e.at(0, q))
		}
	}
	for r := range initial {
		if initial[r] != automaton.Empty {
			e.add(e.regset(0, r))
		} else {
			e.add(-e.regset(0, r))
		}
	}

	var goal []int
	for q := 0; q < a.NumStates(); q++ {
		if a.IsFinal(q) {
			goal = append(goal, e.at(p.horizon, q))
		}
	}
	if len(goal) == 0 {
		x := e.at(p.horizon, a.Initial())
		e.add(x)
		e.add(-x)
	} else {
		e.add(goal...)
	}

	for t := 0; t < p.horizon; t++ {
		p.encodeStep(e, t)
	}

	if e.err != nil {
		return nil, e.err
	}
	names := make([]string, p.literals.Len())
	copy(names, p.literals.names)
	return &CNF{NumVars: p.literals.Len(), Clauses: e.clauses, Names: names}, nil
}

func (p *Problem) encodeStep(e *encoder, t int) {
	a := p.automaton
	acts := p.actions[t]
	lits := make([]int, len(acts))
	for i, act := range acts {
		lits[i] = e.action(act)
	}

	adders := make([][]int, a.NumStates())
	deleters := make([][]int, a.NumStates())
	setters := make([][]int, a.NumRegisters())

	for i, act := range acts {
		x := lits[i]
		e.add(-x, e.at(t, act.From))
		if !act.rho() {
			e.add(-x, e.regset(t, act.Register))
		}
		if act.moves() {
			e.add(-x, e.at(t+1, act.To))
			e.add(-x, -e.at(t+1, act.From))
			adders[act.To] = append(adders[act.To], x)
			deleters[act.From] = append(deleters[act.From], x)
		}
		if act.rho() {
			e.add(-x, e.regset(t+1, act.Register))
			setters[act.Register] = append(setters[act.Register], x)
		}
	}

	for q := 0; q < a.NumStates(); q++ {
		e.add(append([]int{-e.at(t+1, q), e.at(t, q)}, adders[q]...)...)
		e.add(append([]int{e.at(t+1, q), -e.at(t, q)}, deleters[q]...)...)
	}
	for r := 0; r < a.NumRegisters(); r++ {
		e.add(append([]int{-e.regset(t+1, r), e.regset(t, r)}, setters[r]...)...)
		e.add(e.regset(t+1, r), -e.regset(t, r))
	}

	for i := range lits {
		for j := i + 1; j < len(lits); j++ {
			e.add(-lits[i], -lits[j])
		}
	}
}
