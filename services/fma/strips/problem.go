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

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
)

var (
	// ErrNilAutomaton is returned when Build receives nil.
	ErrNilAutomaton = errors.New("automaton must not be nil")

	// ErrInvalidHorizon is returned for a negative horizon.
	ErrInvalidHorizon = errors.New("invalid horizon")
)

// ActionKind distinguishes the four action shapes.
type ActionKind int

const (
	// Move reads a full non-rho register and changes state.
	Move ActionKind = iota

	// MoveRho reads through the rho register and changes state.
	MoveRho

	// MoveSame reads a full non-rho register on a self-loop. It has no
	// effect on any fluent.
	MoveSame

	// MoveSameRho reads through the rho register on a self-loop.
	MoveSameRho
)

func (k ActionKind) String() string {
	switch k {
	case Move:
		return "move"
	case MoveRho:
		return "moverho"
	case MoveSame:
		return "movesame"
	case MoveSameRho:
		return "movesamerho"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// Action is one grounded action at one step.
type Action struct {
	Kind     ActionKind
	Step     int
	From     int
	Register int
	To       int
}

// rho reports whether the action writes its register.
func (a Action) rho() bool {
	return a.Kind == MoveRho || a.Kind == MoveSameRho
}

// moves reports whether the action changes state.
func (a Action) moves() bool {
	return a.Kind == Move || a.Kind == MoveRho
}

func (a Action) name(auto *automaton.Automaton) string {
	from := auto.State(a.From).Name
	if a.moves() {
		return fmt.Sprintf("%s(%d,%s,%d,%s)", a.Kind, a.Step, from, a.Register, auto.State(a.To).Name)
	}
	return fmt.Sprintf("%s(%d,%s,%d)", a.Kind, a.Step, from, a.Register)
}

// Options controls Build.
type Options struct {
	// Horizon is the number of steps N. Zero means DefaultHorizon.
	Horizon int `yaml:"horizon" validate:"min=0"`

	// Smart drops actions that can never fire.
	Smart bool `yaml:"smart"`
}

// DefaultHorizon returns |Q|·R.
func DefaultHorizon(a *automaton.Automaton) int {
	return a.NumStates() * a.NumRegisters()
}

// CompleteHorizon returns |Q|·(R+1). Fullness only grows, so a shortest
// accepting run visits at most R+1 fullness patterns with at most |Q|
// states each, and always fits.
func CompleteHorizon(a *automaton.Automaton) int {
	return a.NumStates() * (a.NumRegisters() + 1)
}

// Problem is a grounded STRIPS problem with its literal registry.
//
// Thread Safety: Immutable after Build; safe for concurrent reads.
type Problem struct {
	automaton *automaton.Automaton
	horizon   int
	smart     bool
	literals  *Registry
	actions   [][]Action
	actionLit map[Action]int
}

// Build grounds the STRIPS problem for a at the given horizon.
//
// Description:
//
//	Registers the fluents at(t,q) and regset(t,r) for every t in [0,N],
//	then the actions of every step t in [0,N). The naive encoder grounds
//	every transition at every step. The smart encoder skips movesame,
//	skips non-rho reads of registers that are empty initially and never
//	written, and skips actions whose source is not reachable within t steps
//	of the initial state in the transition graph.
//
// Outputs:
//   - *Problem: The grounded problem.
//   - error: ErrNilAutomaton, ErrInvalidHorizon or an ErrInternal wrap.
func Build(a *automaton.Automaton, opts Options) (*Problem, error) {
	if a == nil {
		return nil, ErrNilAutomaton
	}
	if opts.Horizon < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, opts.Horizon)
	}
	n := opts.Horizon
	if n == 0 {
		n = DefaultHorizon(a)
	}

	p := &Problem{
		automaton: a,
		horizon:   n,
		smart:     opts.Smart,
		literals:  NewRegistry(),
		actions:   make([][]Action, n),
		actionLit: make(map[Action]int),
	}

	for t := 0; t <= n; t++ {
		for q := 0; q < a.NumStates(); q++ {
			if _, err := p.literals.Add(atName(t, a.State(q).Name)); err != nil {
				return nil, err
			}
		}
		for r := 0; r < a.NumRegisters(); r++ {
			if _, err := p.literals.Add(regsetName(t, r)); err != nil {
				return nil, err
			}
		}
	}

	templates := p.templates()
	var reach []bool
	if p.smart {
		reach = make([]bool, a.NumStates())
		reach[a.Initial()] = true
	}
	for t := 0; t < n; t++ {
		for _, tmpl := range templates {
			if p.smart && !reach[tmpl.From] {
				continue
			}
			act := tmpl
			act.Step = t
			lit, err := p.literals.Add(act.name(a))
			if err != nil {
				return nil, err
			}
			p.actions[t] = append(p.actions[t], act)
			p.actionLit[act] = lit
		}
		if p.smart {
			reach = p.advance(reach, templates)
		}
	}
	return p, nil
}

// templates returns one step-less action per usable transition.
func (p *Problem) templates() []Action {
	a := p.automaton
	written := make([]bool, a.NumRegisters())
	for q := 0; q < a.NumStates(); q++ {
		if r, ok := a.Assignment(q); ok {
			written[r] = true
		}
	}
	initial := a.Registers()

	var out []Action
	for q := 0; q < a.NumStates(); q++ {
		rho, hasRho := a.Assignment(q)
		for r := 0; r < a.NumRegisters(); r++ {
			isRho := hasRho && rho == r
			for _, to := range a.Transitions(q, r) {
				act := Action{From: q, Register: r, To: to}
				switch {
				case isRho && to == q:
					act.Kind = MoveSameRho
				case isRho:
					act.Kind = MoveRho
				case to == q:
					act.Kind = MoveSame
				default:
					act.Kind = Move
				}
				if p.smart {
					if act.Kind == MoveSame {
						continue
					}
					if !isRho && initial[r] == automaton.Empty && !written[r] {
						continue
					}
				}
				out = append(out, act)
			}
		}
	}
	return out
}

// advance extends reach by one step of the transition graph.
func (p *Problem) advance(reach []bool, templates []Action) []bool {
	next := make([]bool, len(reach))
	copy(next, reach)
	for _, act := range templates {
		if reach[act.From] {
			next[act.To] = true
		}
	}
	return next
}

// Automaton returns the automaton the problem was built from.
func (p *Problem) Automaton() *automaton.Automaton {
	return p.automaton
}

// Horizon returns N.
func (p *Problem) Horizon() int {
	return p.horizon
}

// Actions returns the actions grounded at step t. The slice is shared.
func (p *Problem) Actions(t int) []Action {
	if t < 0 || t >= len(p.actions) {
		return nil
	}
	return p.actions[t]
}

// NumActions returns the number of grounded actions over all steps.
func (p *Problem) NumActions() int {
	return len(p.actionLit)
}

// NumLiterals returns (N+1)·(|Q|+R) + NumActions().
func (p *Problem) NumLiterals() int {
	return p.literals.Len()
}

// Literals returns the registry. Callers must not add to it.
func (p *Problem) Literals() *Registry {
	return p.literals
}
