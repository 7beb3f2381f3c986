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
	"slices"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
)

// Decode returns the actions set true by model, ordered by step. model
// holds signed DIMACS literals; absent variables count as false.
func (p *Problem) Decode(model []int) []Action {
	truth := make(map[int]bool, len(model))
	for _, l := range model {
		if l > 0 {
			truth[l] = true
		}
	}
	var plan []Action
	for t := 0; t < p.horizon; t++ {
		for _, act := range p.actions[t] {
			if truth[p.actionLit[act]] {
				plan = append(plan, act)
			}
		}
	}
	return plan
}

// Name returns the literal name of act.
func (p *Problem) Name(act Action) string {
	return act.name(p.automaton)
}

// Word replays plan on concrete registers and returns the symbols read.
//
// Description:
//
//	Non-rho actions read the symbol their register holds. Rho actions read
//	the smallest positive symbol no register holds and store it. Actions
//	are replayed in step order; idle steps read nothing.
//
// Outputs:
//   - automaton.Word: A word whose run follows plan. Accepted by the
//     automaton when plan comes from a model of Encode.
func (p *Problem) Word(plan []Action) automaton.Word {
	plan = slices.Clone(plan)
	slices.SortStableFunc(plan, func(x, y Action) int { return x.Step - y.Step })

	regs := p.automaton.Registers()
	w := make(automaton.Word, 0, len(plan))
	for _, act := range plan {
		if act.rho() {
			s := regs.Fresh()
			regs = regs.With(act.Register, s)
			w = append(w, s)
			continue
		}
		w = append(w, regs[act.Register])
	}
	return w
}
