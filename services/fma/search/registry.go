// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"fmt"
	"slices"
	"strings"
)

// Algorithm names accepted by NewAlgorithm.
const (
	NameDeterministic = "deterministic"
	NameLDFTS         = "ldfts"
	NameBFLGS         = "bflgs"
	NameGreedy        = "greedy"
	NameAStar         = "astar"
	NameEmptiness     = "emptiness"
)

var constructors = map[string]func(*Config) Algorithm{
	NameDeterministic: func(c *Config) Algorithm { return NewDeterministic(c) },
	NameLDFTS:         func(c *Config) Algorithm { return NewLDFTS(c) },
	NameBFLGS:         func(c *Config) Algorithm { return NewBFLGS(c) },
	NameGreedy:        func(c *Config) Algorithm { return NewGreedy(c) },
	NameAStar:         func(c *Config) Algorithm { return NewAStar(c) },
	NameEmptiness:     func(c *Config) Algorithm { return NewEmptiness(c) },
}

// Names returns every registered algorithm name, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NewAlgorithm creates the algorithm registered under name.
func NewAlgorithm(name string, config *Config) (Algorithm, error) {
	ctor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	return ctor(config), nil
}

// MembershipAlgorithms returns the four frontier strategies. The
// deterministic fast path is excluded because it refuses nondeterministic
// automata.
func MembershipAlgorithms(config *Config) []Algorithm {
	return []Algorithm{
		NewLDFTS(config),
		NewBFLGS(config),
		NewGreedy(config),
		NewAStar(config),
	}
}
