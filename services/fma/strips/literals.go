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
)

var (
	// ErrInternal marks an encoder consistency failure. It is a defect,
	// never an input problem.
	ErrInternal = errors.New("internal encoder error")

	// ErrDuplicateLiteral is returned when a literal name is registered twice.
	ErrDuplicateLiteral = fmt.Errorf("%w: duplicate literal", ErrInternal)

	// ErrUnknownLiteral is returned when a clause names an unregistered literal.
	ErrUnknownLiteral = fmt.Errorf("%w: unknown literal", ErrInternal)
)

// Registry assigns DIMACS variable indices (1, 2, ...) to literal names in
// registration order.
type Registry struct {
	names []string
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add registers name and returns its index.
func (r *Registry) Add(name string) (int, error) {
	if i, ok := r.index[name]; ok {
		return 0, fmt.Errorf("%w: %s already has index %d", ErrDuplicateLiteral, name, i)
	}
	r.names = append(r.names, name)
	i := len(r.names)
	r.index[name] = i
	return i, nil
}

// Lookup returns the index of name.
func (r *Registry) Lookup(name string) (int, error) {
	i, ok := r.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLiteral, name)
	}
	return i, nil
}

// Name returns the name of index i.
func (r *Registry) Name(i int) (string, bool) {
	if i < 1 || i > len(r.names) {
		return "", false
	}
	return r.names[i-1], true
}

// Len returns the number of registered literals.
func (r *Registry) Len() int {
	return len(r.names)
}

func atName(t int, state string) string {
	return fmt.Sprintf("at(%d,%s)", t, state)
}

func regsetName(t, reg int) string {
	return fmt.Sprintf("regset(%d,%d)", t, reg)
}
