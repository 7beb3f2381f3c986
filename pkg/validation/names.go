// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


// Package validation checks user-provided tokens before they are written
// into line-oriented formats, where a stray separator would change how the
// file parses back.
package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidName is returned for names a line format cannot carry.
var ErrInvalidName = errors.New("invalid name")

// statePattern matches one whitespace-free token that does not open a
// comment.
var statePattern = regexp.MustCompile(`^[^%\s]\S*$`)

// reservedNames are tokens with a structural meaning on their own.
var reservedNames = map[string]bool{
	"-": true,
}

// ValidateStateName reports whether name survives a round trip through the
// automaton text format.
//
// Valid names:
//   - are non-empty
//   - contain no whitespace
//   - do not start with the comment marker %
//   - are not the section separator -
//
// Example:
//
//	if err := validation.ValidateStateName(s.Name); err != nil {
//	    return fmt.Errorf("format: %w", err)
//	}
func ValidateStateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if reservedNames[name] || !statePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateStateNames validates every name and lists all the invalid ones.
func ValidateStateNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if ValidateStateName(n) != nil {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %q", ErrInvalidName, invalid)
	}
	return nil
}
