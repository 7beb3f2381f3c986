// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "q0", true},
		{"punctuation", "acc_1.b", true},
		{"hash inside", "q#1", true},
		{"dash inside", "q-1", true},
		{"empty", "", false},
		{"separator", "-", false},
		{"comment", "%q", false},
		{"space", "q 0", false},
		{"tab", "q\t0", false},
		{"newline", "q0\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStateName(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidName)
			}
		})
	}
}

func TestValidateStateNames(t *testing.T) {
	assert.NoError(t, ValidateStateNames([]string{"q0", "q1"}))

	err := ValidateStateNames([]string{"q0", "-", "a b"})
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Contains(t, err.Error(), `"-"`)
	assert.Contains(t, err.Error(), `"a b"`)
	assert.NotContains(t, err.Error(), `"q0"`)
}
