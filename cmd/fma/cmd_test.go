// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/search"
)

// oneShot accepts exactly the one-symbol words: q0 stores a fresh symbol
// in register 1 and moves to the final q1.
const oneShot = `q0 1
q1 _ F
-
q0
#
-
q0 1 q1
`

// cliEnv writes a config and an automaton into a temp dir.
func cliEnv(t *testing.T) (cfgPath, autoPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "fma.yaml")
	autoPath = filepath.Join(dir, "one_shot.fma")
	cfg := "store:\n  enabled: true\n  path: " + filepath.Join(dir, "store") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(autoPath, []byte(oneShot), 0o600))
	return cfgPath, autoPath
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// Subtests share the root command, whose flag values persist between
// executions, so they run in order.
func TestCLI(t *testing.T) {
	cfgPath, autoPath := cliEnv(t)

	t.Run("member accepts", func(t *testing.T) {
		out, err := execute(t, cfgPath, "member", autoPath, "5")
		require.NoError(t, err)
		assert.Contains(t, out, "[5] accepted")
	})

	t.Run("member rejects", func(t *testing.T) {
		out, err := execute(t, cfgPath, "member", autoPath, "5", "5")
		require.NoError(t, err)
		assert.Contains(t, out, "[5 5] rejected")
	})

	t.Run("member bad symbol", func(t *testing.T) {
		_, err := execute(t, cfgPath, "member", autoPath, "x")
		assert.ErrorIs(t, err, automaton.ErrInvalidSymbol)
	})

	t.Run("member all strategies", func(t *testing.T) {
		out, err := execute(t, cfgPath, "member", "--algorithm", "all", "--witness", autoPath, "7")
		require.NoError(t, err)
		assert.Contains(t, out, "[7] accepted")
		for _, name := range []string{"astar", "bflgs", "deterministic", "greedy", "ldfts"} {
			assert.Contains(t, out, "  "+name+" ")
		}
		// One witness, after the per-strategy lines.
		assert.Equal(t, 1, strings.Count(out, "read 7"))
		assert.Greater(t, strings.Index(out, "  start"), strings.Index(out, "  ldfts"))
	})

	t.Run("empty", func(t *testing.T) {
		out, err := execute(t, cfgPath, "empty", autoPath)
		require.NoError(t, err)
		assert.Contains(t, out, "non-empty: accepts [1]")
	})

	t.Run("encode", func(t *testing.T) {
		out, err := execute(t, cfgPath, "encode", "--horizon", "2", autoPath)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "p cnf "), out)
	})

	t.Run("encode decodes unsat model", func(t *testing.T) {
		model := filepath.Join(t.TempDir(), "model.txt")
		require.NoError(t, os.WriteFile(model, []byte("UNSAT\n"), 0o600))
		out, err := execute(t, cfgPath, "encode", "--model", model, autoPath)
		require.NoError(t, err)
		assert.Contains(t, out, "unsatisfiable")
	})

	t.Run("optimize", func(t *testing.T) {
		out, err := execute(t, cfgPath, "optimize", autoPath)
		require.NoError(t, err)
		assert.Contains(t, out, "fixed registers: 0 of 1")
		_, err = automaton.ParseString(out[strings.Index(out, "q0"):])
		assert.NoError(t, err)
	})

	t.Run("history", func(t *testing.T) {
		out, err := execute(t, cfgPath, "history", "--kind", "member")
		require.NoError(t, err)
		assert.Contains(t, out, "ALGORITHM")
		assert.Contains(t, out, "bflgs")
	})
}

func TestParseWord(t *testing.T) {
	w, err := parseWord([]string{"1", "0", "42"})
	require.NoError(t, err)
	assert.Equal(t, automaton.Word{1, 0, 42}, w)

	w, err = parseWord(nil)
	require.NoError(t, err)
	assert.Empty(t, w)

	_, err = parseWord([]string{"-3"})
	assert.ErrorIs(t, err, automaton.ErrInvalidSymbol)
}

func TestReadWords(t *testing.T) {
	words, err := readWords(strings.NewReader("1 2\n# comment\n\n3\n"))
	require.NoError(t, err)
	assert.Equal(t, []automaton.Word{{1, 2}, {}, {3}}, words)

	_, err = readWords(strings.NewReader("1\nfoo\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestSelectAlgorithms(t *testing.T) {
	det, err := automaton.ParseString(oneShot)
	require.NoError(t, err)
	require.True(t, det.IsDeterministic())
	cfg := search.DefaultConfig()

	names := func(algos []search.Algorithm) []string {
		var out []string
		for _, a := range algos {
			out = append(out, a.Name())
		}
		return out
	}

	algos, err := selectAlgorithms("auto", det, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{search.NameDeterministic}, names(algos))

	algos, err = selectAlgorithms("all", det, cfg)
	require.NoError(t, err)
	assert.Len(t, algos, 5)

	algos, err = selectAlgorithms("greedy", det, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{search.NameGreedy}, names(algos))

	_, err = selectAlgorithms("emptiness", det, cfg)
	assert.ErrorIs(t, err, search.ErrUnknownAlgorithm)

	_, err = selectAlgorithms("dijkstra", det, cfg)
	assert.ErrorIs(t, err, search.ErrUnknownAlgorithm)
}
