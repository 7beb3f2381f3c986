// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestNew_StderrOnly(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer lg.Close()

	lg.Slog().Info("hidden")
	lg.Slog().Warn("shown", slog.Int("n", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "n=3")
}

func TestNew_JSONStderr(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New(Config{JSON: true}, &buf)
	require.NoError(t, err)

	lg.Slog().Info("decided", slog.String("verdict", "accepted"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "decided", rec["msg"])
	assert.Equal(t, "accepted", rec["verdict"])
}

func TestNew_FileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var buf bytes.Buffer
	lg, err := New(Config{Level: "debug", Dir: dir, Service: "bench"}, &buf)
	require.NoError(t, err)

	lg.Slog().Debug("expanded", slog.Int("nodes", 12))
	require.NoError(t, lg.Close())
	require.NoError(t, lg.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "bench_"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "expanded", rec["msg"])
	assert.Equal(t, "bench", rec["service"])
	assert.EqualValues(t, 12, rec["nodes"])

	assert.Contains(t, buf.String(), "msg=expanded")
}

func TestNew_QuietNeedsFile(t *testing.T) {
	var buf bytes.Buffer
	lg, err := New(Config{Quiet: true}, &buf)
	require.NoError(t, err)
	lg.Slog().Info("still here")
	assert.Contains(t, buf.String(), "still here")

	dir := t.TempDir()
	buf.Reset()
	lg, err = New(Config{Quiet: true, Dir: dir}, &buf)
	require.NoError(t, err)
	defer lg.Close()
	lg.Slog().Info("file only")
	assert.Empty(t, buf.String())
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
