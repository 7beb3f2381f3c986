// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// clock returns a now func that advances one second per call.
func clock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestStore_PutGet(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	rec := &Record{Kind: KindMember, Source: "a.fma", Algorithm: "bflgs", Verdict: "accepted", Expanded: 3, Duration: time.Millisecond}
	require.NoError(t, s.Put(ctx, rec))
	require.NotEmpty(t, rec.ID)
	require.False(t, rec.CreatedAt.IsZero())

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Algorithm, got.Algorithm)
	assert.Equal(t, rec.Verdict, got.Verdict)
	assert.Equal(t, rec.Expanded, got.Expanded)
	assert.Equal(t, rec.Duration, got.Duration)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTest(t)
	s.now = clock()
	ctx := context.Background()

	for _, algo := range []string{"ldfts", "bflgs", "astar"} {
		require.NoError(t, s.Put(ctx, &Record{Kind: KindBench, RunID: "r1", Algorithm: algo}))
	}
	require.NoError(t, s.Put(ctx, &Record{Kind: KindEmpty, Algorithm: "emptiness"}))
	require.NoError(t, s.Put(ctx, &Record{Kind: KindBench, RunID: "r2", Algorithm: "greedy"}))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "greedy", all[0].Algorithm)
	assert.Equal(t, "ldfts", all[4].Algorithm)

	bench, err := s.List(ctx, Filter{Kind: KindBench, RunID: "r1"})
	require.NoError(t, err)
	assert.Len(t, bench, 3)

	limited, err := s.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r1"}, runs)
}

func TestStore_Closed(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Put(context.Background(), &Record{}), ErrClosed)
	_, err = s.List(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	cfg.SyncWrites = false
	cfg.GCInterval = 0

	s, err := Open(cfg)
	require.NoError(t, err)
	rec := &Record{Kind: KindMember, Algorithm: "astar"}
	require.NoError(t, s.Put(context.Background(), rec))
	require.NoError(t, s.Close())

	s, err = Open(cfg)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "astar", got.Algorithm)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]*Record{
		{Algorithm: "bflgs", Verdict: "accepted", Expanded: 2, Duration: time.Second},
		{Algorithm: "astar", Verdict: "rejected", Expanded: 1},
		{Algorithm: "bflgs", Error: "budget", Expanded: 5, Duration: time.Second},
	})
	require.Len(t, sum, 2)
	assert.Equal(t, Summary{Algorithm: "bflgs", Runs: 2, Failures: 1, Accepted: 1, Expanded: 7, Total: 2 * time.Second}, sum[0])
	assert.Equal(t, "astar", sum[1].Algorithm)
}
