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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned by Get for an unknown ID.
	ErrNotFound = errors.New("record not found")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store is closed")
)

// Record kinds.
const (
	KindMember = "member"
	KindEmpty  = "empty"
	KindBench  = "bench"
)

// Record is one persisted algorithm run.
type Record struct {
	ID           string        `json:"id"`
	RunID        string        `json:"run_id,omitempty"`
	Kind         string        `json:"kind"`
	Source       string        `json:"source"`
	Algorithm    string        `json:"algorithm"`
	Verdict      string        `json:"verdict,omitempty"`
	WordLength   int           `json:"word_length"`
	States       int           `json:"states"`
	Registers    int           `json:"registers"`
	Expanded     int           `json:"expanded"`
	Generated    int           `json:"generated"`
	PeakFrontier int           `json:"peak_frontier"`
	Pruned       int           `json:"pruned"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Kind      string
	RunID     string
	Algorithm string
	Limit     int
}

func (f Filter) match(r *Record) bool {
	return (f.Kind == "" || r.Kind == f.Kind) &&
		(f.RunID == "" || r.RunID == f.RunID) &&
		(f.Algorithm == "" || r.Algorithm == f.Algorithm)
}

const (
	recordPrefix = "rec/"
	idPrefix     = "id/"
)

func recordKey(r *Record) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", recordPrefix, r.CreatedAt.UnixNano(), r.ID))
}

func idKey(id string) []byte {
	return []byte(idPrefix + id)
}

// Store is a BadgerDB-backed record store.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	db     *badger.DB
	gc     *gcRunner
	logger *slog.Logger
	now    func() time.Time
}

// Open opens the store described by cfg.
func Open(cfg Config) (*Store, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:     db,
		logger: logger.With(slog.String("component", "record_store")),
		now:    time.Now,
	}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.gc = startGC(db, cfg.GCInterval, cfg.GCDiscardRatio, s.logger)
	}
	return s, nil
}

// OpenInMemory opens an in-memory store.
func OpenInMemory() (*Store, error) {
	return Open(InMemoryConfig())
}

// Close stops GC and closes the database. Safe to call twice.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	if s.gc != nil {
		s.gc.stop()
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Put stores records in one transaction, assigning an ID and CreatedAt to
// those that lack them.
func (s *Store) Put(ctx context.Context, records ...*Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}

	now := s.now().UTC()
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, r := range records {
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			if r.CreatedAt.IsZero() {
				r.CreatedAt = now
			}
			value, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encode record %s: %w", r.ID, err)
			}
			key := recordKey(r)
			if err := txn.Set(key, value); err != nil {
				return err
			}
			if err := txn.Set(idKey(r.ID), key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put records: %w", err)
	}
	s.logger.Debug("records stored", slog.Int("count", len(records)))
	return nil
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err = txn.Get(key)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	var out []*Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(recordPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks from just past the prefix range.
		for it.Seek([]byte(recordPrefix + "\xff")); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if !f.match(&rec) {
				continue
			}
			out = append(out, &rec)
			if f.Limit > 0 && len(out) >= f.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// Runs returns the distinct run IDs of bench records, newest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	recs, err := s.List(ctx, Filter{Kind: KindBench})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var runs []string
	for _, r := range recs {
		if r.RunID != "" && !seen[r.RunID] {
			seen[r.RunID] = true
			runs = append(runs, r.RunID)
		}
	}
	return runs, nil
}

// Summary aggregates records per algorithm.
type Summary struct {
	Algorithm string
	Runs      int
	Failures  int
	Accepted  int
	Expanded  int
	Total     time.Duration
}

// Summarize groups records by algorithm, in first-seen order.
func Summarize(records []*Record) []Summary {
	index := make(map[string]int)
	var out []Summary
	for _, r := range records {
		i, ok := index[r.Algorithm]
		if !ok {
			i = len(out)
			index[r.Algorithm] = i
			out = append(out, Summary{Algorithm: r.Algorithm})
		}
		s := &out[i]
		s.Runs++
		s.Expanded += r.Expanded
		s.Total += r.Duration
		switch {
		case r.Error != "":
			s.Failures++
		case strings.EqualFold(r.Verdict, "accepted"):
			s.Accepted++
		}
	}
	return out
}
