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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/generate"
	"github.com/AleutianAI/AleutianFMA/services/fma/heuristic"
	"github.com/AleutianAI/AleutianFMA/services/fma/search"
	"github.com/AleutianAI/AleutianFMA/services/fma/store"
	"github.com/AleutianAI/AleutianFMA/services/fma/telemetry"
)

// benchCase is one generated automaton with its words.
type benchCase struct {
	index     int
	automaton *automaton.Automaton
	words     []automaton.Word
}

// benchTally accumulates results across workers.
type benchTally struct {
	mu            sync.Mutex
	records       []*store.Record
	decisions     int
	undecided     int
	disagreements int
}

func (t *benchTally) add(recs []*store.Record, decisions, undecided, disagreements int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, recs...)
	t.decisions += decisions
	t.undecided += undecided
	t.disagreements += disagreements
}

func runBench(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	bc := appConfig.Bench
	if n, _ := cmd.Flags().GetInt("automata"); n > 0 {
		bc.Automata = n
	}
	if n, _ := cmd.Flags().GetInt("words"); n > 0 {
		bc.Words = n
	}
	if n, _ := cmd.Flags().GetUint64("seed"); n > 0 {
		bc.Seed = n
	}
	if n, _ := cmd.Flags().GetInt("parallel"); n > 0 {
		bc.Parallelism = n
	}

	if addr := metricsAddr(cmd); addr != "" {
		stop, err := serveMetrics(addr)
		if err != nil {
			return err
		}
		defer stop()
	}

	// Generate up front so results do not depend on worker scheduling.
	rng := generate.Source(bc.Seed)
	cases := make([]benchCase, bc.Automata)
	for i := range cases {
		a, err := generate.Automaton(rng, bc.Shape)
		if err != nil {
			return err
		}
		cases[i] = benchCase{
			index:     i,
			automaton: a,
			words:     generate.Words(rng, bc.Words, bc.MaxWordLength, bc.Alphabet),
		}
	}

	runID := uuid.NewString()
	cfg := searchConfig(cmd)
	tally := &benchTally{}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bc.Parallelism)
	for _, c := range cases {
		g.Go(func() error {
			return benchOne(gctx, runID, c, bc.MaxWordLength, cfg, tally)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range tally.records {
		r.RunID = runID
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		record(ctx, st, tally.records...)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d automata, %d decisions, %d undecided in %s\n",
		runID, bc.Automata, tally.decisions, tally.undecided, time.Since(start).Round(time.Millisecond))
	if err := printSummary(out, store.Summarize(tally.records)); err != nil {
		return err
	}
	if tally.disagreements > 0 {
		return fmt.Errorf("%w: %d decisions", search.ErrDisagreement, tally.disagreements)
	}
	return nil
}

// benchOne decides every word of c with every membership strategy, then
// checks the emptiness witness against membership. Disagreements are
// counted, not returned, so one bad case does not stop the run.
func benchOne(ctx context.Context, runID string, c benchCase, maxLen int, base *search.Config, tally *benchTally) error {
	a := c.automaton
	source := fmt.Sprintf("generated#%d", c.index)
	log := logger.With(slog.String("run_id", runID), slog.String("source", source))

	cfg := *base
	cfg.Witness = false
	cfg.Heuristic = heuristic.Load(a, maxLen)
	algos := search.MembershipAlgorithms(&cfg)
	if a.IsDeterministic() {
		algos = append(algos, search.NewDeterministic(&cfg))
	}
	opts := []search.RunnerOption{search.WithLogger(logger), search.WithMetrics(metrics)}

	var (
		recs          []*store.Record
		decisions     int
		undecided     int
		disagreements int
	)
	for _, w := range c.words {
		_, outcomes, err := search.Decide(ctx, &search.Input{Automaton: a, Word: w}, algos, opts...)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, o := range outcomes {
			recs = append(recs, newRecord(store.KindBench, source, a, len(w), o))
		}
		switch {
		case err == nil:
			decisions++
		case errors.Is(err, search.ErrDisagreement):
			decisions++
			disagreements++
			log.Error("membership disagreement", slog.String("word", w.String()), slog.String("error", err.Error()))
		default:
			undecided++
			log.Warn("membership undecided", slog.String("word", w.String()), slog.String("error", err.Error()))
		}
	}

	_, outcomes, err := search.Decide(ctx, &search.Input{Automaton: a},
		[]search.Algorithm{search.NewEmptiness(&cfg)}, opts...)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	for _, o := range outcomes {
		recs = append(recs, newRecord(store.KindEmpty, source, a, 0, o))
	}
	if err != nil {
		undecided++
		log.Warn("emptiness undecided", slog.String("error", err.Error()))
	} else {
		decisions++
	}
	if err == nil && outcomes[0].Result.Accepted() {
		w := outcomes[0].Result.Word
		res, err := search.NewBFLGS(&cfg).Decide(ctx, &search.Input{Automaton: a, Word: w})
		if err == nil && !res.Accepted() {
			disagreements++
			metrics.RecordDisagreement(ctx, search.KindEmptiness.String())
			log.Error("emptiness witness rejected by membership", slog.String("word", w.String()))
		}
	}

	tally.add(recs, decisions, undecided, disagreements)
	return nil
}

// serveMetrics exposes the Prometheus handler until stop is called.
func serveMetrics(addr string) (stop func(), err error) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		return nil, errors.New("prometheus exporter is not active")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func printSummary(w io.Writer, summaries []store.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tRUNS\tFAILED\tACCEPTED\tEXPANDED\tTOTAL\tMEAN")
	for _, s := range summaries {
		mean := time.Duration(0)
		if s.Runs > 0 {
			mean = s.Total / time.Duration(s.Runs)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
			s.Algorithm, s.Runs, s.Failures, s.Accepted, s.Expanded,
			s.Total.Round(time.Microsecond), mean.Round(time.Microsecond))
	}
	return tw.Flush()
}
