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
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/AleutianFMA/cmd/fma/config"
	"github.com/AleutianAI/AleutianFMA/pkg/logging"
	"github.com/AleutianAI/AleutianFMA/services/fma/store"
	"github.com/AleutianAI/AleutianFMA/services/fma/telemetry"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	noStore    bool

	appConfig *config.FMAConfig
	logger    *slog.Logger
	appLogger *logging.Logger
	metrics   *telemetry.Metrics

	shutdownTelemetry func(context.Context) error

	rootCmd = &cobra.Command{
		Use:   "fma",
		Short: "Decision toolkit for finite-memory (register) automata",
		Long: `fma answers membership and emptiness questions for register automata
with several interchangeable search strategies, encodes bounded emptiness
as a SAT instance, and benchmarks the strategies against each other.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown(cmd.Context())
		},
	}

	memberCmd = &cobra.Command{
		Use:   "member <automaton> [symbol...]",
		Short: "Decide whether the automaton accepts a word",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMember, // Defined in cmd_member.go
	}

	emptyCmd = &cobra.Command{
		Use:   "empty <automaton>",
		Short: "Decide whether the automaton accepts any word",
		Args:  cobra.ExactArgs(1),
		RunE:  runEmpty, // Defined in cmd_empty.go
	}

	encodeCmd = &cobra.Command{
		Use:   "encode <automaton>",
		Short: "Encode bounded emptiness as DIMACS CNF",
		Args:  cobra.ExactArgs(1),
		RunE:  runEncode, // Defined in cmd_encode.go
	}

	optimizeCmd = &cobra.Command{
		Use:   "optimize <automaton>",
		Short: "Renumber registers into a fixed prefix and a writable suffix",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize, // Defined in cmd_optimize.go
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Write a random automaton in the text format",
		Args:  cobra.NoArgs,
		RunE:  runGenerate, // Defined in cmd_generate.go
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run every strategy on generated automata and cross-validate",
		Args:  cobra.NoArgs,
		RunE:  runBench, // Defined in cmd_bench.go
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "List stored decision and benchmark records",
		Args:  cobra.NoArgs,
		RunE:  runHistory, // Defined in cmd_history.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.fma/fma.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "do not record runs in the store")

	rootCmd.AddCommand(memberCmd)
	memberCmd.Flags().StringP("algorithm", "a", "", "auto, all, deterministic, ldfts, bflgs, greedy or astar")
	memberCmd.Flags().Bool("witness", false, "print the accepting run")
	memberCmd.Flags().Bool("optimize", false, "partition registers before searching")
	memberCmd.Flags().String("words", "", "file with one space-separated word per line")
	memberCmd.Flags().Int("max-nodes", -1, "expansion budget per decision (0 = unbounded)")

	rootCmd.AddCommand(emptyCmd)
	emptyCmd.Flags().Int("max-nodes", -1, "expansion budget (0 = unbounded)")

	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringP("output", "o", "", "CNF output file (default stdout)")
	encodeCmd.Flags().String("map", "", "literal map output file")
	encodeCmd.Flags().Int("horizon", -1, "number of steps N (0 = |Q|·R)")
	encodeCmd.Flags().Bool("complete", false, "use the horizon |Q|·(R+1), which decides emptiness exactly")
	encodeCmd.Flags().Bool("smart", false, "drop actions that can never fire")
	encodeCmd.Flags().Bool("naive", false, "ground every action at every step")
	encodeCmd.Flags().String("model", "", "decode a solver model file instead of writing CNF")

	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().StringP("output", "o", "", "write the rewritten automaton to a file")

	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Uint64("seed", 1, "random seed")
	generateCmd.Flags().Int("states", 0, "number of states (default from config)")
	generateCmd.Flags().Int("registers", 0, "number of registers (default from config)")
	generateCmd.Flags().Bool("deterministic", false, "at most one target per state and register")
	generateCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().Int("automata", 0, "number of automata (default from config)")
	benchCmd.Flags().Int("words", 0, "words per automaton (default from config)")
	benchCmd.Flags().Uint64("seed", 0, "random seed (default from config)")
	benchCmd.Flags().Int("parallel", 0, "concurrent automata (default from config)")
	benchCmd.Flags().String("metrics-addr", "", "serve Prometheus /metrics on this address while running")

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("run", "", "only records of this bench run")
	historyCmd.Flags().String("kind", "", "member, empty or bench")
	historyCmd.Flags().Int("limit", 20, "maximum records (0 = all)")
	historyCmd.Flags().Bool("summary", false, "aggregate per algorithm")
	historyCmd.Flags().Bool("runs", false, "list bench run IDs")
}

// setup loads the configuration and wires logging and telemetry.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	lcfg := logging.Config{
		Level: cfg.Log.Level,
		Dir:   cfg.Log.Dir,
		JSON:  cfg.Log.JSON,
	}
	if logLevel != "" {
		lcfg.Level = logLevel
	}
	lg, err := logging.New(lcfg, os.Stderr)
	if err != nil {
		return err
	}
	appLogger = lg
	logger = lg.Slog()
	slog.SetDefault(logger)

	tcfg := telemetry.DefaultConfig()
	tcfg.TraceExporter = cfg.Telemetry.TraceExporter
	tcfg.MetricExporter = cfg.Telemetry.MetricExporter
	tcfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	if metricsAddr(cmd) != "" {
		tcfg.MetricExporter = telemetry.ExporterPrometheus
	}
	shutdown, err := telemetry.Init(cmd.Context(), tcfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	shutdownTelemetry = shutdown

	metrics, err = telemetry.NewMetrics(otel.Meter(telemetry.TracerName))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}
	return nil
}

// metricsAddr returns the /metrics listen address for commands that serve
// one. The flag overrides the config.
func metricsAddr(cmd *cobra.Command) string {
	f := cmd.Flags().Lookup("metrics-addr")
	if f == nil {
		return ""
	}
	if f.Changed {
		return f.Value.String()
	}
	return appConfig.Telemetry.MetricsAddr
}

func teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	if shutdownTelemetry != nil {
		errs = append(errs, shutdownTelemetry(ctx))
	}
	if appLogger != nil {
		errs = append(errs, appLogger.Close())
	}
	return errors.Join(errs...)
}

// openStore opens the record store, or returns nil when recording is off.
func openStore() (*store.Store, error) {
	if noStore || !appConfig.Store.Enabled {
		return nil, nil
	}
	cfg := store.DefaultConfig(appConfig.Store.Path)
	cfg.InMemory = appConfig.Store.InMemory
	cfg.GCInterval = 0
	cfg.Logger = logger
	s, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

// record stores recs and closes s. A nil store is a no-op; store failures
// are logged, not returned, so a decision is never lost to bookkeeping.
func record(ctx context.Context, s *store.Store, recs ...*store.Record) {
	if s == nil {
		return
	}
	if err := s.Put(ctx, recs...); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("could not record run", slog.String("error", err.Error()))
	}
}
