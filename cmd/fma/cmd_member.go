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
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/heuristic"
	"github.com/AleutianAI/AleutianFMA/services/fma/optimize"
	"github.com/AleutianAI/AleutianFMA/services/fma/search"
	"github.com/AleutianAI/AleutianFMA/services/fma/store"
)

const (
	algorithmAuto = "auto"
	algorithmAll  = "all"
)

// selectAlgorithms resolves the --algorithm value for a.
//
// "auto" picks the deterministic fast path when a allows it and bflgs
// otherwise. "all" runs every frontier strategy, plus the fast path on
// deterministic automata, so the verdicts can be cross-validated.
func selectAlgorithms(name string, a *automaton.Automaton, cfg *search.Config) ([]search.Algorithm, error) {
	switch name {
	case algorithmAuto, "":
		if a.IsDeterministic() {
			return []search.Algorithm{search.NewDeterministic(cfg)}, nil
		}
		return []search.Algorithm{search.NewBFLGS(cfg)}, nil
	case algorithmAll:
		algos := search.MembershipAlgorithms(cfg)
		if a.IsDeterministic() {
			algos = append(algos, search.NewDeterministic(cfg))
		}
		return algos, nil
	case search.NameEmptiness:
		return nil, fmt.Errorf("%w: %q answers emptiness; use the empty command", search.ErrUnknownAlgorithm, name)
	default:
		algo, err := search.NewAlgorithm(name, cfg)
		if err != nil {
			return nil, err
		}
		return []search.Algorithm{algo}, nil
	}
}

func hasWitness(o *search.Outcome) bool {
	return o.Success() && o.Result.Accepted() && len(o.Result.Witness) > 0
}

func runMember(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := automaton.ParseFile(args[0])
	if err != nil {
		return err
	}
	if opt, _ := cmd.Flags().GetBool("optimize"); opt {
		res, err := optimize.Partition(a)
		if err != nil {
			return err
		}
		logger.Debug("registers partitioned",
			slog.Int("fixed", res.Fixed),
			slog.Any("mapping", res.Mapping),
		)
		a = res.Automaton
	}

	var words []automaton.Word
	if path, _ := cmd.Flags().GetString("words"); path != "" {
		if len(args) > 1 {
			return errors.New("pass symbols or --words, not both")
		}
		if words, err = readWordsFile(path); err != nil {
			return err
		}
	} else {
		w, err := parseWord(args[1:])
		if err != nil {
			return err
		}
		words = []automaton.Word{w}
	}

	cfg := searchConfig(cmd)
	if w, _ := cmd.Flags().GetBool("witness"); w {
		cfg.Witness = true
	}
	name := appConfig.Search.Algorithm
	if f, _ := cmd.Flags().GetString("algorithm"); f != "" {
		name = f
	}
	algos, err := selectAlgorithms(name, a, cfg)
	if err != nil {
		return err
	}
	// One table serves every word; astar would otherwise rebuild it per call.
	if slices.ContainsFunc(algos, func(al search.Algorithm) bool { return al.Name() == search.NameAStar }) {
		longest := 0
		for _, w := range words {
			longest = max(longest, len(w))
		}
		cfg.Heuristic = heuristic.Load(a, longest)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	var (
		records  []*store.Record
		failures int
	)
	for _, w := range words {
		verdict, outcomes, err := search.Decide(ctx, &search.Input{Automaton: a, Word: w}, algos,
			search.WithLogger(logger), search.WithMetrics(metrics))
		for _, o := range outcomes {
			records = append(records, newRecord(store.KindMember, args[0], a, len(w), o))
		}
		if err != nil {
			failures++
			fmt.Fprintf(out, "%s error: %v\n", w, err)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", w, verdict)
		if len(algos) > 1 {
			for _, o := range outcomes {
				printOutcome(out, o)
			}
		}
		if cfg.Witness {
			if i := slices.IndexFunc(outcomes, hasWitness); i >= 0 {
				printWitness(out, a, outcomes[i].Result.Witness)
			}
		}
	}
	record(ctx, st, records...)

	if failures > 0 {
		return fmt.Errorf("%d of %d words could not be decided", failures, len(words))
	}
	return nil
}
