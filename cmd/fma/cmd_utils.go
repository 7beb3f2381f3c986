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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/search"
	"github.com/AleutianAI/AleutianFMA/services/fma/store"
)

// searchConfig builds the algorithm configuration from the loaded config
// and the command's --max-nodes flag, when it has one.
func searchConfig(cmd *cobra.Command) *search.Config {
	sc := appConfig.Search
	cfg := search.DefaultConfig()
	cfg.MaxNodes = sc.MaxNodes
	cfg.CheckInterval = sc.CheckInterval
	cfg.Timeout = sc.Timeout
	cfg.Witness = sc.Witness
	cfg.Logger = logger
	if f := cmd.Flags().Lookup("max-nodes"); f != nil && f.Changed {
		n, _ := cmd.Flags().GetInt("max-nodes")
		cfg.MaxNodes = n
	}
	return cfg
}

// parseWord converts decimal tokens into a word.
func parseWord(tokens []string) (automaton.Word, error) {
	w := make(automaton.Word, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", automaton.ErrInvalidSymbol, tok)
		}
		w = append(w, automaton.Symbol(n))
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// readWords reads one word per line. Blank lines are the empty word and
// lines starting with # are skipped.
func readWords(r io.Reader) ([]automaton.Word, error) {
	var words []automaton.Word
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		w, err := parseWord(strings.Fields(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

func readWordsFile(path string) ([]automaton.Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readWords(f)
}

// createOutput returns stdout when path is empty.
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// printWitness writes one line per configuration of an accepting run.
func printWitness(w io.Writer, a *automaton.Automaton, steps []search.Step) {
	for i, st := range steps {
		name := a.State(st.Configuration.State).Name
		if i == 0 {
			fmt.Fprintf(w, "  start  %-8s %s\n", name, st.Configuration.Registers)
			continue
		}
		fmt.Fprintf(w, "  read %-3s %-8s %s\n", st.Symbol, name, st.Configuration.Registers)
	}
}

// newRecord converts an outcome into a store record.
func newRecord(kind, source string, a *automaton.Automaton, wordLen int, o *search.Outcome) *store.Record {
	rec := &store.Record{
		Kind:       kind,
		Source:     source,
		Algorithm:  o.Name,
		WordLength: wordLen,
		States:     a.NumStates(),
		Registers:  a.NumRegisters(),
		Duration:   o.Duration,
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	if o.Result != nil {
		rec.Verdict = o.Result.Verdict.String()
		rec.Expanded = o.Result.Stats.Expanded
		rec.Generated = o.Result.Stats.Generated
		rec.PeakFrontier = o.Result.Stats.PeakFrontier
		rec.Pruned = o.Result.Stats.Pruned
	}
	return rec
}

// printOutcome writes one indented line per algorithm run.
func printOutcome(w io.Writer, o *search.Outcome) {
	if !o.Success() {
		fmt.Fprintf(w, "  %-13s error: %v\n", o.Name, o.Err)
		return
	}
	s := o.Result.Stats
	fmt.Fprintf(w, "  %-13s %-8s expanded=%d peak=%d pruned=%d %s\n",
		o.Name, o.Result.Verdict, s.Expanded, s.PeakFrontier, s.Pruned, o.Duration.Round(time.Microsecond))
}
