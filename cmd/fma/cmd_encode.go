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
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/strips"
)

// encodeOptions resolves the horizon and grounding mode from flags over
// config. --complete wins over --horizon; --naive wins over --smart.
func encodeOptions(cmd *cobra.Command, a *automaton.Automaton) strips.Options {
	opts := appConfig.Encoder
	if f := cmd.Flags().Lookup("horizon"); f != nil && f.Changed {
		opts.Horizon, _ = cmd.Flags().GetInt("horizon")
	}
	if complete, _ := cmd.Flags().GetBool("complete"); complete {
		opts.Horizon = strips.CompleteHorizon(a)
	}
	if smart, _ := cmd.Flags().GetBool("smart"); smart {
		opts.Smart = true
	}
	if naive, _ := cmd.Flags().GetBool("naive"); naive {
		opts.Smart = false
	}
	return opts
}

func runEncode(cmd *cobra.Command, args []string) error {
	a, err := automaton.ParseFile(args[0])
	if err != nil {
		return err
	}
	p, err := strips.Build(a, encodeOptions(cmd, a))
	if err != nil {
		return err
	}

	if modelPath, _ := cmd.Flags().GetString("model"); modelPath != "" {
		return decodeModel(cmd.OutOrStdout(), p, modelPath)
	}

	cnf, err := p.Encode()
	if err != nil {
		return err
	}
	logger.Info("encoded",
		slog.String("automaton", args[0]),
		slog.Int("horizon", p.Horizon()),
		slog.Int("actions", p.NumActions()),
		slog.Int("variables", cnf.NumVars),
		slog.Int("clauses", cnf.NumClauses()),
	)

	outPath, _ := cmd.Flags().GetString("output")
	w, closeOut, err := createOutput(cmd, outPath)
	if err != nil {
		return err
	}
	if err := cnf.WriteDIMACS(w); err != nil {
		_ = closeOut()
		return fmt.Errorf("write cnf: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	if mapPath, _ := cmd.Flags().GetString("map"); mapPath != "" {
		f, err := os.Create(mapPath)
		if err != nil {
			return err
		}
		if err := cnf.WriteLiteralMap(f); err != nil {
			return errors.Join(fmt.Errorf("write literal map: %w", err), f.Close())
		}
		return f.Close()
	}
	return nil
}

// decodeModel prints the plan and word a solver model describes.
func decodeModel(out io.Writer, p *strips.Problem, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	model, err := strips.ReadModel(f)
	if err != nil {
		return err
	}
	if model == nil {
		fmt.Fprintf(out, "unsatisfiable: no accepting run within %d steps\n", p.Horizon())
		return nil
	}
	plan := p.Decode(model)
	for _, act := range plan {
		fmt.Fprintln(out, p.Name(act))
	}
	fmt.Fprintf(out, "word %s\n", p.Word(plan))
	return nil
}
