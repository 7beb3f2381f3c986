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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/generate"
)

func runGenerate(cmd *cobra.Command, _ []string) error {
	params := appConfig.Bench.Shape
	if n, _ := cmd.Flags().GetInt("states"); n > 0 {
		params.States = n
	}
	if n, _ := cmd.Flags().GetInt("registers"); n > 0 {
		params.Registers = n
		params.Filled = min(params.Filled, n)
	}
	if det, _ := cmd.Flags().GetBool("deterministic"); det {
		params.Deterministic = true
	}
	seed, _ := cmd.Flags().GetUint64("seed")

	a, err := generate.Automaton(generate.Source(seed), params)
	if err != nil {
		return err
	}
	outPath, _ := cmd.Flags().GetString("output")
	w, closeOut, err := createOutput(cmd, outPath)
	if err != nil {
		return err
	}
	if err := automaton.Format(w, a); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
