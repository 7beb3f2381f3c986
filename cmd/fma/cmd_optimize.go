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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFMA/services/fma/automaton"
	"github.com/AleutianAI/AleutianFMA/services/fma/optimize"
)

func runOptimize(cmd *cobra.Command, args []string) error {
	a, err := automaton.ParseFile(args[0])
	if err != nil {
		return err
	}
	res, err := optimize.Partition(a)
	if err != nil {
		return err
	}

	// The mapping goes to stderr so stdout stays a parseable automaton.
	errOut := cmd.ErrOrStderr()
	fmt.Fprintf(errOut, "fixed registers: %d of %d\n", res.Fixed, a.NumRegisters())
	for from, to := range res.Mapping {
		fmt.Fprintf(errOut, "  r%d -> r%d\n", from+1, to+1)
	}

	outPath, _ := cmd.Flags().GetString("output")
	w, closeOut, err := createOutput(cmd, outPath)
	if err != nil {
		return err
	}
	if err := automaton.Format(w, res.Automaton); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
