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
	"github.com/AleutianAI/AleutianFMA/services/fma/search"
	"github.com/AleutianAI/AleutianFMA/services/fma/store"
)

func runEmpty(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := automaton.ParseFile(args[0])
	if err != nil {
		return err
	}
	cfg := searchConfig(cmd)
	in := &search.Input{Automaton: a}
	verdict, outcomes, err := search.Decide(ctx, in, []search.Algorithm{search.NewEmptiness(cfg)},
		search.WithLogger(logger), search.WithMetrics(metrics))

	if len(outcomes) > 0 {
		st, serr := openStore()
		if serr != nil {
			return serr
		}
		if st != nil {
			defer st.Close()
			record(ctx, st, newRecord(store.KindEmpty, args[0], a, 0, outcomes[0]))
		}
	}
	if err != nil {
		return err
	}

	res := outcomes[0].Result
	if verdict == search.Rejected {
		fmt.Fprintln(out, "empty")
		return nil
	}
	fmt.Fprintf(out, "non-empty: accepts %s\n", res.Word)
	printWitness(out, a, res.Witness)
	return nil
}
