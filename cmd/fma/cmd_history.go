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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianFMA/services/fma/store"
)

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New("the store is disabled")
	}
	defer st.Close()

	if runs, _ := cmd.Flags().GetBool("runs"); runs {
		ids, err := st.Runs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	f := store.Filter{}
	f.RunID, _ = cmd.Flags().GetString("run")
	f.Kind, _ = cmd.Flags().GetString("kind")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	summary, _ := cmd.Flags().GetBool("summary")
	if summary {
		f.Limit = 0
	}
	records, err := st.List(ctx, f)
	if err != nil {
		return err
	}
	if summary {
		return printSummary(out, store.Summarize(records))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tALGORITHM\tVERDICT\tLEN\tEXPANDED\tDURATION\tSOURCE")
	for _, r := range records {
		verdict := r.Verdict
		if r.Error != "" {
			verdict = "error"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Kind, r.Algorithm, verdict,
			r.WordLength, r.Expanded, r.Duration.Round(time.Microsecond), r.Source)
	}
	return tw.Flush()
}
