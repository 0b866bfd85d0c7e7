package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/stakeplan/internal/replay"
)

// #region replay-cmd

func newReplayCmd(a *app) *cobra.Command {
	var (
		fixturePath string
		workers     int
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a fixture and compare every case; exit 1 on divergence",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(fixturePath)
			if err != nil {
				return err
			}
			results, err := replay.Replay(cmd.Context(), a.eng, f.Cases, workers)
			if err != nil {
				return err
			}
			if printComparison(cmd.OutOrStdout(), f.Cases, results) > 0 {
				return errDiverged
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to fixture JSON")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel cases (default GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("fixture")
	return cmd
}

// printComparison writes one row per case and a summary line, and returns
// the number of diverging cases.
func printComparison(w io.Writer, cases []replay.Case, results []replay.CaseResult) int {
	fmt.Fprintf(w, "%-24s| %-9s| %-9s| %-16s| %s\n", "Case", "Expected", "Replayed", "Deliverable", "Match")
	fmt.Fprintf(w, "%-24s+%-10s+%-10s+%-17s+%s\n",
		"------------------------", "----------", "----------", "-----------------", "------")

	for i, r := range results {
		exp := string(cases[i].Expected.RiskTier)
		if exp == "" {
			exp = "-"
		}
		match := "OK"
		if !r.Matched() {
			match = "DIFF"
		}
		fmt.Fprintf(w, "%-24s| %-9s| %-9s| %-16s| %s\n",
			r.CaseID, exp, r.Result.RiskProfile.RiskTier, r.Result.BlockPlan.DeliverableType, match)
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "    %s\n", m)
		}
		if !r.Eval.Passed {
			fmt.Fprintf(w, "    %s\n", r.Eval.Reason)
		}
	}

	s := replay.Summarize(results)
	fmt.Fprintf(w, "\nSummary: %d total, %d match, %d diverge\n", s.TotalCases, s.Matched, s.Diverged)
	return s.Diverged
}

// #endregion replay-cmd
