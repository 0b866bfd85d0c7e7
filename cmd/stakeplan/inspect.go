package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/stakeplan/internal/ledger"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

// #region inspect-cmd

func newInspectCmd(a *app) *cobra.Command {
	var (
		dbPath  string
		last    int
		runID   string
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show recent runs from a ledger, or one run in detail",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return errors.New("--db is required")
			}
			store, err := a.openLedger(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return runDetailMode(cmd.OutOrStdout(), store, runID, jsonOut)
			}
			return runListMode(cmd.OutOrStdout(), store, last, jsonOut)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOr("STAKEPLAN_DB", ""), "ledger database")
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent runs")
	cmd.Flags().StringVar(&runID, "run", "", "show a single run in detail")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of a table")
	return cmd
}

// #endregion inspect-cmd

// #region list-mode

type listRow struct {
	RunID       string `json:"run_id"`
	Source      string `json:"source"`
	Tier        string `json:"risk_tier"`
	Score       int    `json:"overall_risk_score"`
	Deliverable string `json:"deliverable_type"`
	Structure   string `json:"structure_mode"`
	CreatedAt   string `json:"created_at"`
}

func runListMode(w io.Writer, store *ledger.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}

	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:       r.ID,
			Source:      r.Source,
			Tier:        string(r.Result.RiskProfile.RiskTier),
			Score:       r.Result.RiskProfile.OverallRiskScore,
			Deliverable: string(r.Result.BlockPlan.DeliverableType),
			Structure:   string(r.Result.StrategyMap.StructureMode),
			CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		}
	}

	if jsonOut {
		return writeJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no runs found")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-7s  %-8s  %5s  %-16s  %-13s  %s\n",
		"Run", "Source", "Tier", "Score", "Deliverable", "Structure", "Created")
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s  %-7s  %-8s  %5d  %-16s  %-13s  %s\n",
			r.RunID, r.Source, r.Tier, r.Score, r.Deliverable, r.Structure, r.CreatedAt)
	}

	counts, err := store.TierCounts()
	if err != nil {
		return err
	}
	fmt.Fprint(w, "\nTiers:")
	for _, t := range risk.Tiers {
		fmt.Fprintf(w, " %s=%d", t, counts[t])
	}
	fmt.Fprintln(w)
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailView struct {
	Run    ledger.Run          `json:"run"`
	Checks []ledger.CheckEntry `json:"checks"`
}

func runDetailMode(w io.Writer, store *ledger.Store, runID string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	checks, err := store.Checks(runID)
	if err != nil {
		return err
	}

	if jsonOut {
		return writeJSON(w, detailView{Run: run, Checks: checks})
	}

	res := run.Result
	fmt.Fprintf(w, "Run:       %s\n", run.ID)
	fmt.Fprintf(w, "Source:    %s\n", run.Source)
	fmt.Fprintf(w, "Created:   %s\n", run.CreatedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "Risk:      %s (%d/100)\n", res.RiskProfile.RiskTier, res.RiskProfile.OverallRiskScore)
	fmt.Fprintln(w, "Modes:")
	for _, m := range risk.RankModes(res.RiskProfile.ModeScores) {
		fmt.Fprintf(w, "  %-24s %.4f\n", m, res.RiskProfile.ModeScores.Get(m))
	}
	fmt.Fprintln(w, "Drivers:")
	for _, d := range res.RiskProfile.Drivers {
		fmt.Fprintf(w, "  - %s\n", d.Note)
	}
	sm := res.StrategyMap
	fmt.Fprintf(w, "Strategy:  %s / %s / cta %s / %s / %s\n",
		sm.DisclosureLevel, sm.StructureMode, sm.CTAIntensity, sm.RelationshipPriority, sm.Tone)
	fmt.Fprintf(w, "Plan:      %s %v\n", res.BlockPlan.DeliverableType, res.BlockPlan.RequiredBlocks)
	for _, c := range checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "Check:     %s %s\n", status, c.Reason)
	}
	return nil
}

// #endregion detail-mode

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
