package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/stakeplan/internal/replay"
)

// #region export-cmd

func newExportFixtureCmd(a *app) *cobra.Command {
	var (
		dbPath      string
		outPath     string
		last        int
		description string
	)
	cmd := &cobra.Command{
		Use:   "export-fixture",
		Short: "Capture recent ledger runs as a replay fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" || outPath == "" {
				return errors.New("--db and --out are required")
			}
			store, err := a.openLedger(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(last)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				return fmt.Errorf("no runs in %s", dbPath)
			}
			// oldest first
			slices.Reverse(runs)

			if description == "" {
				description = fmt.Sprintf("exported from %s (%d runs)", dbPath, len(runs))
			}
			f, err := replay.ExportFixture(description, runs)
			if err != nil {
				return err
			}
			if err := replay.WriteFixture(outPath, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cases to %s\n", len(f.Cases), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOr("STAKEPLAN_DB", ""), "ledger database")
	cmd.Flags().StringVar(&outPath, "out", "", "output fixture JSON path")
	cmd.Flags().IntVar(&last, "last", 20, "number of most recent runs to export")
	cmd.Flags().StringVar(&description, "description", "", "fixture description")
	return cmd
}

// #endregion export-cmd
