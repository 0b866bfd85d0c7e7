package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/stakeplan/internal/eval"
)

// #region run-cmd

func newRunCmd(a *app) *cobra.Command {
	var (
		dbPath string
		check  bool
	)
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run the engine on one situation record (JSON or YAML, file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			raw, err := decodeSituation(data)
			if err != nil {
				return err
			}

			res := a.eng.Run(raw)

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			store, err := a.openLedger(dbPath)
			if err != nil {
				return err
			}
			var runID string
			if store != nil {
				defer store.Close()
				run, err := store.RecordRun(res, "cli")
				if err != nil {
					return err
				}
				runID = run.ID
				fmt.Fprintf(cmd.ErrOrStderr(), "recorded run %s\n", runID)
			}

			if !check {
				return nil
			}
			cfg := eval.DefaultEvalConfig()
			cfg.Thresholds = a.eng.Tables().Risk.Thresholds
			report := eval.NewEvalHarness(cfg).Run(res)
			fmt.Fprintf(cmd.ErrOrStderr(), "check: %s\n", report.Reason)
			if store != nil {
				if err := store.LogCheck(runID, report); err != nil {
					return err
				}
			}
			if !report.Passed {
				return errDiverged
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOr("STAKEPLAN_DB", ""), "record the run in this ledger database")
	cmd.Flags().BoolVar(&check, "check", false, "verify the result's invariants; exit 1 on failure")
	return cmd
}

// decodeSituation parses JSON or YAML. Empty input is an empty record.
func decodeSituation(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	return raw, nil
}

// #endregion run-cmd
