package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/stakeplan/internal/config"
	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/ledger"
	"github.com/danielpatrickdp/stakeplan/internal/logging"
)

// errDiverged makes the process exit 1 without an extra error line; the
// command has already printed its report.
var errDiverged = errors.New("diverged")

// #region main

func main() {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, errDiverged):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

// #endregion main

// #region app

// app carries the process-wide state built from the global flags.
type app struct {
	tablesDir string
	logMode   string
	logLevel  string

	log *zap.Logger
	eng *engine.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "stakeplan",
		Short: "Deterministic risk scoring and message planning for high-stakes communication",
		Long: `stakeplan turns a situation record into a risk profile, a messaging strategy
and a block plan. The same input and tables always give the same engine.v1 envelope.

Tables are embedded; --tables or STAKEPLAN_TABLES_DIR points at a directory of
replacement YAML files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.tablesDir, "tables", "", "directory of table YAML files (default: $"+config.TablesDirEnv+" or embedded)")
	root.PersistentFlags().StringVar(&a.logMode, "log-mode", envOr("STAKEPLAN_LOG_MODE", "dev"), "log encoding: dev or prod")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", envOr("STAKEPLAN_LOG_LEVEL", "info"), "log level: debug, info, warn, error")

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newReplayCmd(a),
		newInspectCmd(a),
		newExportFixtureCmd(a),
	)
	return root
}

func (a *app) init() error {
	log, err := logging.New(a.logMode, a.logLevel)
	if err != nil {
		return err
	}
	a.log = log

	tables, err := config.Load(a.tablesDir)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	eng, err := engine.New(tables, engine.WithLogger(log))
	if err != nil {
		return err
	}
	a.eng = eng
	return nil
}

// openLedger opens the run ledger at path. An empty path returns a nil store.
func (a *app) openLedger(path string) (*ledger.Store, error) {
	if path == "" {
		return nil, nil
	}
	store, err := ledger.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	a.log.Debug("ledger opened", zap.String("path", path))
	return store, nil
}

// #endregion app

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
