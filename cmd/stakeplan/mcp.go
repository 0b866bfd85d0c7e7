package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpserver "github.com/danielpatrickdp/stakeplan/internal/server"
	"github.com/danielpatrickdp/stakeplan/internal/tools"
)

// #region mcp-cmd

func newMCPCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve plan_message and explain_risk as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openLedger(dbPath)
			if err != nil {
				return err
			}
			var rec tools.Recorder
			if store != nil {
				defer store.Close()
				rec = store
			}
			// stdout belongs to the protocol
			return server.ServeStdio(mcpserver.New(a.eng, rec, a.log))
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", envOr("STAKEPLAN_DB", ""), "record tool runs in this ledger database")
	return cmd
}

// #endregion mcp-cmd
