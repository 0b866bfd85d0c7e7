// Package server wires the MCP tools to an engine and creates the server instance.
// No business logic lives here, only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every tool registered. rec may be nil.
func New(eng *engine.Engine, rec tools.Recorder, log *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"stakeplan",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)
	s.AddTools(Tools(eng, rec, log)...)
	return s
}

// Tools returns the tool definitions and handlers New registers.
func Tools(eng *engine.Engine, rec tools.Recorder, log *zap.Logger) []server.ServerTool {
	plan := tools.NewPlanMessageTool(eng, rec, log)
	explain := tools.NewExplainRiskTool(eng)
	return []server.ServerTool{
		{Tool: plan.Definition(), Handler: plan.Handle},
		{Tool: explain.Definition(), Handler: explain.Handle},
	}
}

func serverInstructions() string {
	return "stakeplan scores the risk of a high-stakes message and plans its structure. " +
		"Call explain_risk for a readable summary, or plan_message for the full engine.v1 envelope. " +
		"Both take the same situation record; every field is optional."
}
