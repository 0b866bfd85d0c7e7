package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/logging"
)

// PlanMessageTool handles the plan_message MCP tool.
type PlanMessageTool struct {
	eng *engine.Engine
	rec Recorder
	log *zap.Logger
}

// NewPlanMessageTool creates a PlanMessageTool. rec may be nil.
func NewPlanMessageTool(eng *engine.Engine, rec Recorder, log *zap.Logger) *PlanMessageTool {
	return &PlanMessageTool{eng: eng, rec: rec, log: logging.OrNop(log)}
}

// Definition returns the MCP tool definition for plan_message.
func (t *PlanMessageTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"Score the risk of a high-stakes message and return the full engine.v1 envelope: " +
				"canonical input, risk profile, strategy map and block plan. Deterministic; no text is generated.",
		),
	}, situationOptions()...)
	return mcp.NewTool("plan_message", opts...)
}

// Handle processes the plan_message tool call.
func (t *PlanMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := situationArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := t.eng.Run(raw)
	if t.rec != nil {
		if _, err := t.rec.RecordRun(res, SourceMCP); err != nil {
			t.log.Warn("record run failed", zap.Error(err))
		}
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
