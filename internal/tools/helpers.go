// Package tools provides MCP tool handlers over the decision engine.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() for calls.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/ledger"
)

// SourceMCP tags runs recorded by the tools.
const SourceMCP = "mcp"

// Recorder persists finished runs. *ledger.Store implements it.
type Recorder interface {
	RecordRun(res engine.Result, source string) (ledger.Run, error)
}

var errNoSituation = errors.New("provide either 'situation' (object) or 'situation_json' (string)")

// situationOptions are the two input arguments shared by every tool.
func situationOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithObject("situation",
			mcp.Description("Situation record: stakes, counterparty, exposure, history, communication, intent, facts. Missing or invalid fields fall back to defaults."),
		),
		mcp.WithString("situation_json",
			mcp.Description("The same situation record as a JSON string, for clients that cannot send nested objects."),
		),
	}
}

// situationArg reads the raw situation from a request. The object form wins
// when both are given.
func situationArg(req mcp.CallToolRequest) (any, error) {
	args := req.GetArguments()
	if v, ok := args["situation"]; ok && v != nil {
		return v, nil
	}
	text := strings.TrimSpace(req.GetString("situation_json", ""))
	if text == "" {
		return nil, errNoSituation
	}
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("situation_json is not valid JSON: %w", err)
	}
	return raw, nil
}
