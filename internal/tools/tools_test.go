package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielpatrickdp/stakeplan/internal/config"
	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/ledger"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(config.MustDefault())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func phoneSituation() map[string]interface{} {
	return map[string]interface{}{
		"communication": map[string]interface{}{"channel_type": "phone"},
		"stakes":        map[string]interface{}{"severity": 0.9, "reversibility": 0.1},
		"exposure":      map[string]interface{}{"legal_exposure": 0.8},
	}
}

type memRecorder struct {
	sources []string
	err     error
}

func (m *memRecorder) RecordRun(res engine.Result, source string) (ledger.Run, error) {
	if m.err != nil {
		return ledger.Run{}, m.err
	}
	m.sources = append(m.sources, source)
	return ledger.Run{ID: "r1", Source: source, Result: res}, nil
}

// ─── PlanMessageTool Tests ───────────────────────────────────────────────────

func TestPlanMessageTool_Definition(t *testing.T) {
	def := NewPlanMessageTool(newEngine(t), nil, nil).Definition()
	if def.Name != "plan_message" {
		t.Errorf("expected name plan_message, got %s", def.Name)
	}
	for _, prop := range []string{"situation", "situation_json"} {
		if _, ok := def.InputSchema.Properties[prop]; !ok {
			t.Errorf("expected property %s", prop)
		}
	}
	if len(def.InputSchema.Required) != 0 {
		t.Errorf("expected no required properties, got %v", def.InputSchema.Required)
	}
}

func TestPlanMessageTool_ObjectSituation(t *testing.T) {
	rec := &memRecorder{}
	tool := NewPlanMessageTool(newEngine(t), rec, nil)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"situation": phoneSituation()}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(result))
	}

	var res engine.Result
	if err := json.Unmarshal([]byte(resultText(result)), &res); err != nil {
		t.Fatalf("result is not an envelope: %v", err)
	}
	if res.RiskProfile.RiskTier != "high" {
		t.Errorf("expected tier high, got %s", res.RiskProfile.RiskTier)
	}
	if res.BlockPlan.DeliverableType != "dialogue_script" {
		t.Errorf("expected dialogue_script, got %s", res.BlockPlan.DeliverableType)
	}
	if len(rec.sources) != 1 || rec.sources[0] != SourceMCP {
		t.Errorf("expected one mcp recording, got %v", rec.sources)
	}
}

func TestPlanMessageTool_JSONSituation(t *testing.T) {
	tool := NewPlanMessageTool(newEngine(t), nil, nil)

	result, _ := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"situation_json": `{"communication":{"channel_type":"email"}}`,
	}))
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(result))
	}
	if !strings.Contains(resultText(result), `"deliverable_type": "email"`) {
		t.Errorf("expected email deliverable in:\n%s", resultText(result))
	}
}

func TestPlanMessageTool_ObjectWinsOverJSON(t *testing.T) {
	tool := NewPlanMessageTool(newEngine(t), nil, nil)

	result, _ := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"situation":      map[string]interface{}{"communication": map[string]interface{}{"channel_type": "phone"}},
		"situation_json": `{"communication":{"channel_type":"email"}}`,
	}))
	if !strings.Contains(resultText(result), `"deliverable_type": "dialogue_script"`) {
		t.Errorf("expected the object situation to be used:\n%s", resultText(result))
	}
}

func TestPlanMessageTool_Errors(t *testing.T) {
	tool := NewPlanMessageTool(newEngine(t), nil, nil)
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"no situation", map[string]interface{}{}, "provide either"},
		{"blank json", map[string]interface{}{"situation_json": "   "}, "provide either"},
		{"bad json", map[string]interface{}{"situation_json": "{nope"}, "not valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), makeReq(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Fatal("expected tool error")
			}
			if !strings.Contains(resultText(result), tt.want) {
				t.Errorf("expected %q in %q", tt.want, resultText(result))
			}
		})
	}
}

func TestPlanMessageTool_RecorderFailureStillAnswers(t *testing.T) {
	tool := NewPlanMessageTool(newEngine(t), &memRecorder{err: errors.New("locked")}, nil)

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"situation": map[string]interface{}{}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Errorf("expected a result despite recorder failure, got %s", resultText(result))
	}
}

// ─── ExplainRiskTool Tests ───────────────────────────────────────────────────

func TestExplainRiskTool_Definition(t *testing.T) {
	def := NewExplainRiskTool(newEngine(t)).Definition()
	if def.Name != "explain_risk" {
		t.Errorf("expected name explain_risk, got %s", def.Name)
	}
}

func TestExplainRiskTool_PhoneScenario(t *testing.T) {
	tool := NewExplainRiskTool(newEngine(t))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"situation": phoneSituation()}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(result)
	for _, want := range []string{
		"## Risk: high (24/100)",
		"Score alone gives **medium**",
		"Overall risk score = 24/100 (high).",
		"- **Structure**: record_style",
		"- **Guardrails**: avoid_admissions, no_emotional_language, keep_record",
		"- **Overrides applied**: #0, #1",
		"### Plan: dialogue_script",
		"1. opening_line",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in:\n%s", want, text)
		}
	}
}

func TestExplainRiskTool_DriversNamed(t *testing.T) {
	tool := NewExplainRiskTool(newEngine(t))

	result, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"situation": phoneSituation()}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(result)
	start := strings.Index(text, "### Drivers")
	end := strings.Index(text, "### Mode scores")
	if start < 0 || end < start {
		t.Fatalf("drivers section missing in:\n%s", text)
	}
	drivers := text[start:end]

	for _, want := range []string{"- **admission**: ", "- Signal: legal_exposure_high"} {
		if !strings.Contains(drivers, want) {
			t.Errorf("expected %q in drivers:\n%s", want, drivers)
		}
	}
	for _, line := range strings.Split(strings.TrimSpace(drivers), "\n") {
		if strings.TrimSpace(line) == "-" {
			t.Errorf("blank driver line in:\n%s", drivers)
		}
	}
}

func TestExplainRiskTool_Baseline(t *testing.T) {
	tool := NewExplainRiskTool(newEngine(t))

	result, _ := tool.Handle(context.Background(), makeReq(map[string]interface{}{"situation_json": "{}"}))
	text := resultText(result)
	if !strings.Contains(text, "## Risk: low (7/100)") {
		t.Errorf("expected low baseline in:\n%s", text)
	}
	if strings.Contains(text, "Score alone gives") || strings.Contains(text, "Overrides applied") {
		t.Errorf("baseline should not report raised tier or overrides:\n%s", text)
	}
}
