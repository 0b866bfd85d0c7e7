package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/stakeplan/internal/blocks"
	"github.com/danielpatrickdp/stakeplan/internal/config"
	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

func runEngine(t *testing.T, raw any) engine.Result {
	t.Helper()
	e, err := engine.New(config.MustDefault())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e.Run(raw)
}

func metric(t *testing.T, res EvalResult, name string) EvalMetric {
	t.Helper()
	for _, m := range res.Metrics {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("metric %s not found", name)
	return EvalMetric{}
}

func TestEvalPassesOnEngineOutput(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	inputs := []any{
		nil,
		map[string]any{},
		map[string]any{"communication": map[string]any{"channel_type": "phone"}, "exposure": map[string]any{"legal_exposure": 0.8}},
		map[string]any{"exposure": map[string]any{"audience_spillover": 1, "legal_exposure": 1, "financial_exposure": 1}, "stakes": map[string]any{"severity": 1}},
	}
	for i, raw := range inputs {
		result := h.Run(runEngine(t, raw))
		if !result.Passed {
			t.Errorf("input %d: expected pass, got fail: %s", i, result.Reason)
		}
		if result.Reason != "all checks passed" {
			t.Errorf("input %d: unexpected reason %q", i, result.Reason)
		}
	}
}

func TestEvalTierLift(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	res := runEngine(t, map[string]any{
		"communication": map[string]any{"channel_type": "phone"},
		"stakes":        map[string]any{"severity": 0.9, "reversibility": 0.1},
		"exposure":      map[string]any{"legal_exposure": 0.8},
	})
	// medium base lifted to high by the legal rule
	if got := metric(t, h.Run(res), "tier_floor").Value; got != 1 {
		t.Errorf("expected tier lift 1, got %v", got)
	}
}

func TestEvalFailsOnLoweredTier(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	res := runEngine(t, map[string]any{"exposure": map[string]any{"legal_exposure": 1, "financial_exposure": 1}, "stakes": map[string]any{"severity": 1}})
	res.RiskProfile.OverallRiskScore = 90
	res.RiskProfile.RiskTier = risk.TierMedium

	result := h.Run(res)
	if result.Passed {
		t.Fatal("expected fail when tier is below the score's base tier")
	}
	if metric(t, result, "tier_floor").Pass {
		t.Error("tier_floor should fail")
	}
}

func TestEvalFailsOnBrokenPlan(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	res := runEngine(t, map[string]any{})
	res.StrategyMap.Guardrails.AvoidAdmissions = true
	res.BlockPlan.RequiredBlocks = append(res.BlockPlan.RequiredBlocks, blocks.BlockCTA)
	res.BlockPlan.DeliverableType = blocks.DeliverableEmail

	result := h.Run(res)
	if result.Passed {
		t.Fatal("expected fail")
	}
	if !strings.HasPrefix(result.Reason, "eval failed: 3 checks") {
		t.Errorf("unexpected reason %q", result.Reason)
	}
	for _, name := range []string{"deliverable", "required_blocks", "guardrail_constraints"} {
		if metric(t, result, name).Pass {
			t.Errorf("%s should fail", name)
		}
	}
}

func TestEvalFailsOnOutOfRangeValues(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	res := runEngine(t, map[string]any{})
	res.Input.Stakes.Severity = 1.5
	res.Input.Intent.GoalType = "win"
	res.RiskProfile.ModeScores.Admission = -0.1
	res.StrategyMap.Tone = "loud"
	res.Version = "engine.v0"

	result := h.Run(res)
	if got := metric(t, result, "input_range").Value; got != 2 {
		t.Errorf("expected 2 input violations, got %v", got)
	}
	for _, name := range []string{"mode_range", "strategy_shape", "version"} {
		if metric(t, result, name).Pass {
			t.Errorf("%s should fail", name)
		}
	}
}

func TestDriverOrderViolations(t *testing.T) {
	hi, lo := 0.5, 0.2
	tests := []struct {
		name    string
		drivers []risk.Driver
		want    int
	}{
		{"ordered", []risk.Driver{{Type: risk.DriverOverall}, {Type: risk.DriverMode, Score: &hi}, {Type: risk.DriverMode, Score: &lo}, {Type: risk.DriverSignal}}, 0},
		{"increasing modes", []risk.Driver{{Type: risk.DriverOverall}, {Type: risk.DriverMode, Score: &lo}, {Type: risk.DriverMode, Score: &hi}}, 1},
		{"overall missing", []risk.Driver{{Type: risk.DriverMode, Score: &hi}}, 1},
		{"mode after signal", []risk.Driver{{Type: risk.DriverOverall}, {Type: risk.DriverSignal}, {Type: risk.DriverMode, Score: &lo}}, 1},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := driverOrderViolations(tt.drivers); got != tt.want {
				t.Errorf("expected %d violations, got %d", tt.want, got)
			}
		})
	}
}
