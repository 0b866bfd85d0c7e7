package risk_test

import (
	"math"
	"strings"
	"testing"

	"github.com/danielpatrickdp/stakeplan/internal/config"
	"github.com/danielpatrickdp/stakeplan/internal/input"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

func defaultTables() risk.Tables {
	return config.MustDefault().Risk
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func phoneInput() input.Canonical {
	return input.Normalize(map[string]any{
		"communication": map[string]any{"channel_type": "phone"},
		"stakes":        map[string]any{"severity": 0.9, "reversibility": 0.1},
		"exposure":      map[string]any{"legal_exposure": 0.8},
	})
}

func TestModes_Defaults(t *testing.T) {
	s := risk.NewScorer(defaultTables())
	got := s.Modes(input.Defaults())

	want := risk.ModeScores{
		Escalation:            0.13845,
		Misinterpretation:     0.0875,
		DocumentationBackfire: 0.015,
		RelationshipBreak:     0.0992,
		Admission:             0.0235,
	}
	for _, m := range risk.Modes {
		if !approx(got.Get(m), want.Get(m)) {
			t.Errorf("%s: expected %v, got %v", m, want.Get(m), got.Get(m))
		}
	}
}

func TestScore_DefaultsBaseline(t *testing.T) {
	s := risk.NewScorer(defaultTables())
	p := s.Score(input.Defaults())

	if p.OverallRiskScore != 7 {
		t.Errorf("expected overall 7, got %d", p.OverallRiskScore)
	}
	if p.RiskTier != risk.TierLow {
		t.Errorf("expected tier low, got %s", p.RiskTier)
	}
	if len(p.Drivers) != 4 {
		t.Fatalf("expected 4 drivers (overall + 3 modes), got %d", len(p.Drivers))
	}
	if p.Drivers[0].Note != "Overall risk score = 7/100 (low)." {
		t.Errorf("unexpected overall note %q", p.Drivers[0].Note)
	}
	wantOrder := []risk.Mode{risk.ModeEscalation, risk.ModeRelationshipBreak, risk.ModeMisinterpretation}
	for i, m := range wantOrder {
		if p.Drivers[i+1].Mode != m {
			t.Errorf("driver %d: expected mode %s, got %s", i+1, m, p.Drivers[i+1].Mode)
		}
	}
}

func TestScore_PhoneScenario(t *testing.T) {
	s := risk.NewScorer(defaultTables())
	p := s.Score(phoneInput())

	if !approx(p.ModeScores.Admission, 0.3689) {
		t.Errorf("expected admission 0.3689, got %v", p.ModeScores.Admission)
	}
	if p.OverallRiskScore != 24 {
		t.Errorf("expected overall 24, got %d", p.OverallRiskScore)
	}
	if s.BaseTier(p.OverallRiskScore) != risk.TierMedium {
		t.Errorf("expected base tier medium, got %s", s.BaseTier(p.OverallRiskScore))
	}
	if p.RiskTier != risk.TierHigh {
		t.Errorf("expected legal override to force high, got %s", p.RiskTier)
	}
	last := p.Drivers[len(p.Drivers)-1]
	if last.Type != risk.DriverSignal || last.Key != "legal_exposure_high" {
		t.Errorf("expected legal_exposure_high signal last, got %+v", last)
	}
	if p.Drivers[1].Mode != risk.ModeAdmission {
		t.Errorf("expected admission as top mode, got %s", p.Drivers[1].Mode)
	}
}

func TestModes_TermGrouping(t *testing.T) {
	exit := input.Normalize(map[string]any{
		"intent": map[string]any{"relationship_goal": "exit", "goal_type": "document"},
	})

	grouped := risk.NewScorer(defaultTables()).Modes(exit)
	// escalation C = .225 + .125 + 0 + .10
	if !approx(grouped.Escalation, 0.355*0.45) {
		t.Errorf("expected grouped escalation %v, got %v", 0.355*0.45, grouped.Escalation)
	}
	// admission P = 0 + .125 + .07 + .08
	if !approx(grouped.Admission, 0.275*0.1) {
		t.Errorf("expected grouped admission %v, got %v", 0.275*0.1, grouped.Admission)
	}

	tables := defaultTables()
	tables.LegacyGrouping = true
	legacy := risk.NewScorer(tables).Modes(exit)
	if !approx(legacy.Escalation, 0.355*0.4) {
		t.Errorf("expected legacy escalation %v, got %v", 0.355*0.4, legacy.Escalation)
	}
	if !approx(legacy.Admission, 0.4*0.1) {
		t.Errorf("expected legacy admission %v, got %v", 0.4*0.1, legacy.Admission)
	}
}

func TestModes_EvidenceLowersAdmission(t *testing.T) {
	s := risk.NewScorer(defaultTables())
	prev := 2.0
	for _, e := range []string{"none", "partial", "strong"} {
		in := input.Normalize(map[string]any{
			"facts":    map[string]any{"evidence_strength": e},
			"exposure": map[string]any{"legal_exposure": 0.5},
		})
		got := s.Modes(in).Admission
		if got >= prev {
			t.Errorf("evidence %s: expected admission below %v, got %v", e, prev, got)
		}
		prev = got
	}
}

func TestScore_MultiplierRule(t *testing.T) {
	s := risk.NewScorer(defaultTables())
	in := input.Normalize(map[string]any{
		"exposure": map[string]any{"audience_spillover": 0.7, "reputation_exposure": 0.6},
	})

	raw := s.Modes(in)
	got := s.Score(in).ModeScores

	if !approx(got.Misinterpretation, raw.Misinterpretation*1.15) {
		t.Errorf("expected misinterpretation scaled by 1.15, got %v from %v", got.Misinterpretation, raw.Misinterpretation)
	}
	if !approx(got.DocumentationBackfire, raw.DocumentationBackfire*1.2) {
		t.Errorf("expected documentation scaled by 1.2, got %v from %v", got.DocumentationBackfire, raw.DocumentationBackfire)
	}
	if got.Escalation != raw.Escalation {
		t.Errorf("escalation should be untouched, got %v from %v", got.Escalation, raw.Escalation)
	}
}

func TestScore_MultiplierClamps(t *testing.T) {
	tables := defaultTables()
	tables.Multipliers = []risk.MultiplierRule{
		{Triggers: []risk.Trigger{risk.InputTrigger(input.FieldSeverity, 0)}, Factors: map[risk.Mode]float64{risk.ModeRelationshipBreak: 50}},
		{Triggers: []risk.Trigger{risk.InputTrigger(input.FieldSeverity, 0)}, Factors: map[risk.Mode]float64{risk.ModeRelationshipBreak: 0.5}},
	}
	got := risk.NewScorer(tables).Score(input.Defaults()).ModeScores.RelationshipBreak
	// first rule clamps to 1, second halves it
	if got != 0.5 {
		t.Errorf("expected 0.5 after clamp then halve, got %v", got)
	}
}

func TestScore_TierRulesNeverLower(t *testing.T) {
	tables := defaultTables()
	tables.Thresholds = risk.Thresholds{LowMax: 1, MediumMax: 2, HighMax: 3}
	tables.TierRules = []risk.TierRule{
		{Triggers: []risk.Trigger{risk.ModeTrigger(risk.ModeEscalation, 0)}, Force: risk.TierLow},
		{Triggers: []risk.Trigger{risk.InputTrigger(input.FieldSeverity, 0)}, Force: risk.TierMedium},
	}
	p := risk.NewScorer(tables).Score(input.Defaults())
	if p.RiskTier != risk.TierExtreme {
		t.Errorf("expected extreme to survive lowering rules, got %s", p.RiskTier)
	}
}

func TestScore_TierRuleAnyTrigger(t *testing.T) {
	tables := defaultTables()
	tables.TierRules = []risk.TierRule{{
		Triggers: []risk.Trigger{
			risk.ModeTrigger(risk.ModeAdmission, 0.99),
			risk.InputTrigger(input.FieldPowerAsymmetry, 0.5),
		},
		Force: risk.TierExtreme,
	}}
	p := risk.NewScorer(tables).Score(input.Defaults())
	if p.RiskTier != risk.TierExtreme {
		t.Errorf("expected either trigger to fire the rule, got %s", p.RiskTier)
	}
}

func TestScore_TierMonotonicInLegalExposure(t *testing.T) {
	s := risk.NewScorer(defaultTables())
	bases := []map[string]any{
		{},
		{"stakes": map[string]any{"severity": 0.2}},
		{"counterparty": map[string]any{"power_asymmetry": 0.9}, "facts": map[string]any{"emotion_intensity": 1}},
	}
	for i, base := range bases {
		prev := -1
		for legal := 0.0; legal <= 1.0001; legal += 0.05 {
			raw := map[string]any{}
			for k, v := range base {
				raw[k] = v
			}
			raw["exposure"] = map[string]any{"legal_exposure": legal}
			rank := s.Score(input.Normalize(raw)).RiskTier.Rank()
			if rank < prev {
				t.Fatalf("base %d: tier dropped at legal %.2f", i, legal)
			}
			prev = rank
		}
	}
}

func TestScore_Ranges(t *testing.T) {
	s := risk.NewScorer(defaultTables())
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		raw := map[string]any{}
		for _, f := range input.Fields() {
			setPath(raw, f, v)
		}
		p := s.Score(input.Normalize(raw))
		for _, m := range risk.Modes {
			if got := p.ModeScores.Get(m); got < 0 || got > 1 {
				t.Errorf("value %v: mode %s out of range: %v", v, m, got)
			}
		}
		if p.OverallRiskScore < 0 || p.OverallRiskScore > 100 {
			t.Errorf("value %v: overall out of range: %d", v, p.OverallRiskScore)
		}
		if len(p.Drivers) > 8 {
			t.Errorf("value %v: too many drivers: %d", v, len(p.Drivers))
		}
		for i := 2; i <= 3; i++ {
			if *p.Drivers[i].Score > *p.Drivers[i-1].Score {
				t.Errorf("value %v: mode drivers not non-increasing", v)
			}
		}
	}
}

func TestScore_AllSignals(t *testing.T) {
	in := input.Normalize(map[string]any{
		"exposure":      map[string]any{"legal_exposure": 0.7, "audience_spillover": 0.9},
		"counterparty":  map[string]any{"power_asymmetry": 1},
		"communication": map[string]any{"misinterpretation_risk": 0.7},
	})
	p := risk.NewScorer(defaultTables()).Score(in)
	if len(p.Drivers) != 8 {
		t.Fatalf("expected 8 drivers, got %d", len(p.Drivers))
	}
	want := []string{"legal_exposure_high", "audience_spillover_high", "power_asymmetry_high", "misinterpretation_risk_high"}
	for i, key := range want {
		if got := p.Drivers[4+i].Key; got != key {
			t.Errorf("signal %d: expected %s, got %s", i, key, got)
		}
	}
}

func TestRankModes_TiesKeepDeclarationOrder(t *testing.T) {
	got := risk.RankModes(risk.ModeScores{Admission: 0.5, Misinterpretation: 0.5, Escalation: 0.1})
	want := []risk.Mode{risk.ModeMisinterpretation, risk.ModeAdmission, risk.ModeEscalation, risk.ModeDocumentationBackfire, risk.ModeRelationshipBreak}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestTier(t *testing.T) {
	th := defaultTables().Thresholds
	tests := []struct {
		score int
		want  risk.Tier
	}{
		{0, risk.TierLow}, {20, risk.TierLow}, {21, risk.TierMedium}, {40, risk.TierMedium},
		{41, risk.TierHigh}, {60, risk.TierHigh}, {61, risk.TierExtreme}, {100, risk.TierExtreme},
	}
	for _, tt := range tests {
		if got := th.Tier(tt.score); got != tt.want {
			t.Errorf("score %d: expected %s, got %s", tt.score, tt.want, got)
		}
	}
	if risk.TierLow.Max(risk.TierHigh) != risk.TierHigh || risk.TierExtreme.Max(risk.TierMedium) != risk.TierExtreme {
		t.Error("Max should pick the more severe tier")
	}
}

func TestTablesValidate(t *testing.T) {
	if err := defaultTables().Validate(); err != nil {
		t.Fatalf("default tables should validate: %v", err)
	}

	bad := defaultTables()
	bad.Weights.Admission = -0.1
	bad.Thresholds = risk.Thresholds{LowMax: 40, MediumMax: 20, HighMax: 60}
	bad.TierRules = append(bad.TierRules, risk.TierRule{Force: "severe"})
	bad.Multipliers = append(bad.Multipliers, risk.MultiplierRule{
		Triggers: []risk.Trigger{risk.ModeTrigger(risk.ModeAdmission, 0.5)},
		Factors:  map[risk.Mode]float64{"nope": 2},
	})
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"non-negative", "sum to 1.0", "ascending", "no trigger", "unknown risk tier", "mode triggers", "unknown risk mode"} {
		if !contains(err.Error(), want) {
			t.Errorf("expected error mentioning %q, got:\n%v", want, err)
		}
	}
}

func TestTriggerValidate(t *testing.T) {
	if err := risk.InputTrigger("exposure.unknown", 0.5).Validate(); err == nil {
		t.Error("expected unknown field error")
	}
	if err := (risk.Trigger{Kind: "both"}).Validate(); err == nil {
		t.Error("expected unknown kind error")
	}
	if err := risk.ModeTrigger(risk.ModeAdmission, math.NaN()).Validate(); err == nil {
		t.Error("expected NaN threshold error")
	}
}

func contains(s, sub string) bool {
	return strings.Contains(s, sub)
}

// setPath writes v at a field's dotted path, creating intermediate maps.
func setPath(m map[string]any, f input.Field, v any) {
	parts := strings.Split(string(f), ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}
