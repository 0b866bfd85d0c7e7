package risk

import "fmt"

// #region mode

// Mode names one of the independently scored failure scenarios.
type Mode string

const (
	ModeEscalation            Mode = "escalation"
	ModeMisinterpretation     Mode = "misinterpretation"
	ModeDocumentationBackfire Mode = "documentation_backfire"
	ModeRelationshipBreak     Mode = "relationship_break"
	ModeAdmission             Mode = "admission"
)

// Modes lists every mode in declaration order. Ranking ties resolve in this order.
var Modes = []Mode{
	ModeEscalation,
	ModeMisinterpretation,
	ModeDocumentationBackfire,
	ModeRelationshipBreak,
	ModeAdmission,
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown risk mode %q", s)
}

// ModeScores holds one value per mode. Scores are always in [0,1];
// the same shape doubles as the per-mode weight table.
type ModeScores struct {
	Escalation            float64 `json:"escalation" yaml:"escalation"`
	Misinterpretation     float64 `json:"misinterpretation" yaml:"misinterpretation"`
	DocumentationBackfire float64 `json:"documentation_backfire" yaml:"documentation_backfire"`
	RelationshipBreak     float64 `json:"relationship_break" yaml:"relationship_break"`
	Admission             float64 `json:"admission" yaml:"admission"`
}

// Get returns the score for m. Unknown modes read as 0.
func (s ModeScores) Get(m Mode) float64 {
	if p := s.slot(m); p != nil {
		return *p
	}
	return 0
}

// Set assigns the score for m. Unknown modes are ignored.
func (s *ModeScores) Set(m Mode, v float64) {
	if p := s.slot(m); p != nil {
		*p = v
	}
}

// Sum adds every mode's value.
func (s ModeScores) Sum() float64 {
	var total float64
	for _, m := range Modes {
		total += s.Get(m)
	}
	return total
}

func (s *ModeScores) slot(m Mode) *float64 {
	switch m {
	case ModeEscalation:
		return &s.Escalation
	case ModeMisinterpretation:
		return &s.Misinterpretation
	case ModeDocumentationBackfire:
		return &s.DocumentationBackfire
	case ModeRelationshipBreak:
		return &s.RelationshipBreak
	case ModeAdmission:
		return &s.Admission
	}
	return nil
}

// #endregion mode

// #region tier

// Tier is the discrete severity bucket of a profile.
type Tier string

const (
	TierLow     Tier = "low"
	TierMedium  Tier = "medium"
	TierHigh    Tier = "high"
	TierExtreme Tier = "extreme"
)

// Tiers lists every tier from least to most severe.
var Tiers = []Tier{TierLow, TierMedium, TierHigh, TierExtreme}

// Rank orders tiers by severity. Unknown tiers rank -1.
func (t Tier) Rank() int {
	for i, x := range Tiers {
		if x == t {
			return i
		}
	}
	return -1
}

// Max returns the more severe of t and other.
func (t Tier) Max(other Tier) Tier {
	if other.Rank() > t.Rank() {
		return other
	}
	return t
}

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if t.Rank() < 0 {
		return "", fmt.Errorf("unknown risk tier %q", s)
	}
	return t, nil
}

// #endregion tier

// #region profile

// DriverType tags an explainability entry.
type DriverType string

const (
	DriverOverall DriverType = "overall"
	DriverMode    DriverType = "mode"
	DriverSignal  DriverType = "signal"
)

// Driver is one explainability entry. Which fields are set depends on Type:
// overall carries Note, mode carries Mode and Score, signal carries Key.
type Driver struct {
	Type  DriverType `json:"type"`
	Note  string     `json:"note,omitempty"`
	Mode  Mode       `json:"mode,omitempty"`
	Score *float64   `json:"score,omitempty"`
	Key   string     `json:"key,omitempty"`
}

// Profile is the scored risk assessment of one canonical input.
type Profile struct {
	OverallRiskScore int        `json:"overall_risk_score"`
	RiskTier         Tier       `json:"risk_tier"`
	ModeScores       ModeScores `json:"mode_scores"`
	Drivers          []Driver   `json:"drivers"`
}

// #endregion profile

// #region tables

// Thresholds are the inclusive upper bounds of the low, medium and high tiers.
type Thresholds struct {
	LowMax    int `json:"low_max" yaml:"low_max"`
	MediumMax int `json:"medium_max" yaml:"medium_max"`
	HighMax   int `json:"high_max" yaml:"high_max"`
}

// Tier buckets a 0-100 score.
func (t Thresholds) Tier(score int) Tier {
	switch {
	case score <= t.LowMax:
		return TierLow
	case score <= t.MediumMax:
		return TierMedium
	case score <= t.HighMax:
		return TierHigh
	default:
		return TierExtreme
	}
}

// TierRule raises the tier to at least Force when any trigger fires.
type TierRule struct {
	Triggers []Trigger
	Force    Tier
}

// MultiplierRule scales mode scores when any trigger fires.
type MultiplierRule struct {
	Triggers []Trigger
	Factors  map[Mode]float64
}

// Tables is the read-only scoring configuration.
type Tables struct {
	Weights     ModeScores
	Thresholds  Thresholds
	TierRules   []TierRule
	Multipliers []MultiplierRule
	// LegacyGrouping reproduces the historical collapse of the exit and
	// document terms to a constant 0.4 probability/consequence.
	LegacyGrouping bool
}

// #endregion tables
