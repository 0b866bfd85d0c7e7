// Package risk scores a canonical input against five failure modes and buckets
// the weighted result into a tier, with a short explainability trace.
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/stakeplan/internal/input"
)

// signalThreshold is the level at which an input field is called out as a driver.
const signalThreshold = 0.7

// #region scorer

// Scorer computes risk profiles from a fixed set of tables.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	tables Tables
}

// NewScorer creates a Scorer. Tables are assumed valid; see Tables.Validate.
func NewScorer(tables Tables) *Scorer {
	return &Scorer{tables: tables}
}

// Score runs the full scoring pass: modes, multipliers, overall, tier, drivers.
func (s *Scorer) Score(in input.Canonical) Profile {
	modes := s.applyMultipliers(s.Modes(in), in)
	overall := ToPercent(s.overall(modes))
	tier := s.applyTierRules(s.tables.Thresholds.Tier(overall), modes, in)

	return Profile{
		OverallRiskScore: overall,
		RiskTier:         tier,
		ModeScores:       modes,
		Drivers:          buildDrivers(in, modes, overall, tier),
	}
}

// BaseTier returns the tier implied by the score alone, before tier rules.
func (s *Scorer) BaseTier(score int) Tier {
	return s.tables.Thresholds.Tier(score)
}

// #endregion scorer

// #region modes

// Modes computes the raw mode scores, before multiplier rules.
// Each mode is clamp01(clamp01(P) * clamp01(C)).
func (s *Scorer) Modes(in input.Canonical) ModeScores {
	var (
		st = in.Stakes
		cp = in.Counterparty
		ex = in.Exposure
		hi = in.History
		cm = in.Communication
		it = in.Intent
		fa = in.Facts
	)

	exitTerm := 0.4
	if it.RelationshipGoal == input.RelationshipExit {
		exitTerm = 1
	}
	repairTerm := 0.9
	if it.RelationshipGoal == input.RelationshipRepair {
		repairTerm = 0.6
	}
	documentTerm := 0.4
	if it.GoalType == input.GoalDocument {
		documentTerm = 0.8
	}

	pEscalation := 0.35*fa.EmotionIntensity +
		0.25*(1-cp.Predictability) +
		0.25*cp.PowerAsymmetry +
		0.15*hi.PatternRepetition
	cEscalation := 0.45*st.Severity +
		0.25*(1-st.Reversibility) +
		0.20*ex.ReputationExposure +
		0.10*exitTerm

	pMisinterpretation := 0.50*cm.MisinterpretationRisk +
		0.20*cm.ChannelRisk +
		0.15*(1-cp.TrustLevel) +
		0.15*(1-cp.Predictability)
	cMisinterpretation := 0.35*st.Severity +
		0.25*ex.ReputationExposure +
		0.20*ex.AudienceSpillover +
		0.20*hi.PriorBoundaryFailed

	pDocumentation := 0.40*ex.LegalExposure +
		0.20*ex.ReputationExposure +
		0.20*ex.AudienceSpillover +
		0.20*cm.ChannelRisk
	cDocumentation := 0.45*ex.LegalExposure +
		0.25*ex.FinancialExposure +
		0.20*st.Severity +
		0.10*(1-st.Reversibility)

	pRelationship := 0.35*hi.PatternRepetition +
		0.25*hi.PriorBoundaryFailed +
		0.20*(1-cp.TrustLevel) +
		0.20*fa.EmotionIntensity
	cRelationship := 0.40*st.Severity +
		0.30*repairTerm +
		0.30*cp.PowerAsymmetry

	pAdmission := 0.45*ex.LegalExposure +
		0.25*cm.ChannelRisk +
		0.20*(1-evidenceFactor(fa.EvidenceStrength)) +
		0.10*documentTerm
	cAdmission := 0.55*ex.LegalExposure +
		0.25*ex.FinancialExposure +
		0.20*st.Severity

	if s.tables.LegacyGrouping {
		cEscalation = 0.4
		pAdmission = 0.4
	}

	return ModeScores{
		Escalation:            modeScore(pEscalation, cEscalation),
		Misinterpretation:     modeScore(pMisinterpretation, cMisinterpretation),
		DocumentationBackfire: modeScore(pDocumentation, cDocumentation),
		RelationshipBreak:     modeScore(pRelationship, cRelationship),
		Admission:             modeScore(pAdmission, cAdmission),
	}
}

// evidenceFactor maps evidence strength to a confidence; weak evidence raises admission risk.
func evidenceFactor(e input.EvidenceStrength) float64 {
	switch e {
	case input.EvidenceStrong:
		return 0.85
	case input.EvidencePartial:
		return 0.65
	default:
		return 0.45
	}
}

func modeScore(p, c float64) float64 {
	return clamp01(clamp01(p) * clamp01(c))
}

// #endregion modes

// #region rules

// applyMultipliers scales modes by every firing rule, in list order, re-clamping each time.
func (s *Scorer) applyMultipliers(modes ModeScores, in input.Canonical) ModeScores {
	out := modes
	for _, rule := range s.tables.Multipliers {
		if !AnyFired(rule.Triggers, in, out) {
			continue
		}
		for _, m := range Modes {
			if f, ok := rule.Factors[m]; ok {
				out.Set(m, clamp01(out.Get(m)*f))
			}
		}
	}
	return out
}

func (s *Scorer) overall(modes ModeScores) float64 {
	var total float64
	for _, m := range Modes {
		total += s.tables.Weights.Get(m) * modes.Get(m)
	}
	return clamp01(total)
}

// applyTierRules raises the tier for every firing rule, in list order. Tiers never go down.
func (s *Scorer) applyTierRules(base Tier, modes ModeScores, in input.Canonical) Tier {
	tier := base
	for _, rule := range s.tables.TierRules {
		if AnyFired(rule.Triggers, in, modes) {
			tier = tier.Max(rule.Force)
		}
	}
	return tier
}

// #endregion rules

// #region drivers

// buildDrivers emits the overall entry, the top three modes and any high input signals.
func buildDrivers(in input.Canonical, modes ModeScores, overall int, tier Tier) []Driver {
	drivers := make([]Driver, 0, 8)
	drivers = append(drivers, Driver{
		Type: DriverOverall,
		Note: fmt.Sprintf("Overall risk score = %d/100 (%s).", overall, tier),
	})

	for _, m := range RankModes(modes)[:3] {
		score := math.Round(modes.Get(m)*100) / 100
		drivers = append(drivers, Driver{Type: DriverMode, Mode: m, Score: &score})
	}

	signals := []struct {
		key   string
		value float64
	}{
		{"legal_exposure_high", in.Exposure.LegalExposure},
		{"audience_spillover_high", in.Exposure.AudienceSpillover},
		{"power_asymmetry_high", in.Counterparty.PowerAsymmetry},
		{"misinterpretation_risk_high", in.Communication.MisinterpretationRisk},
	}
	for _, sig := range signals {
		if sig.value >= signalThreshold {
			drivers = append(drivers, Driver{Type: DriverSignal, Key: sig.key})
		}
	}
	return drivers
}

// RankModes orders modes by descending score; ties keep declaration order.
func RankModes(modes ModeScores) []Mode {
	ranked := append([]Mode(nil), Modes...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return modes.Get(ranked[i]) > modes.Get(ranked[j])
	})
	return ranked
}

// #endregion drivers

// #region helpers

// ToPercent rounds a [0,1] value to an integer percentage.
func ToPercent(v float64) int {
	return int(math.Round(clamp01(v) * 100))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
