// Package eval checks an engine result against the invariants every envelope
// must hold. It is used by the replay harness and the run command's --check flag.
package eval

import (
	"fmt"

	"github.com/danielpatrickdp/stakeplan/internal/blocks"
	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/input"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

// #region eval-harness
// EvalHarness validates finished results.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks one result. Every check is recorded as a metric; Value counts
// violations unless noted.
func (h *EvalHarness) Run(res engine.Result) EvalResult {
	var (
		metrics     []EvalMetric
		failReasons []string
	)
	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Envelope version
	check("version", 0, res.Version == engine.Version,
		fmt.Sprintf("version %q, want %q", res.Version, engine.Version))

	// 2. Canonical input ranges and enum membership
	bad := inputViolations(res.Input)
	check("input_range", float64(bad), bad == 0, fmt.Sprintf("%d input fields out of range", bad))

	// 3. Mode scores in [0,1]
	bad = 0
	for _, m := range risk.Modes {
		if v := res.RiskProfile.ModeScores.Get(m); v < 0 || v > 1 {
			bad++
		}
	}
	check("mode_range", float64(bad), bad == 0, fmt.Sprintf("%d mode scores out of range", bad))

	// 4. Overall score in [0,100]; value is the score
	score := res.RiskProfile.OverallRiskScore
	check("overall_range", float64(score), score >= 0 && score <= 100,
		fmt.Sprintf("overall score %d outside [0,100]", score))

	// 5. Tier never below the score's base tier; value is the rank lift
	base := h.config.Thresholds.Tier(score)
	lift := res.RiskProfile.RiskTier.Rank() - base.Rank()
	check("tier_floor", float64(lift), res.RiskProfile.RiskTier.Rank() >= 0 && lift >= 0,
		fmt.Sprintf("tier %s below base tier %s", res.RiskProfile.RiskTier, base))

	// 6. Driver count and ordering; value is the count
	drivers := res.RiskProfile.Drivers
	check("driver_count", float64(len(drivers)), len(drivers) >= 1 && len(drivers) <= h.config.MaxDrivers,
		fmt.Sprintf("%d drivers, want 1..%d", len(drivers), h.config.MaxDrivers))
	bad = driverOrderViolations(drivers)
	check("driver_order", float64(bad), bad == 0, "drivers out of order")

	// 7. Strategy shape
	err := res.StrategyMap.Validate()
	check("strategy_shape", boolValue(err != nil), err == nil, fmt.Sprintf("strategy: %v", err))

	// 8. Block plan: deliverable follows channel, blocks non-empty and unique
	plan := res.BlockPlan
	want := blocks.DeliverableFor(res.Input.Communication.ChannelType)
	check("deliverable", boolValue(plan.DeliverableType != want), plan.DeliverableType == want,
		fmt.Sprintf("deliverable %s, want %s", plan.DeliverableType, want))
	bad = duplicateBlocks(plan.RequiredBlocks)
	check("required_blocks", float64(bad), len(plan.RequiredBlocks) > 0 && bad == 0,
		fmt.Sprintf("%d required blocks, %d duplicates", len(plan.RequiredBlocks), bad))

	// 9. Guardrails carried into constraints
	bad = 0
	g := res.StrategyMap.Guardrails
	if g.AvoidAdmissions && !plan.BlockConstraints[blocks.ConstraintAvoidAdmissions] {
		bad++
	}
	if g.RequireAmbiguityBuffer && !plan.BlockConstraints[blocks.ConstraintRequireAmbiguityBuffer] {
		bad++
	}
	check("guardrail_constraints", float64(bad), bad == 0, fmt.Sprintf("%d guardrails missing from constraints", bad))

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func inputViolations(in input.Canonical) int {
	bad := 0
	for _, f := range input.Fields() {
		if v := in.Value(f); v < 0 || v > 1 {
			bad++
		}
	}
	if !input.Member(in.Communication.ChannelType, input.ChannelTypes) {
		bad++
	}
	if !input.Member(in.Intent.GoalType, input.GoalTypes) {
		bad++
	}
	if !input.Member(in.Intent.RelationshipGoal, input.RelationshipGoals) {
		bad++
	}
	if !input.Member(in.Intent.DesiredAction, input.DesiredActions) {
		bad++
	}
	if !input.Member(in.Facts.EvidenceStrength, input.EvidenceStrengths) {
		bad++
	}
	return bad
}

// driverOrderViolations expects the overall entry first, then mode entries with
// non-increasing scores, then signals.
func driverOrderViolations(drivers []risk.Driver) int {
	bad := 0
	if len(drivers) > 0 && drivers[0].Type != risk.DriverOverall {
		bad++
	}
	prev := 2.0
	seenSignal := false
	for _, d := range drivers[min(1, len(drivers)):] {
		switch d.Type {
		case risk.DriverMode:
			if seenSignal || d.Score == nil || *d.Score > prev {
				bad++
				continue
			}
			prev = *d.Score
		case risk.DriverSignal:
			seenSignal = true
		default:
			bad++
		}
	}
	return bad
}

func duplicateBlocks(bs []blocks.Block) int {
	seen := make(map[blocks.Block]bool, len(bs))
	dups := 0
	for _, b := range bs {
		if seen[b] {
			dups++
		}
		seen[b] = true
	}
	return dups
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
