package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/danielpatrickdp/stakeplan/internal/blocks"
	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/input"
	"github.com/danielpatrickdp/stakeplan/internal/ledger"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
	"github.com/danielpatrickdp/stakeplan/internal/strategy"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string `json:"description"`
	Cases       []Case `json:"cases"`
}

// Case is one raw input and what the engine is expected to make of it.
type Case struct {
	ID       string      `json:"id"`
	Input    any         `json:"input"`
	Expected Expectation `json:"expected"`
}

// Expectation lists the outputs a case pins down. Empty fields are not checked.
type Expectation struct {
	RiskTier         risk.Tier                  `json:"risk_tier,omitempty"`
	DeliverableType  blocks.DeliverableType     `json:"deliverable_type,omitempty"`
	StructureMode    strategy.StructureMode     `json:"structure_mode,omitempty"`
	RequiredBlocks   []blocks.Block             `json:"required_blocks,omitempty"`
	BlockConstraints map[blocks.Constraint]bool `json:"block_constraints,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes a fixture and checks that case IDs are present and unique.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	var errs []error
	seen := make(map[string]bool, len(f.Cases))
	for i, c := range f.Cases {
		switch {
		case c.ID == "":
			errs = append(errs, fmt.Errorf("case %d: missing id", i))
		case seen[c.ID]:
			errs = append(errs, fmt.Errorf("case %d: duplicate id %q", i, c.ID))
		}
		seen[c.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-loader

// #region export

// ExportFixture captures recorded runs as a regression fixture. Each case
// replays the run's canonical input and expects the outputs the run produced.
func ExportFixture(description string, runs []ledger.Run) (Fixture, error) {
	f := Fixture{Description: description, Cases: make([]Case, 0, len(runs))}
	for _, r := range runs {
		raw, err := rawInput(r.Result.Input)
		if err != nil {
			return Fixture{}, fmt.Errorf("run %s: %w", r.ID, err)
		}
		f.Cases = append(f.Cases, Case{
			ID:       r.ID,
			Input:    raw,
			Expected: ExpectationOf(r.Result),
		})
	}
	return f, nil
}

// rawInput turns a canonical record back into the generic shape the normalizer reads.
func rawInput(in input.Canonical) (map[string]any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal input: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal input: %w", err)
	}
	return raw, nil
}

// ExpectationOf pins every checked output of res.
func ExpectationOf(res engine.Result) Expectation {
	constraints := make(map[blocks.Constraint]bool, len(res.BlockPlan.BlockConstraints))
	for k, v := range res.BlockPlan.BlockConstraints {
		constraints[k] = v
	}
	return Expectation{
		RiskTier:         res.RiskProfile.RiskTier,
		DeliverableType:  res.BlockPlan.DeliverableType,
		StructureMode:    res.StrategyMap.StructureMode,
		RequiredBlocks:   slices.Clone(res.BlockPlan.RequiredBlocks),
		BlockConstraints: constraints,
	}
}

// #endregion export

// #region compare

// Mismatches lists every expectation res does not meet, in field order.
// Constraints absent from res count as false.
func (e Expectation) Mismatches(res engine.Result) []string {
	var out []string
	if e.RiskTier != "" && e.RiskTier != res.RiskProfile.RiskTier {
		out = append(out, fmt.Sprintf("risk_tier: expected %s, got %s", e.RiskTier, res.RiskProfile.RiskTier))
	}
	if e.DeliverableType != "" && e.DeliverableType != res.BlockPlan.DeliverableType {
		out = append(out, fmt.Sprintf("deliverable_type: expected %s, got %s", e.DeliverableType, res.BlockPlan.DeliverableType))
	}
	if e.StructureMode != "" && e.StructureMode != res.StrategyMap.StructureMode {
		out = append(out, fmt.Sprintf("structure_mode: expected %s, got %s", e.StructureMode, res.StrategyMap.StructureMode))
	}
	if e.RequiredBlocks != nil && !slices.Equal(e.RequiredBlocks, res.BlockPlan.RequiredBlocks) {
		out = append(out, fmt.Sprintf("required_blocks: expected %v, got %v", e.RequiredBlocks, res.BlockPlan.RequiredBlocks))
	}
	keys := make([]blocks.Constraint, 0, len(e.BlockConstraints))
	for k := range e.BlockConstraints {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if got := res.BlockPlan.BlockConstraints[k]; got != e.BlockConstraints[k] {
			out = append(out, fmt.Sprintf("block_constraints.%s: expected %t, got %t", k, e.BlockConstraints[k], got))
		}
	}
	return out
}

// #endregion compare
