// Package strategy derives the messaging strategy for a scored input: a tier
// preset, adjusted by fixed fine-tuning heuristics and then by configured overrides.
package strategy

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/stakeplan/internal/input"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

// fineTuneThreshold is the mode score at which the heuristics kick in.
const fineTuneThreshold = 0.7

// #region tables

// OverrideRule applies its patches, in order, when any trigger fires.
type OverrideRule struct {
	Triggers []risk.Trigger
	Patches  []Patch
}

// Tables is the read-only strategy configuration.
type Tables struct {
	Presets   map[risk.Tier]Map
	Overrides []OverrideRule
}

// Validate reports every defect in the tables at once.
func (t Tables) Validate() error {
	var errs []error
	for _, tier := range risk.Tiers {
		preset, ok := t.Presets[tier]
		if !ok {
			errs = append(errs, fmt.Errorf("no strategy preset for tier %s", tier))
			continue
		}
		if err := preset.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("preset %s: %w", tier, err))
		}
	}
	for tier := range t.Presets {
		if tier.Rank() < 0 {
			errs = append(errs, fmt.Errorf("preset for unknown tier %q", tier))
		}
	}
	for i, r := range t.Overrides {
		if len(r.Triggers) == 0 {
			errs = append(errs, fmt.Errorf("override %d: no trigger", i))
		}
		for _, tr := range r.Triggers {
			if err := tr.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("override %d: %w", i, err))
			}
		}
		if len(r.Patches) == 0 {
			errs = append(errs, fmt.Errorf("override %d: no fields to force", i))
		}
		for _, p := range r.Patches {
			if err := p.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("override %d: %w", i, err))
			}
		}
	}
	return errors.Join(errs...)
}

// #endregion tables

// #region mapper

// Mapper derives strategy maps. It holds no mutable state and is safe for concurrent use.
type Mapper struct {
	tables Tables
}

// NewMapper creates a Mapper. Tables are assumed valid; see Tables.Validate.
func NewMapper(tables Tables) *Mapper {
	return &Mapper{tables: tables}
}

// Map copies the tier preset, fine-tunes it, then applies overrides.
// Overrides always run last so configuration wins over the heuristics.
// Panics if the tier has no preset, which Tables.Validate rules out.
func (mp *Mapper) Map(in input.Canonical, profile risk.Profile) Map {
	preset, ok := mp.tables.Presets[profile.RiskTier]
	if !ok {
		panic(fmt.Sprintf("strategy: no preset for tier %q", profile.RiskTier))
	}
	m := FineTune(preset, in, profile)
	return mp.ApplyOverrides(m, in, profile)
}

// #endregion mapper

// #region fine-tune

// FineTune applies the fixed heuristics to a copy of m.
func FineTune(m Map, in input.Canonical, profile risk.Profile) Map {
	out := m
	modes := profile.ModeScores

	// high misinterpretation: favour clarity
	if modes.Misinterpretation >= fineTuneThreshold {
		if out.DisclosureLevel == DisclosureMinimal {
			out.DisclosureLevel = DisclosureSelective
		}
		if out.StructureMode == StructureSingleShot {
			out.StructureMode = StructureStructured
		}
		out.Guardrails.RequireAmbiguityBuffer = true
	}

	// high escalation: soften the ask unless the clock forces it
	if modes.Escalation >= fineTuneThreshold && in.Stakes.TimePressure < 0.8 {
		out.CTAIntensity = out.CTAIntensity.stepDown()
		out.Guardrails.RequireAmbiguityBuffer = true
	}

	if profile.RiskTier == risk.TierLow || profile.RiskTier == risk.TierMedium {
		out.RelationshipPriority = in.Intent.RelationshipGoal
	}

	return out
}

// #endregion fine-tune

// #region overrides

// ApplyOverrides applies every firing rule to a copy of m, in list order.
// Later rules overwrite earlier ones.
func (mp *Mapper) ApplyOverrides(m Map, in input.Canonical, profile risk.Profile) Map {
	out := m
	for _, rule := range mp.tables.Overrides {
		if !risk.AnyFired(rule.Triggers, in, profile.ModeScores) {
			continue
		}
		for _, p := range rule.Patches {
			p.Apply(&out)
		}
	}
	return out
}

// Fired returns the indexes of the override rules that fire for the given input.
func (mp *Mapper) Fired(in input.Canonical, profile risk.Profile) []int {
	var idx []int
	for i, rule := range mp.tables.Overrides {
		if risk.AnyFired(rule.Triggers, in, profile.ModeScores) {
			idx = append(idx, i)
		}
	}
	return idx
}

// #endregion overrides
