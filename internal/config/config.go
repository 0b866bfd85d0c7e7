// Package config loads the scoring and strategy tables from YAML. The v1 tables
// are embedded; a directory given by flag or STAKEPLAN_TABLES_DIR replaces them.
package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/stakeplan/internal/input"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
	"github.com/danielpatrickdp/stakeplan/internal/strategy"
)

// TablesDirEnv overrides the embedded tables with a directory of YAML files.
const TablesDirEnv = "STAKEPLAN_TABLES_DIR"

// File names inside a tables directory.
const (
	RiskWeightsFile     = "risk_weights.v1.yaml"
	TierThresholdsFile  = "tier_thresholds.v1.yaml"
	OverridesFile       = "overrides.v1.yaml"
	StrategyPresetsFile = "strategy_presets.v1.yaml"
)

//go:embed tables/*.yaml
var embeddedTables embed.FS

// #region tables

// Tables bundles everything the engine reads. It is loaded once and never mutated.
type Tables struct {
	Risk     risk.Tables
	Strategy strategy.Tables
}

// Validate reports every defect across both table sets.
func (t Tables) Validate() error {
	return errors.Join(t.Risk.Validate(), t.Strategy.Validate())
}

// #endregion tables

// #region load

// Default returns the embedded v1 tables.
func Default() (Tables, error) {
	return LoadFS(embeddedTables, "tables")
}

// MustDefault is Default for package initialization and tests; it panics on a broken build.
func MustDefault() Tables {
	t, err := Default()
	if err != nil {
		panic(fmt.Sprintf("config: embedded tables: %v", err))
	}
	return t
}

// Load reads tables from dir. An empty dir falls back to STAKEPLAN_TABLES_DIR,
// then to the embedded tables.
func Load(dir string) (Tables, error) {
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(TablesDirEnv))
	}
	if dir == "" {
		return Default()
	}
	t, err := LoadFS(os.DirFS(dir), ".")
	if err != nil {
		return Tables{}, fmt.Errorf("tables dir %s: %w", dir, err)
	}
	return t, nil
}

// LoadFS reads and validates the four table files under dir in fsys.
func LoadFS(fsys fs.FS, dir string) (Tables, error) {
	var (
		weights   yamlRiskWeights
		tiers     yamlTierThresholds
		overrides yamlOverrides
		presets   yamlStrategyPresets
	)
	files := []struct {
		name string
		dst  any
	}{
		{RiskWeightsFile, &weights},
		{TierThresholdsFile, &tiers},
		{OverridesFile, &overrides},
		{StrategyPresetsFile, &presets},
	}
	for _, f := range files {
		if err := decodeFile(fsys, path.Join(dir, f.name), f.dst); err != nil {
			return Tables{}, err
		}
	}

	t, err := compile(weights, tiers, overrides, presets)
	if err != nil {
		return Tables{}, err
	}
	if err := t.Validate(); err != nil {
		return Tables{}, fmt.Errorf("invalid tables: %w", err)
	}
	return t, nil
}

func decodeFile(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// #endregion load

// #region yaml

type yamlRiskWeights struct {
	Version            string             `yaml:"version"`
	LegacyTermGrouping bool               `yaml:"legacy_term_grouping"`
	ModeWeights        map[string]float64 `yaml:"mode_weights"`
}

type yamlTrigger struct {
	IfInputGTE map[string]float64 `yaml:"if_input_gte"`
	IfModeGTE  map[string]float64 `yaml:"if_mode_gte"`
}

type yamlTierRule struct {
	yamlTrigger `yaml:",inline"`
	ForceTier   string `yaml:"force_tier"`
}

type yamlTierThresholds struct {
	Version       string          `yaml:"version"`
	Thresholds    risk.Thresholds `yaml:"thresholds"`
	TierOverrides []yamlTierRule  `yaml:"tier_overrides"`
}

type yamlOverrideRule struct {
	yamlTrigger  `yaml:",inline"`
	MultiplyMode map[string]float64 `yaml:"multiply_mode"`
	Force        map[string]any     `yaml:"force"`
}

type yamlOverrides struct {
	Version           string             `yaml:"version"`
	StrategyOverrides []yamlOverrideRule `yaml:"strategy_overrides"`
}

type yamlStrategyPresets struct {
	Version string                  `yaml:"version"`
	Presets map[string]strategy.Map `yaml:"presets"`
}

// #endregion yaml

// #region compile

// compile turns the decoded documents into typed tables. Shape errors are
// collected and returned together; value checks happen in Validate.
func compile(w yamlRiskWeights, th yamlTierThresholds, ov yamlOverrides, ps yamlStrategyPresets) (Tables, error) {
	var (
		t    Tables
		errs []error
	)

	t.Risk.LegacyGrouping = w.LegacyTermGrouping
	for _, m := range risk.Modes {
		v, ok := w.ModeWeights[string(m)]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: missing weight for %s", RiskWeightsFile, m))
			continue
		}
		t.Risk.Weights.Set(m, v)
	}
	for _, k := range sortedKeys(w.ModeWeights) {
		if _, err := risk.ParseMode(k); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", RiskWeightsFile, err))
		}
	}

	t.Risk.Thresholds = th.Thresholds
	for i, r := range th.TierOverrides {
		triggers, err := r.compile()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: tier_overrides[%d]: %w", TierThresholdsFile, i, err))
		}
		if _, err := risk.ParseTier(r.ForceTier); err != nil {
			errs = append(errs, fmt.Errorf("%s: tier_overrides[%d]: %w", TierThresholdsFile, i, err))
		}
		t.Risk.TierRules = append(t.Risk.TierRules, risk.TierRule{Triggers: triggers, Force: risk.Tier(r.ForceTier)})
	}

	for i, r := range ov.StrategyOverrides {
		triggers, err := r.compile()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: strategy_overrides[%d]: %w", OverridesFile, i, err))
		}
		if len(r.MultiplyMode) == 0 && len(r.Force) == 0 {
			errs = append(errs, fmt.Errorf("%s: strategy_overrides[%d]: needs multiply_mode or force", OverridesFile, i))
		}
		if len(r.MultiplyMode) > 0 {
			factors := make(map[risk.Mode]float64, len(r.MultiplyMode))
			for k, v := range r.MultiplyMode {
				factors[risk.Mode(k)] = v
			}
			t.Risk.Multipliers = append(t.Risk.Multipliers, risk.MultiplierRule{Triggers: triggers, Factors: factors})
		}
		if len(r.Force) > 0 {
			rule := strategy.OverrideRule{Triggers: triggers}
			for _, k := range sortedKeys(r.Force) {
				p, err := strategy.ParsePatch(k, r.Force[k])
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: strategy_overrides[%d]: %w", OverridesFile, i, err))
					continue
				}
				rule.Patches = append(rule.Patches, p)
			}
			t.Strategy.Overrides = append(t.Strategy.Overrides, rule)
		}
	}

	t.Strategy.Presets = make(map[risk.Tier]strategy.Map, len(ps.Presets))
	for k, m := range ps.Presets {
		t.Strategy.Presets[risk.Tier(k)] = m
	}

	return t, errors.Join(errs...)
}

// compile converts the single-entry trigger maps of a rule.
func (y yamlTrigger) compile() ([]risk.Trigger, error) {
	var (
		triggers []risk.Trigger
		errs     []error
	)
	if len(y.IfInputGTE) > 1 {
		errs = append(errs, fmt.Errorf("if_input_gte must have exactly one entry, got %d", len(y.IfInputGTE)))
	}
	for _, k := range sortedKeys(y.IfInputGTE) {
		f, err := input.ParseField(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		triggers = append(triggers, risk.InputTrigger(f, y.IfInputGTE[k]))
	}
	if len(y.IfModeGTE) > 1 {
		errs = append(errs, fmt.Errorf("if_mode_gte must have exactly one entry, got %d", len(y.IfModeGTE)))
	}
	for _, k := range sortedKeys(y.IfModeGTE) {
		m, err := risk.ParseMode(k)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		triggers = append(triggers, risk.ModeTrigger(m, y.IfModeGTE[k]))
	}
	if len(triggers) == 0 && len(errs) == 0 {
		errs = append(errs, errors.New("needs if_input_gte or if_mode_gte"))
	}
	return triggers, errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion compile
