package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/danielpatrickdp/stakeplan/internal/input"
)

// #region trigger

// TriggerKind discriminates what a trigger reads.
type TriggerKind string

const (
	TriggerInput TriggerKind = "input"
	TriggerMode  TriggerKind = "mode"
)

// Trigger fires when a canonical input field or a mode score is at or above Threshold.
type Trigger struct {
	Kind      TriggerKind
	Field     input.Field
	Mode      Mode
	Threshold float64
}

// InputTrigger builds a trigger on a canonical input field.
func InputTrigger(f input.Field, threshold float64) Trigger {
	return Trigger{Kind: TriggerInput, Field: f, Threshold: threshold}
}

// ModeTrigger builds a trigger on a mode score.
func ModeTrigger(m Mode, threshold float64) Trigger {
	return Trigger{Kind: TriggerMode, Mode: m, Threshold: threshold}
}

// Fired evaluates the trigger against an input and a set of mode scores.
func (t Trigger) Fired(in input.Canonical, modes ModeScores) bool {
	switch t.Kind {
	case TriggerInput:
		return in.Value(t.Field) >= t.Threshold
	case TriggerMode:
		return modes.Get(t.Mode) >= t.Threshold
	}
	return false
}

func (t Trigger) String() string {
	if t.Kind == TriggerMode {
		return fmt.Sprintf("mode %s >= %g", t.Mode, t.Threshold)
	}
	return fmt.Sprintf("%s >= %g", t.Field, t.Threshold)
}

// Validate checks that the trigger names a known field or mode.
func (t Trigger) Validate() error {
	if math.IsNaN(t.Threshold) {
		return fmt.Errorf("trigger %s: threshold is NaN", t)
	}
	switch t.Kind {
	case TriggerInput:
		if _, err := input.ParseField(string(t.Field)); err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
	case TriggerMode:
		if _, err := ParseMode(string(t.Mode)); err != nil {
			return fmt.Errorf("trigger: %w", err)
		}
	default:
		return fmt.Errorf("trigger: unknown kind %q", t.Kind)
	}
	return nil
}

// AnyFired reports whether at least one trigger fires.
func AnyFired(triggers []Trigger, in input.Canonical, modes ModeScores) bool {
	for _, t := range triggers {
		if t.Fired(in, modes) {
			return true
		}
	}
	return false
}

// #endregion trigger

// #region validate

// Validate reports every defect in the tables at once.
func (t Tables) Validate() error {
	var errs []error

	for _, m := range Modes {
		if w := t.Weights.Get(m); w < 0 || math.IsNaN(w) {
			errs = append(errs, fmt.Errorf("weight for %s must be non-negative, got %v", m, w))
		}
	}
	if sum := t.Weights.Sum(); math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Errorf("mode weights must sum to 1.0, got %.4f", sum))
	}

	th := t.Thresholds
	if th.LowMax < 0 || th.HighMax > 100 || th.LowMax >= th.MediumMax || th.MediumMax >= th.HighMax {
		errs = append(errs, fmt.Errorf("tier thresholds must be strictly ascending within [0,100], got %d/%d/%d",
			th.LowMax, th.MediumMax, th.HighMax))
	}

	for i, r := range t.TierRules {
		if len(r.Triggers) == 0 {
			errs = append(errs, fmt.Errorf("tier rule %d: no trigger", i))
		}
		for _, tr := range r.Triggers {
			if err := tr.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("tier rule %d: %w", i, err))
			}
		}
		if _, err := ParseTier(string(r.Force)); err != nil {
			errs = append(errs, fmt.Errorf("tier rule %d: %w", i, err))
		}
	}

	for i, r := range t.Multipliers {
		if len(r.Triggers) == 0 {
			errs = append(errs, fmt.Errorf("multiplier rule %d: no trigger", i))
		}
		for _, tr := range r.Triggers {
			if tr.Kind == TriggerMode {
				errs = append(errs, fmt.Errorf("multiplier rule %d: mode triggers are not allowed", i))
				continue
			}
			if err := tr.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("multiplier rule %d: %w", i, err))
			}
		}
		if len(r.Factors) == 0 {
			errs = append(errs, fmt.Errorf("multiplier rule %d: no factors", i))
		}
		for m, f := range r.Factors {
			if _, err := ParseMode(string(m)); err != nil {
				errs = append(errs, fmt.Errorf("multiplier rule %d: %w", i, err))
			}
			if f < 0 || math.IsNaN(f) {
				errs = append(errs, fmt.Errorf("multiplier rule %d: factor for %s must be non-negative", i, m))
			}
		}
	}

	return errors.Join(errs...)
}

// #endregion validate
