package strategy

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/stakeplan/internal/input"
)

// #region enums

// DisclosureLevel controls how much the message reveals.
type DisclosureLevel string

const (
	DisclosureMinimal   DisclosureLevel = "minimal"
	DisclosureSelective DisclosureLevel = "selective"
	DisclosureFull      DisclosureLevel = "full"
)

// StructureMode is the overall shape of the deliverable.
type StructureMode string

const (
	StructureSingleShot  StructureMode = "single_shot"
	StructureStructured  StructureMode = "structured"
	StructureFormalEmail StructureMode = "formal_email"
	StructureRecordStyle StructureMode = "record_style"
)

// CTAIntensity is how hard the call to action pushes.
type CTAIntensity string

const (
	CTALow    CTAIntensity = "low"
	CTAMedium CTAIntensity = "medium"
	CTAHigh   CTAIntensity = "high"
)

// Tone is the register of the drafted message.
type Tone string

const (
	ToneWarm    Tone = "warm"
	ToneNeutral Tone = "neutral"
	ToneFormal  Tone = "formal"
)

// Allowed value sets, in declaration order.
var (
	DisclosureLevels = []DisclosureLevel{DisclosureMinimal, DisclosureSelective, DisclosureFull}
	StructureModes   = []StructureMode{StructureSingleShot, StructureStructured, StructureFormalEmail, StructureRecordStyle}
	CTAIntensities   = []CTAIntensity{CTALow, CTAMedium, CTAHigh}
	Tones            = []Tone{ToneWarm, ToneNeutral, ToneFormal}
)

// stepDown lowers the CTA by exactly one level; low stays low.
func (c CTAIntensity) stepDown() CTAIntensity {
	switch c {
	case CTAHigh:
		return CTAMedium
	case CTAMedium:
		return CTALow
	}
	return c
}

// #endregion enums

// #region map

// Guardrails are boolean writing constraints carried into the block plan.
type Guardrails struct {
	AvoidAdmissions        bool `json:"avoid_admissions" yaml:"avoid_admissions"`
	RequireAmbiguityBuffer bool `json:"require_ambiguity_buffer" yaml:"require_ambiguity_buffer"`
	NoEmotionalLanguage    bool `json:"no_emotional_language" yaml:"no_emotional_language"`
	KeepRecord             bool `json:"keep_record" yaml:"keep_record"`
}

// Map is the recommended messaging strategy. Its shape is fixed; presets,
// fine-tuning and overrides only change values.
type Map struct {
	DisclosureLevel      DisclosureLevel        `json:"disclosure_level" yaml:"disclosure_level"`
	StructureMode        StructureMode          `json:"structure_mode" yaml:"structure_mode"`
	CTAIntensity         CTAIntensity           `json:"cta_intensity" yaml:"cta_intensity"`
	RelationshipPriority input.RelationshipGoal `json:"relationship_priority" yaml:"relationship_priority"`
	Tone                 Tone                   `json:"tone" yaml:"tone"`
	Guardrails           Guardrails             `json:"guardrails" yaml:"guardrails"`
}

// Validate checks every enum field against its allowed set.
func (m Map) Validate() error {
	var errs []error
	if !input.Member(m.DisclosureLevel, DisclosureLevels) {
		errs = append(errs, fmt.Errorf("invalid disclosure_level %q", m.DisclosureLevel))
	}
	if !input.Member(m.StructureMode, StructureModes) {
		errs = append(errs, fmt.Errorf("invalid structure_mode %q", m.StructureMode))
	}
	if !input.Member(m.CTAIntensity, CTAIntensities) {
		errs = append(errs, fmt.Errorf("invalid cta_intensity %q", m.CTAIntensity))
	}
	if !input.Member(m.RelationshipPriority, input.RelationshipGoals) {
		errs = append(errs, fmt.Errorf("invalid relationship_priority %q", m.RelationshipPriority))
	}
	if !input.Member(m.Tone, Tones) {
		errs = append(errs, fmt.Errorf("invalid tone %q", m.Tone))
	}
	return errors.Join(errs...)
}

// #endregion map
