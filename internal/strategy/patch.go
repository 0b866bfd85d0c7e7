package strategy

import (
	"fmt"

	"github.com/danielpatrickdp/stakeplan/internal/input"
)

// #region field

// Field names a patchable leaf of Map by its dotted path.
type Field string

const (
	FieldDisclosureLevel        Field = "disclosure_level"
	FieldStructureMode          Field = "structure_mode"
	FieldCTAIntensity           Field = "cta_intensity"
	FieldRelationshipPriority   Field = "relationship_priority"
	FieldTone                   Field = "tone"
	FieldAvoidAdmissions        Field = "guardrails.avoid_admissions"
	FieldRequireAmbiguityBuffer Field = "guardrails.require_ambiguity_buffer"
	FieldNoEmotionalLanguage    Field = "guardrails.no_emotional_language"
	FieldKeepRecord             Field = "guardrails.keep_record"
)

// Fields lists every patchable field.
var Fields = []Field{
	FieldDisclosureLevel,
	FieldStructureMode,
	FieldCTAIntensity,
	FieldRelationshipPriority,
	FieldTone,
	FieldAvoidAdmissions,
	FieldRequireAmbiguityBuffer,
	FieldNoEmotionalLanguage,
	FieldKeepRecord,
}

func (f Field) isFlag() bool {
	switch f {
	case FieldAvoidAdmissions, FieldRequireAmbiguityBuffer, FieldNoEmotionalLanguage, FieldKeepRecord:
		return true
	}
	return false
}

// #endregion field

// #region patch

// Patch is an absolute assignment to one field. Text holds enum values,
// Flag holds guardrail values. Applying a patch twice equals applying it once.
type Patch struct {
	Field Field
	Text  string
	Flag  bool
}

// SetText builds a patch for an enum field.
func SetText(f Field, v string) Patch {
	return Patch{Field: f, Text: v}
}

// SetFlag builds a patch for a guardrail.
func SetFlag(f Field, v bool) Patch {
	return Patch{Field: f, Flag: v}
}

// ParsePatch converts a dotted path and an untyped value into a checked patch.
func ParsePatch(path string, value any) (Patch, error) {
	f := Field(path)
	if !input.Member(f, Fields) {
		return Patch{}, fmt.Errorf("unknown strategy field %q", path)
	}

	if f.isFlag() {
		b, ok := value.(bool)
		if !ok {
			return Patch{}, fmt.Errorf("field %s expects a boolean, got %T", path, value)
		}
		return SetFlag(f, b), nil
	}

	s, ok := value.(string)
	if !ok {
		return Patch{}, fmt.Errorf("field %s expects a string, got %T", path, value)
	}
	p := SetText(f, s)
	if err := p.Validate(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

// Validate checks that an enum patch carries an allowed value.
func (p Patch) Validate() error {
	var ok bool
	switch p.Field {
	case FieldDisclosureLevel:
		ok = input.Member(DisclosureLevel(p.Text), DisclosureLevels)
	case FieldStructureMode:
		ok = input.Member(StructureMode(p.Text), StructureModes)
	case FieldCTAIntensity:
		ok = input.Member(CTAIntensity(p.Text), CTAIntensities)
	case FieldRelationshipPriority:
		ok = input.Member(input.RelationshipGoal(p.Text), input.RelationshipGoals)
	case FieldTone:
		ok = input.Member(Tone(p.Text), Tones)
	default:
		ok = p.Field.isFlag()
		if !ok {
			return fmt.Errorf("unknown strategy field %q", p.Field)
		}
	}
	if !ok {
		return fmt.Errorf("invalid value %q for %s", p.Text, p.Field)
	}
	return nil
}

// Apply writes the patch into m.
func (p Patch) Apply(m *Map) {
	switch p.Field {
	case FieldDisclosureLevel:
		m.DisclosureLevel = DisclosureLevel(p.Text)
	case FieldStructureMode:
		m.StructureMode = StructureMode(p.Text)
	case FieldCTAIntensity:
		m.CTAIntensity = CTAIntensity(p.Text)
	case FieldRelationshipPriority:
		m.RelationshipPriority = input.RelationshipGoal(p.Text)
	case FieldTone:
		m.Tone = Tone(p.Text)
	case FieldAvoidAdmissions:
		m.Guardrails.AvoidAdmissions = p.Flag
	case FieldRequireAmbiguityBuffer:
		m.Guardrails.RequireAmbiguityBuffer = p.Flag
	case FieldNoEmotionalLanguage:
		m.Guardrails.NoEmotionalLanguage = p.Flag
	case FieldKeepRecord:
		m.Guardrails.KeepRecord = p.Flag
	}
}

func (p Patch) String() string {
	if p.Field.isFlag() {
		return fmt.Sprintf("%s=%t", p.Field, p.Flag)
	}
	return fmt.Sprintf("%s=%s", p.Field, p.Text)
}

// #endregion patch
