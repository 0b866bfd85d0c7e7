package input

import "fmt"

// #region field

// Field names a numeric leaf of the canonical record by its dotted path.
// Rule triggers in the configuration tables are keyed by these paths.
type Field string

const (
	FieldSeverity                 Field = "stakes.severity"
	FieldReversibility            Field = "stakes.reversibility"
	FieldTimePressure             Field = "stakes.time_pressure"
	FieldPowerAsymmetry           Field = "counterparty.power_asymmetry"
	FieldTrustLevel               Field = "counterparty.trust_level"
	FieldPredictability           Field = "counterparty.predictability"
	FieldLegalExposure            Field = "exposure.legal_exposure"
	FieldFinancialExposure        Field = "exposure.financial_exposure"
	FieldReputationExposure       Field = "exposure.reputation_exposure"
	FieldAudienceSpillover        Field = "exposure.audience_spillover"
	FieldPatternRepetition        Field = "history.pattern_repetition"
	FieldPriorBoundaryFailed      Field = "history.prior_boundary_failed"
	FieldPriorDocumentationExists Field = "history.prior_documentation_exists"
	FieldChannelRisk              Field = "communication.channel_risk"
	FieldMisinterpretationRisk    Field = "communication.misinterpretation_risk"
	FieldEmotionIntensity         Field = "facts.emotion_intensity"
)

// numericField binds a path to its default and its slot in Canonical.
type numericField struct {
	field    Field
	fallback float64
	ref      func(*Canonical) *float64
}

var numericFields = []numericField{
	{FieldSeverity, 0.5, func(c *Canonical) *float64 { return &c.Stakes.Severity }},
	{FieldReversibility, 0.5, func(c *Canonical) *float64 { return &c.Stakes.Reversibility }},
	{FieldTimePressure, 0.5, func(c *Canonical) *float64 { return &c.Stakes.TimePressure }},
	{FieldPowerAsymmetry, 0.5, func(c *Canonical) *float64 { return &c.Counterparty.PowerAsymmetry }},
	{FieldTrustLevel, 0.5, func(c *Canonical) *float64 { return &c.Counterparty.TrustLevel }},
	{FieldPredictability, 0.5, func(c *Canonical) *float64 { return &c.Counterparty.Predictability }},
	{FieldLegalExposure, 0, func(c *Canonical) *float64 { return &c.Exposure.LegalExposure }},
	{FieldFinancialExposure, 0, func(c *Canonical) *float64 { return &c.Exposure.FinancialExposure }},
	{FieldReputationExposure, 0, func(c *Canonical) *float64 { return &c.Exposure.ReputationExposure }},
	{FieldAudienceSpillover, 0, func(c *Canonical) *float64 { return &c.Exposure.AudienceSpillover }},
	{FieldPatternRepetition, 0, func(c *Canonical) *float64 { return &c.History.PatternRepetition }},
	{FieldPriorBoundaryFailed, 0, func(c *Canonical) *float64 { return &c.History.PriorBoundaryFailed }},
	{FieldPriorDocumentationExists, 0, func(c *Canonical) *float64 { return &c.History.PriorDocumentationExists }},
	{FieldChannelRisk, 0.5, func(c *Canonical) *float64 { return &c.Communication.ChannelRisk }},
	{FieldMisinterpretationRisk, 0.5, func(c *Canonical) *float64 { return &c.Communication.MisinterpretationRisk }},
	{FieldEmotionIntensity, 0.3, func(c *Canonical) *float64 { return &c.Facts.EmotionIntensity }},
}

var fieldIndex = func() map[Field]int {
	idx := make(map[Field]int, len(numericFields))
	for i, nf := range numericFields {
		idx[nf.field] = i
	}
	return idx
}()

// Fields returns every numeric field path in declaration order.
func Fields() []Field {
	out := make([]Field, len(numericFields))
	for i, nf := range numericFields {
		out[i] = nf.field
	}
	return out
}

// ParseField validates a dotted path against the numeric fields.
func ParseField(path string) (Field, error) {
	if _, ok := fieldIndex[Field(path)]; !ok {
		return "", fmt.Errorf("unknown numeric input field %q", path)
	}
	return Field(path), nil
}

// Value reads a numeric field. Unknown fields read as 0.
func (c Canonical) Value(f Field) float64 {
	i, ok := fieldIndex[f]
	if !ok {
		return 0
	}
	return *numericFields[i].ref(&c)
}

// Default returns the documented fallback for a numeric field.
func Default(f Field) float64 {
	if i, ok := fieldIndex[f]; ok {
		return numericFields[i].fallback
	}
	return 0
}

// #endregion field
