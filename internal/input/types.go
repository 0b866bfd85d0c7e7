package input

// #region enums

// ChannelType is the medium the message will be delivered through.
type ChannelType string

const (
	ChannelText     ChannelType = "text"
	ChannelEmail    ChannelType = "email"
	ChannelInPerson ChannelType = "in_person"
	ChannelPhone    ChannelType = "phone"
)

// GoalType is what the sender wants the exchange to accomplish.
type GoalType string

const (
	GoalClarify   GoalType = "clarify"
	GoalNegotiate GoalType = "negotiate"
	GoalBoundary  GoalType = "boundary"
	GoalResolve   GoalType = "resolve"
	GoalDocument  GoalType = "document"
)

// RelationshipGoal is where the sender wants the relationship to end up.
type RelationshipGoal string

const (
	RelationshipRepair   RelationshipGoal = "repair"
	RelationshipMaintain RelationshipGoal = "maintain"
	RelationshipBoundary RelationshipGoal = "boundary"
	RelationshipExit     RelationshipGoal = "exit"
)

// DesiredAction is the concrete response requested from the counterparty.
type DesiredAction string

const (
	ActionReply       DesiredAction = "reply"
	ActionSchedule    DesiredAction = "schedule"
	ActionConfirm     DesiredAction = "confirm"
	ActionAcknowledge DesiredAction = "acknowledge"
	ActionAdjust      DesiredAction = "adjust"
)

// EvidenceStrength grades how well the sender can back up the facts.
type EvidenceStrength string

const (
	EvidenceNone    EvidenceStrength = "none"
	EvidencePartial EvidenceStrength = "partial"
	EvidenceStrong  EvidenceStrength = "strong"
)

// Allowed value sets, in declaration order.
var (
	ChannelTypes      = []ChannelType{ChannelText, ChannelEmail, ChannelInPerson, ChannelPhone}
	GoalTypes         = []GoalType{GoalClarify, GoalNegotiate, GoalBoundary, GoalResolve, GoalDocument}
	RelationshipGoals = []RelationshipGoal{RelationshipRepair, RelationshipMaintain, RelationshipBoundary, RelationshipExit}
	DesiredActions    = []DesiredAction{ActionReply, ActionSchedule, ActionConfirm, ActionAcknowledge, ActionAdjust}
	EvidenceStrengths = []EvidenceStrength{EvidenceNone, EvidencePartial, EvidenceStrong}
)

// #endregion enums

// #region canonical

// Stakes describes how much is riding on the exchange.
type Stakes struct {
	Severity      float64 `json:"severity"`
	Reversibility float64 `json:"reversibility"`
	TimePressure  float64 `json:"time_pressure"`
}

// Counterparty describes the person on the other side.
type Counterparty struct {
	PowerAsymmetry float64 `json:"power_asymmetry"`
	TrustLevel     float64 `json:"trust_level"`
	Predictability float64 `json:"predictability"`
}

// Exposure describes who else could be affected by what is written.
type Exposure struct {
	LegalExposure      float64 `json:"legal_exposure"`
	FinancialExposure  float64 `json:"financial_exposure"`
	ReputationExposure float64 `json:"reputation_exposure"`
	AudienceSpillover  float64 `json:"audience_spillover"`
}

// History describes prior attempts at the same conversation.
type History struct {
	PatternRepetition        float64 `json:"pattern_repetition"`
	PriorBoundaryFailed      float64 `json:"prior_boundary_failed"`
	PriorDocumentationExists float64 `json:"prior_documentation_exists"`
}

// Communication describes the channel.
type Communication struct {
	ChannelType           ChannelType `json:"channel_type"`
	ChannelRisk           float64     `json:"channel_risk"`
	MisinterpretationRisk float64     `json:"misinterpretation_risk"`
}

// Intent describes what the sender is trying to achieve.
type Intent struct {
	GoalType         GoalType         `json:"goal_type"`
	RelationshipGoal RelationshipGoal `json:"relationship_goal"`
	DesiredAction    DesiredAction    `json:"desired_action"`
}

// Facts carries the sender's account of what happened.
type Facts struct {
	FactualSummary   string           `json:"factual_summary"`
	EvidenceStrength EvidenceStrength `json:"evidence_strength"`
	EmotionIntensity float64          `json:"emotion_intensity"`
}

// Canonical is the sanitized input record every later stage reads.
// Numeric fields are always in [0,1] and enums always hold an allowed value.
type Canonical struct {
	Stakes        Stakes        `json:"stakes"`
	Counterparty  Counterparty  `json:"counterparty"`
	Exposure      Exposure      `json:"exposure"`
	History       History       `json:"history"`
	Communication Communication `json:"communication"`
	Intent        Intent        `json:"intent"`
	Facts         Facts         `json:"facts"`
}

// #endregion canonical
