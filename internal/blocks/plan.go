// Package blocks selects the ordered content blocks and writing constraints a
// drafted message must follow.
package blocks

import (
	"github.com/danielpatrickdp/stakeplan/internal/input"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
	"github.com/danielpatrickdp/stakeplan/internal/strategy"
)

// #region types

// DeliverableType is the kind of artifact the drafter produces.
type DeliverableType string

const (
	DeliverableEmail    DeliverableType = "email"
	DeliverableDialogue DeliverableType = "dialogue_script"
	DeliverableMessage  DeliverableType = "message"
)

// Block is one section of the drafted deliverable.
type Block string

const (
	BlockOpeningLine         Block = "opening_line"
	BlockContextAnchor       Block = "context_anchor"
	BlockObservations        Block = "observations"
	BlockBoundaryOrRequest   Block = "boundary_or_request"
	BlockClarifyingQuestion  Block = "clarifying_question"
	BlockFallbackIfPushback  Block = "fallback_if_pushback"
	BlockClosingLine         Block = "closing_line"
	BlockFactsLog            Block = "facts_log"
	BlockExpectationStandard Block = "expectation_standard"
	BlockRequestedProcess    Block = "requested_process"
	BlockImpact              Block = "impact"
	BlockCTA                 Block = "cta"
	BlockClosing             Block = "closing"
)

// Constraint names a boolean writing rule.
type Constraint string

const (
	ConstraintNoEmotionalLanguage       Constraint = "no_emotional_language"
	ConstraintAvoidAdmissions           Constraint = "avoid_admissions"
	ConstraintRequireAmbiguityBuffer    Constraint = "require_ambiguity_buffer"
	ConstraintCTAMustBeClear            Constraint = "cta_must_be_clear"
	ConstraintEvidenceReferenceRequired Constraint = "evidence_reference_required"
)

// Plan is the structural blueprint for the drafter. RequiredBlocks is the
// prescribed writing order.
type Plan struct {
	DeliverableType  DeliverableType     `json:"deliverable_type"`
	RequiredBlocks   []Block             `json:"required_blocks"`
	BlockConstraints map[Constraint]bool `json:"block_constraints"`
}

// #endregion types

// #region build

// DeliverableFor maps a channel to its deliverable.
func DeliverableFor(ch input.ChannelType) DeliverableType {
	switch ch {
	case input.ChannelInPerson, input.ChannelPhone:
		return DeliverableDialogue
	case input.ChannelEmail:
		return DeliverableEmail
	default:
		return DeliverableMessage
	}
}

// Build derives the block plan. Selection reads only the channel and the strategy map.
func Build(in input.Canonical, _ risk.Profile, m strategy.Map) Plan {
	deliverable := DeliverableFor(in.Communication.ChannelType)
	tpl := Select(m.StructureMode, deliverable)

	constraints := tpl.Constraints
	if m.Guardrails.AvoidAdmissions {
		constraints[ConstraintAvoidAdmissions] = true
	}
	if m.Guardrails.RequireAmbiguityBuffer {
		constraints[ConstraintRequireAmbiguityBuffer] = true
	}

	return Plan{
		DeliverableType:  deliverable,
		RequiredBlocks:   tpl.Blocks,
		BlockConstraints: constraints,
	}
}

// #endregion build
