package blocks

import (
	"maps"
	"slices"

	"github.com/danielpatrickdp/stakeplan/internal/strategy"
)

// #region templates

// Template is a named block sequence with its base constraints.
type Template struct {
	Name        string
	Blocks      []Block
	Constraints map[Constraint]bool
}

func (t Template) blocks() []Block {
	return slices.Clone(t.Blocks)
}

func (t Template) constraints() map[Constraint]bool {
	return maps.Clone(t.Constraints)
}

var (
	dialogueTemplate = Template{
		Name: "dialogue",
		Blocks: []Block{
			BlockOpeningLine,
			BlockContextAnchor,
			BlockObservations,
			BlockBoundaryOrRequest,
			BlockClarifyingQuestion,
			BlockFallbackIfPushback,
			BlockClosingLine,
		},
		Constraints: map[Constraint]bool{
			ConstraintNoEmotionalLanguage:    true,
			ConstraintAvoidAdmissions:        true,
			ConstraintRequireAmbiguityBuffer: true,
			ConstraintCTAMustBeClear:         true,
		},
	}

	recordStyleTemplate = Template{
		Name: "record_style",
		Blocks: []Block{
			BlockContextAnchor,
			BlockFactsLog,
			BlockExpectationStandard,
			BlockRequestedProcess,
			BlockCTA,
			BlockClosing,
		},
		Constraints: writtenConstraints(true),
	}

	formalTemplate = Template{
		Name: "formal_email",
		Blocks: []Block{
			BlockContextAnchor,
			BlockObservations,
			BlockImpact,
			BlockBoundaryOrRequest,
			BlockCTA,
			BlockClosing,
		},
		Constraints: writtenConstraints(true),
	}

	structuredTemplate = Template{
		Name: "structured",
		Blocks: []Block{
			BlockContextAnchor,
			BlockObservations,
			BlockBoundaryOrRequest,
			BlockCTA,
			BlockClosing,
		},
		Constraints: writtenConstraints(true),
	}

	singleShotTemplate = Template{
		Name:        "single_shot",
		Blocks:      []Block{BlockContextAnchor, BlockBoundaryOrRequest, BlockCTA, BlockClosing},
		Constraints: writtenConstraints(false),
	}
)

// writtenConstraints is the base set for written deliverables. withEvidence adds
// an explicit evidence_reference_required=false entry.
func writtenConstraints(withEvidence bool) map[Constraint]bool {
	c := map[Constraint]bool{
		ConstraintNoEmotionalLanguage: true,
		ConstraintCTAMustBeClear:      true,
	}
	if withEvidence {
		c[ConstraintEvidenceReferenceRequired] = false
	}
	return c
}

// Select returns a copy of the template for a structure mode and deliverable.
func Select(mode strategy.StructureMode, deliverable DeliverableType) Template {
	t := lookup(mode, deliverable)
	return Template{Name: t.Name, Blocks: t.blocks(), Constraints: t.constraints()}
}

// lookup picks the shared template. First match wins.
func lookup(mode strategy.StructureMode, deliverable DeliverableType) Template {
	switch {
	case deliverable == DeliverableDialogue:
		return dialogueTemplate
	case mode == strategy.StructureRecordStyle:
		return recordStyleTemplate
	case mode == strategy.StructureFormalEmail || deliverable == DeliverableEmail:
		return formalTemplate
	case mode == strategy.StructureStructured:
		return structuredTemplate
	default:
		return singleShotTemplate
	}
}

// #endregion templates
