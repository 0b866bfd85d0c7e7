package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

// ExplainRiskTool handles the explain_risk MCP tool.
type ExplainRiskTool struct {
	eng *engine.Engine
}

// NewExplainRiskTool creates an ExplainRiskTool.
func NewExplainRiskTool(eng *engine.Engine) *ExplainRiskTool {
	return &ExplainRiskTool{eng: eng}
}

// Definition returns the MCP tool definition for explain_risk.
func (t *ExplainRiskTool) Definition() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription(
			"Explain why a situation scored the way it did: tier, score, ranked drivers, " +
				"the strategy chosen and the blocks the message needs. Returns markdown.",
		),
	}, situationOptions()...)
	return mcp.NewTool("explain_risk", opts...)
}

// Handle processes the explain_risk tool call.
func (t *ExplainRiskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := situationArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(t.explain(t.eng.Run(raw))), nil
}

func (t *ExplainRiskTool) explain(res engine.Result) string {
	p := res.RiskProfile
	sm := res.StrategyMap
	plan := res.BlockPlan

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Risk: %s (%d/100)\n\n", p.RiskTier, p.OverallRiskScore))
	if base := t.eng.BaseTier(p.OverallRiskScore); base != p.RiskTier {
		sb.WriteString(fmt.Sprintf("Score alone gives **%s**; a tier rule raised it to **%s**.\n\n", base, p.RiskTier))
	}

	sb.WriteString("### Drivers\n\n")
	for _, d := range p.Drivers {
		sb.WriteString(driverLine(d))
	}

	sb.WriteString("\n### Mode scores\n\n")
	for _, m := range risk.Modes {
		sb.WriteString(fmt.Sprintf("- **%s**: %.2f\n", m, p.ModeScores.Get(m)))
	}

	sb.WriteString("\n### Strategy\n\n")
	sb.WriteString(fmt.Sprintf("- **Disclosure**: %s\n", sm.DisclosureLevel))
	sb.WriteString(fmt.Sprintf("- **Structure**: %s\n", sm.StructureMode))
	sb.WriteString(fmt.Sprintf("- **CTA intensity**: %s\n", sm.CTAIntensity))
	sb.WriteString(fmt.Sprintf("- **Relationship priority**: %s\n", sm.RelationshipPriority))
	sb.WriteString(fmt.Sprintf("- **Tone**: %s\n", sm.Tone))
	if g := guardrailNames(res); len(g) > 0 {
		sb.WriteString(fmt.Sprintf("- **Guardrails**: %s\n", strings.Join(g, ", ")))
	} else {
		sb.WriteString("- **Guardrails**: none\n")
	}
	if fired := t.eng.FiredOverrides(res); len(fired) > 0 {
		idx := make([]string, len(fired))
		for i, n := range fired {
			idx[i] = fmt.Sprintf("#%d", n)
		}
		sb.WriteString(fmt.Sprintf("- **Overrides applied**: %s\n", strings.Join(idx, ", ")))
	}

	sb.WriteString(fmt.Sprintf("\n### Plan: %s\n\n", plan.DeliverableType))
	for i, b := range plan.RequiredBlocks {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, b))
	}
	return sb.String()
}

func guardrailNames(res engine.Result) []string {
	g := res.StrategyMap.Guardrails
	var names []string
	if g.AvoidAdmissions {
		names = append(names, "avoid_admissions")
	}
	if g.RequireAmbiguityBuffer {
		names = append(names, "require_ambiguity_buffer")
	}
	if g.NoEmotionalLanguage {
		names = append(names, "no_emotional_language")
	}
	if g.KeepRecord {
		names = append(names, "keep_record")
	}
	return names
}

// driverLine renders one driver; each type carries different fields.
func driverLine(d risk.Driver) string {
	switch d.Type {
	case risk.DriverMode:
		if d.Score == nil {
			return fmt.Sprintf("- **%s**\n", d.Mode)
		}
		return fmt.Sprintf("- **%s**: %.2f\n", d.Mode, *d.Score)
	case risk.DriverSignal:
		return fmt.Sprintf("- Signal: %s\n", d.Key)
	default:
		return fmt.Sprintf("- %s\n", d.Note)
	}
}
