// Package engine runs the decision pipeline: normalize, score risk, map the
// strategy, plan blocks, and wrap the four records in a versioned envelope.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/stakeplan/internal/blocks"
	"github.com/danielpatrickdp/stakeplan/internal/config"
	"github.com/danielpatrickdp/stakeplan/internal/input"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
	"github.com/danielpatrickdp/stakeplan/internal/strategy"
)

// Version tags every result envelope.
const Version = "engine.v1"

// #region result

// Result is the pipeline's sole output.
type Result struct {
	Version     string          `json:"version"`
	Input       input.Canonical `json:"input"`
	RiskProfile risk.Profile    `json:"risk_profile"`
	StrategyMap strategy.Map    `json:"strategy_map"`
	BlockPlan   blocks.Plan     `json:"block_plan"`
}

// #endregion result

// #region engine

// Engine holds the validated tables. Run is safe for concurrent use.
type Engine struct {
	tables config.Tables
	scorer *risk.Scorer
	mapper *strategy.Mapper
	log    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil keeps the no-op default.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New validates tables and builds an Engine.
func New(tables config.Tables, opts ...Option) (*Engine, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("engine tables: %w", err)
	}
	e := &Engine{
		tables: tables,
		scorer: risk.NewScorer(tables.Risk),
		mapper: strategy.NewMapper(tables.Strategy),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the full pipeline on an untrusted raw record. It never fails.
func (e *Engine) Run(raw any) Result {
	in := input.Normalize(raw)
	profile := e.scorer.Score(in)
	sm := e.mapper.Map(in, profile)
	plan := blocks.Build(in, profile, sm)

	e.log.Debug("engine run",
		zap.String("tier", string(profile.RiskTier)),
		zap.Int("score", profile.OverallRiskScore),
		zap.String("structure_mode", string(sm.StructureMode)),
		zap.String("deliverable", string(plan.DeliverableType)),
	)

	return Result{
		Version:     Version,
		Input:       in,
		RiskProfile: profile,
		StrategyMap: sm,
		BlockPlan:   plan,
	}
}

// Tables returns the tables the engine was built with.
func (e *Engine) Tables() config.Tables {
	return e.tables
}

// BaseTier returns the tier implied by a score before tier rules.
func (e *Engine) BaseTier(score int) risk.Tier {
	return e.scorer.BaseTier(score)
}

// FiredOverrides returns the indexes of the strategy overrides that fired for a result.
func (e *Engine) FiredOverrides(res Result) []int {
	return e.mapper.Fired(res.Input, res.RiskProfile)
}

// #endregion engine
