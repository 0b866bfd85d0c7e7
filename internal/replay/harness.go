// Package replay runs fixture cases through the engine and compares the
// results against recorded expectations.
package replay

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/eval"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

// #region types

// CaseResult captures the outcome of replaying one case.
type CaseResult struct {
	CaseID     string
	Result     engine.Result
	Eval       eval.EvalResult
	Mismatches []string
}

// Matched reports whether the case met every expectation and passed eval.
func (r CaseResult) Matched() bool {
	return len(r.Mismatches) == 0 && r.Eval.Passed
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCases   int
	Matched      int
	Diverged     int
	EvalFailures int
	Tiers        map[risk.Tier]int
}

// #endregion types

// #region replay

// Replay runs every case on up to workers goroutines. Results are returned in
// case order. workers <= 0 uses GOMAXPROCS. A cancelled ctx stops scheduling
// and returns ctx's error.
func Replay(ctx context.Context, eng *engine.Engine, cases []Case, workers int) ([]CaseResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	cfg := eval.DefaultEvalConfig()
	cfg.Thresholds = eng.Tables().Risk.Thresholds
	harness := eval.NewEvalHarness(cfg)

	results := make([]CaseResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := eng.Run(c.Input)
			results[i] = CaseResult{
				CaseID:     c.ID,
				Result:     res,
				Eval:       harness.Run(res),
				Mismatches: c.Expected.Mismatches(res),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []CaseResult) ReplaySummary {
	s := ReplaySummary{
		TotalCases: len(results),
		Tiers:      make(map[risk.Tier]int),
	}
	for _, r := range results {
		if r.Matched() {
			s.Matched++
		} else {
			s.Diverged++
		}
		if !r.Eval.Passed {
			s.EvalFailures++
		}
		s.Tiers[r.Result.RiskProfile.RiskTier]++
	}
	return s
}

// #endregion replay
