package eval

import (
	"github.com/danielpatrickdp/stakeplan/internal/config"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

// #region eval-config
// EvalConfig holds the limits a result is checked against.
type EvalConfig struct {
	Thresholds risk.Thresholds // tier cut points the result was scored with
	MaxDrivers int             // overall + top modes + signals
}

// DefaultEvalConfig matches the embedded v1 tables.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		Thresholds: config.MustDefault().Risk.Thresholds,
		MaxDrivers: 8,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a result check.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// #endregion eval-result
