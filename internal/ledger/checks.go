package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/stakeplan/internal/eval"
)

// #region log-check
// LogCheck writes an eval outcome for a recorded run to the check_log table.
func (s *Store) LogCheck(runID string, result eval.EvalResult) error {
	metricsJSON, err := json.Marshal(result.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO check_log (run_id, passed, reason, metrics_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		runID,
		result.Passed,
		nullIfEmpty(result.Reason),
		string(metricsJSON),
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("log check: %w", err)
	}
	return nil
}

// #endregion log-check

// #region checks
// Checks returns the eval outcomes logged for a run, oldest first.
func (s *Store) Checks(runID string) ([]CheckEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, passed, reason, metrics_json, created_at
		 FROM check_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var entries []CheckEntry
	for rows.Next() {
		var e CheckEntry
		var reason, metrics *string
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Passed, &reason, &metrics, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if reason != nil {
			e.Reason = *reason
		}
		if metrics != nil {
			e.MetricsJSON = *metrics
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion checks

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
