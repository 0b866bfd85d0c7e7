// Package ledger records engine runs in SQLite so they can be inspected and
// exported as regression fixtures.
package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
	"github.com/danielpatrickdp/stakeplan/internal/risk"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	source           TEXT NOT NULL,
	version          TEXT NOT NULL,
	risk_tier        TEXT NOT NULL,
	overall_score    INTEGER NOT NULL,
	deliverable_type TEXT NOT NULL,
	structure_mode   TEXT NOT NULL,
	result_json      TEXT NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS check_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	passed       INTEGER NOT NULL,
	reason       TEXT,
	metrics_json TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// timeLayout is fixed width so created_at sorts chronologically as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// #region store-struct
// Store is the run ledger. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations. ":memory:" gives a private in-memory ledger.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// pragmas are per connection, and ":memory:" is a separate database per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region record-run
// RecordRun stores a result under a fresh run ID.
func (s *Store) RecordRun(res engine.Result, source string) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		Source:    source,
		CreatedAt: s.now(),
		Result:    res,
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		return Run{}, fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, source, version, risk_tier, overall_score, deliverable_type, structure_mode, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, source, res.Version,
		string(res.RiskProfile.RiskTier), res.RiskProfile.OverallRiskScore,
		string(res.BlockPlan.DeliverableType), string(res.StrategyMap.StructureMode),
		string(resultJSON), formatTime(run.CreatedAt),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// #endregion record-run

// #region get-run
// GetRun retrieves a run by ID. Returns ErrNotFound for unknown IDs.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, source, result_json, created_at FROM runs WHERE run_id = ?`, id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, source, result_json, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// #endregion list-runs

// #region tier-counts
// TierCounts returns how many recorded runs landed in each tier.
func (s *Store) TierCounts() (map[risk.Tier]int, error) {
	rows, err := s.db.Query(`SELECT risk_tier, COUNT(*) FROM runs GROUP BY risk_tier`)
	if err != nil {
		return nil, fmt.Errorf("tier counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[risk.Tier]int, len(risk.Tiers))
	for rows.Next() {
		var tier string
		var n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[risk.Tier(tier)] = n
	}
	return counts, rows.Err()
}

// #endregion tier-counts

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var resultJSON, createdStr string
	if err := sc.Scan(&run.ID, &run.Source, &resultJSON, &createdStr); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(resultJSON), &run.Result); err != nil {
		return Run{}, fmt.Errorf("unmarshal result: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return run, nil
}

// #endregion scan
