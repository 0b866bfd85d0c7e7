package ledger

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/stakeplan/internal/engine"
)

// ErrNotFound is returned when a run ID is not in the ledger.
var ErrNotFound = errors.New("run not found")

// #region run
// Run is one recorded engine invocation.
type Run struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"` // "cli" | "grpc" | "mcp" | "replay"
	CreatedAt time.Time     `json:"created_at"`
	Result    engine.Result `json:"result"`
}

// #endregion run

// #region check-entry
// CheckEntry is one row in the check_log table: an eval outcome attached to a run.
type CheckEntry struct {
	RunID       string
	Passed      bool
	Reason      string
	MetricsJSON string
	CreatedAt   time.Time
}

// #endregion check-entry
