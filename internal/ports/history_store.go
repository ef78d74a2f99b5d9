package ports

import (
	"context"
	"time"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

// HistoryStore keeps per-test statuses across analyses.
type HistoryStore interface {
	// Record stores one run; order lists test names in first-seen order.
	Record(ctx context.Context, runID string, at time.Time, history domain.TestHistory, order []string) error
	// Load returns the statuses of the last lastRuns runs, oldest first.
	Load(ctx context.Context, lastRuns int) (domain.TestHistory, []string, error)
	Close() error
}
