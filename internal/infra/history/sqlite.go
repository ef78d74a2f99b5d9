// Package history persists per-test statuses in SQLite so flaky tests can be
// detected across separate analyses, not only across files of one analysis.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ubuntu/decorate"
	_ "modernc.org/sqlite"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
	"github.com/MichalZajkowski/jira-build-health-action/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	test TEXT NOT NULL,
	status TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);
`

// Store is a SQLite-backed ports.HistoryStore.
type Store struct {
	db *sql.DB
}

var _ ports.HistoryStore = (*Store)(nil)

// Open opens (and creates if needed) the database at path.
func Open(path string) (s *Store, err error) {
	defer decorate.OnError(&err, "could not open history database %q", path)

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; avoids SQLITE_BUSY within a single CLI process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the statuses of one run in a single transaction.
func (s *Store) Record(ctx context.Context, runID string, at time.Time, h domain.TestHistory, order []string) (err error) {
	defer decorate.OnError(&err, "could not record history for run %q", runID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT INTO runs (id, started_at) VALUES (?, ?)`, runID, at.UTC().UnixNano()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results (run_id, seq, test, status) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seq := 0
	for _, name := range order {
		for _, st := range h[name] {
			if _, err = stmt.ExecContext(ctx, runID, seq, name, string(st)); err != nil {
				return err
			}
			seq++
		}
	}

	return tx.Commit()
}

// Load returns statuses from the most recent lastRuns runs, replayed oldest run first.
// lastRuns <= 0 loads every run.
func (s *Store) Load(ctx context.Context, lastRuns int) (h domain.TestHistory, order []string, err error) {
	defer decorate.OnError(&err, "could not load history")

	limit := lastRuns
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.test, r.status
		FROM results r
		JOIN (
			SELECT id, started_at FROM runs ORDER BY started_at DESC, id DESC LIMIT ?
		) recent ON recent.id = r.run_id
		ORDER BY recent.started_at ASC, recent.id ASC, r.seq ASC`, limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	h = domain.TestHistory{}
	order = []string{}
	for rows.Next() {
		var name, status string
		if err := rows.Scan(&name, &status); err != nil {
			return nil, nil, err
		}
		st, err := parseStatus(status)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := h[name]; !ok {
			order = append(order, name)
		}
		h[name] = append(h[name], st)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return h, order, nil
}

// Prune keeps only the newest keep runs.
func (s *Store) Prune(ctx context.Context, keep int) (removed int64, err error) {
	defer decorate.OnError(&err, "could not prune history")

	if keep < 0 {
		return 0, fmt.Errorf("keep must be >= 0, got %d", keep)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const stale = `SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT -1 OFFSET ?`
	if _, err = tx.ExecContext(ctx, `DELETE FROM results WHERE run_id IN (`+stale+`)`, keep); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, err
	}
	removed, err = res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return removed, tx.Commit()
}

func parseStatus(s string) (domain.TestStatus, error) {
	switch st := domain.TestStatus(s); st {
	case domain.StatusPass, domain.StatusFail, domain.StatusSkip:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}
