package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndLoad_OrdersRunsOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Recorded out of chronological order on purpose.
	require.NoError(t, s.Record(ctx, "run-2", base.Add(time.Hour),
		domain.TestHistory{"login": {domain.StatusPass}, "create": {domain.StatusPass}},
		[]string{"login", "create"}))
	require.NoError(t, s.Record(ctx, "run-1", base,
		domain.TestHistory{"login": {domain.StatusFail}, "skip": {domain.StatusSkip}},
		[]string{"skip", "login"}))

	h, order, err := s.Load(ctx, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"skip", "login", "create"}, order)
	assert.Equal(t, []domain.TestStatus{domain.StatusFail, domain.StatusPass}, h["login"])
	assert.Equal(t, []domain.TestStatus{domain.StatusSkip}, h["skip"])
}

func TestLoad_LimitsToRecentRuns(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, st := range []domain.TestStatus{domain.StatusFail, domain.StatusPass, domain.StatusPass} {
		require.NoError(t, s.Record(ctx, string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute),
			domain.TestHistory{"t": {st}}, []string{"t"}))
	}

	h, _, err := s.Load(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.TestStatus{domain.StatusPass, domain.StatusPass}, h["t"])
}

func TestRecord_DuplicateRunIDFails(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	now := time.Now()

	require.NoError(t, s.Record(ctx, "dup", now, domain.TestHistory{"a": {domain.StatusPass}}, []string{"a"}))
	err := s.Record(ctx, "dup", now, domain.TestHistory{"a": {domain.StatusFail}}, []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `could not record history for run "dup"`)

	h, _, err := s.Load(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.TestStatus{domain.StatusPass}, h["a"], "failed run must be rolled back")
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Record(ctx, string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute),
			domain.TestHistory{"t": {domain.StatusPass}}, []string{"t"}))
	}

	removed, err := s.Prune(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	h, _, err := s.Load(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, h["t"], 1)

	_, err = s.Prune(ctx, -1)
	require.Error(t, err)
}
