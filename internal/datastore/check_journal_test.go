package datastore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJournal(t *testing.T) *CheckJournal {
	t.Helper()
	j, err := NewCheckJournal(filepath.Join(t.TempDir(), "db", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestCheckJournal_RecordAndRecent(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := models.Target{Name: "A", URL: "https://a.example"}
	b := models.Target{Name: "B", URL: "https://b.example"}

	require.NoError(t, j.Record(ctx, "c1", models.CheckResult{Target: a, Status: models.StatusEstablished, CheckedAt: base, Duration: 120 * time.Millisecond}))
	require.NoError(t, j.Record(ctx, "c1", models.CheckResult{Target: b, Status: models.StatusSkipped, Err: errors.New("fetch failed"), CheckedAt: base.Add(time.Second)}))
	require.NoError(t, j.Record(ctx, "c2", models.CheckResult{
		Target: a,
		Status: models.StatusChanged,
		Changes: &models.ChangeSet{Changes: []models.LineChange{
			{Op: models.ChangeRemoved, Line: "old"},
			{Op: models.ChangeAdded, Line: "new"},
			{Op: models.ChangeAdded, Line: "newer"},
		}},
		CheckedAt: base.Add(time.Hour),
	}))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "c2", entries[0].CycleID)
	assert.Equal(t, "changed", entries[0].Status)
	assert.Equal(t, 2, entries[0].LinesAdded)
	assert.Equal(t, 1, entries[0].LinesRemoved)
	assert.Equal(t, StorageKey(a.URL), entries[0].StorageKey)
	assert.True(t, base.Add(time.Hour).Equal(entries[0].CheckedAt))

	assert.Equal(t, "skipped", entries[1].Status)
	assert.Equal(t, "fetch failed", entries[1].Reason)

	assert.Equal(t, 120*time.Millisecond, entries[2].Duration)
}

func TestCheckJournal_RecentForTarget(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	now := time.Now().UTC()
	a := models.Target{Name: "A", URL: "https://a.example"}
	b := models.Target{Name: "B", URL: "https://b.example"}

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(ctx, "c", models.CheckResult{Target: a, Status: models.StatusUnchanged, CheckedAt: now.Add(time.Duration(i) * time.Minute)}))
	}
	require.NoError(t, j.Record(ctx, "c", models.CheckResult{Target: b, Status: models.StatusUnchanged, CheckedAt: now}))

	entries, err := j.RecentForTarget(ctx, a.URL, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, a.URL, e.TargetURL)
	}
	assert.True(t, entries[0].CheckedAt.After(entries[1].CheckedAt))
}

func TestCheckJournal_EmptyHistory(t *testing.T) {
	j := newTestJournal(t)

	entries, err := j.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
