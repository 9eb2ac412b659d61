package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceLineup/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "lineup.db"))
	require.NoError(t, err)
	defer rec.Close()

	start := time.Date(2025, 6, 30, 8, 0, 0, 0, time.UTC)
	first := model.RunSummary{
		Mode:       "cli",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Minute),
		Categories: []model.CategorySummary{
			{Category: "bonds", Saved: 1, Skipped: 1},
			{Category: "crypto", Saved: 2, Failed: 1},
		},
		Saved: 3, Skipped: 1, Failed: 1, Records: 4200,
	}
	require.NoError(t, rec.RecordRun(&first))
	assert.NotEmpty(t, first.ID)

	second := model.RunSummary{
		ID:         "fixed-id",
		Mode:       "cron",
		StartedAt:  start.Add(24 * time.Hour),
		FinishedAt: start.Add(24*time.Hour + time.Minute),
		Aborted:    true,
	}
	require.NoError(t, rec.RecordRun(&second))

	runs, err := rec.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "fixed-id", runs[0].ID)
	assert.True(t, runs[0].Aborted)
	assert.Empty(t, runs[0].Categories)

	got := runs[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "cli", got.Mode)
	assert.True(t, got.StartedAt.Equal(first.StartedAt))
	assert.True(t, got.FinishedAt.Equal(first.FinishedAt))
	assert.Equal(t, 4200, got.Records)
	assert.Equal(t, first.Categories, got.Categories)

	runs, err = rec.RecentRuns(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "lineup.db"))
	require.NoError(t, err)
	defer rec.Close()

	run := model.RunSummary{ID: "dup", Mode: "cli", Categories: []model.CategorySummary{{Category: "etfs"}}}
	require.NoError(t, rec.RecordRun(&run))
	assert.Error(t, rec.RecordRun(&run))

	runs, err := rec.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].Categories, 1, "failed insert rolled back")
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordRun(&model.RunSummary{}))
	runs, err := rec.RecentRuns(5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, rec.Close())
}
