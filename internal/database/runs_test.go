package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woosync/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := New("sqlite://" + filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunRepositoryRoundTrip(t *testing.T) {
	repo := NewRunRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := models.NewSyncRun(models.SyncSourceAPI, start, start.Add(2*time.Second), []models.SyncOutcome{
		{Success: true, SKU: "A", Product: &models.Product{ID: 11}},
		{Success: false, SKU: "B", Error: "boom"},
		{Success: true, SKU: "C", Product: &models.Product{ID: 13}},
	})
	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSourceAPI, got.Source)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Results, 3)
	for i, sku := range []string{"A", "B", "C"} {
		assert.Equal(t, sku, got.Results[i].SKU)
		assert.Equal(t, i, got.Results[i].Position)
	}
	assert.Equal(t, "boom", got.Results[1].Error)
	assert.Equal(t, int64(13), got.Results[2].ProductID)
}

func TestRunRepositoryNotFound(t *testing.T) {
	repo := NewRunRepository(newTestDatabase(t).DB)

	_, err := repo.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunRepositoryListNewestFirst(t *testing.T) {
	repo := NewRunRepository(newTestDatabase(t).DB)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		started := base.Add(time.Duration(i) * time.Minute)
		run := models.NewSyncRun(models.SyncSourceWorker, started, started, []models.SyncOutcome{{Success: true, SKU: "A"}})
		require.NoError(t, repo.SaveRun(ctx, run))
		ids = append(ids, run.ID)
	}

	runs, total, err := repo.ListRuns(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)
	assert.Empty(t, runs[0].Results)

	runs, _, err = repo.ListRuns(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ids[0], runs[0].ID)
}
