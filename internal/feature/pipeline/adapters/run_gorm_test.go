package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	mdentity "stock_pipeline/internal/feature/marketdata/domain/entity"
	"stock_pipeline/internal/feature/pipeline/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	err = db.AutoMigrate(&RunModel{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func newRun(t *testing.T, from, to string, started time.Time) *entity.Run {
	t.Helper()
	r, err := mdentity.ParseDateRange(from, to)
	require.NoError(t, err)
	return entity.NewRun(r, started)
}

func TestNewRunRepository(t *testing.T) {
	db := setupTestDB(t)

	repo := NewRunRepository(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestRunGorm_SaveUpsertsByID(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewRunRepository(db)
	ctx := context.Background()
	started := time.Date(2023, 4, 3, 6, 0, 0, 0, time.UTC)

	run := newRun(t, "2023-03-27", "2023-04-03", started)
	require.NoError(t, repo.Save(ctx, run))

	run.Status = entity.RunSucceeded
	run.FinishedAt = started.Add(4*time.Minute + 12*time.Second)
	run.PriceRecords = 25
	run.SentimentRecords = 311
	run.PriceSkips = 1
	run.APICalls = 10
	run.StagedObjects = []string{"stocks_df_2023-03-27_2023-04-03.csv", "transform_job.py"}
	run.SubmitMode = "gcloud"
	run.Message = "Job [abc] submitted."
	require.NoError(t, repo.Save(ctx, run))

	var count int64
	require.NoError(t, db.Model(&RunModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, run.ID, got[0].ID)
	assert.Equal(t, entity.RunSucceeded, got[0].Status)
	assert.Equal(t, run.Range, got[0].Range)
	assert.Equal(t, 25, got[0].PriceRecords)
	assert.Equal(t, 311, got[0].SentimentRecords)
	assert.Equal(t, run.StagedObjects, got[0].StagedObjects)
	assert.Equal(t, "Job [abc] submitted.", got[0].Message)
	assert.True(t, run.FinishedAt.Equal(got[0].FinishedAt))
}

func TestRunGorm_ListRecent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewRunRepository(db)
	ctx := context.Background()
	base := time.Date(2023, 4, 3, 6, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, newRun(t, "2023-03-27", "2023-04-03", base.Add(time.Duration(i)*time.Hour))))
	}

	t.Run("newest first with limit", func(t *testing.T) {
		got, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].StartedAt.After(got[1].StartedAt))
		assert.True(t, got[0].FinishedAt.IsZero())
		assert.Nil(t, got[0].StagedObjects)
	})

	t.Run("no limit returns all", func(t *testing.T) {
		got, err := repo.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})
}

func TestRunGorm_ListRecent_Empty(t *testing.T) {
	t.Parallel()

	repo := NewRunRepository(setupTestDB(t))
	got, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
