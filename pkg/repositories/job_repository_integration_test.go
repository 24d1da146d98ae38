package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixtureforge/forge-engine/pkg/apperrors"
	"github.com/fixtureforge/forge-engine/pkg/models"
	"github.com/fixtureforge/forge-engine/pkg/testhelpers"
)

func TestJobRepository_CreateAndGet(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewJobRepository(db.DB)
	ctx := context.Background()

	job := &models.GenerationJob{
		SourceFilename: "customer.json",
		RecordCount:    5,
		DocumentCount:  1,
		FileCount:      5,
		ArchiveName:    "generated_data_test.zip",
		Status:         models.JobStatusSuccess,
	}

	require.NoError(t, repo.Create(ctx, job))
	assert.NotEqual(t, uuid.Nil, job.ID, "Create must assign an ID")
	assert.False(t, job.CreatedAt.IsZero(), "Create must assign a creation time")

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "customer.json", got.SourceFilename)
	assert.Equal(t, 5, got.RecordCount)
	assert.Equal(t, 1, got.DocumentCount)
	assert.Equal(t, 5, got.FileCount)
	assert.Equal(t, models.JobStatusSuccess, got.Status)
	assert.Empty(t, got.Error)
}

func TestJobRepository_GetByID_NotFound(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewJobRepository(db.DB)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestJobRepository_ListRecent(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	repo := NewJobRepository(db.DB)
	ctx := context.Background()

	older := &models.GenerationJob{
		SourceFilename: "older.json",
		RecordCount:    1,
		Status:         models.JobStatusFailed,
		Error:          "invalid document format",
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	newer := &models.GenerationJob{
		SourceFilename: "newer.json",
		RecordCount:    2,
		Status:         models.JobStatusSuccess,
	}

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	jobs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(jobs), 2)

	// newest first
	var olderIdx, newerIdx = -1, -1
	for i, job := range jobs {
		switch job.ID {
		case older.ID:
			olderIdx = i
		case newer.ID:
			newerIdx = i
		}
	}
	require.NotEqual(t, -1, olderIdx)
	require.NotEqual(t, -1, newerIdx)
	assert.Less(t, newerIdx, olderIdx, "newer job must sort before older job")
}
