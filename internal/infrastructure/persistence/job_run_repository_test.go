package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRunRepository_SaveAndFinalize(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormJobRunRepository(db)
	ctx := context.Background()

	run := billing.NewJobRun(billing.JobTypeRentCycleGeneration, 6, 2024, testDate(2024, time.June, 1))
	require.NoError(t, repo.Save(ctx, run))

	found, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.JobRunStatusStarted, found.Status)

	run.Complete(40, 38, 2, []string{"tenancy x: insert failed"}, testDate(2024, time.June, 1).Add(time.Minute))
	require.NoError(t, repo.Save(ctx, run))

	found, err = repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.JobRunStatusCompleted, found.Status)
	assert.Equal(t, 40, found.Processed)
	assert.Equal(t, 38, found.Created)
	assert.Equal(t, 2, found.Failed)
	assert.Equal(t, "tenancy x: insert failed", found.ErrorMessage)
	require.NotNil(t, found.FinishedAt)
}

func TestJobRunRepository_ListByType(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormJobRunRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := billing.NewJobRun(billing.JobTypeRentCycleGeneration, 6, 2024, testDate(2024, time.June, 1).Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Save(ctx, run))
	}
	sweep := billing.NewJobRun(billing.JobTypeOverdueSweep, 0, 0, testDate(2024, time.June, 2))
	require.NoError(t, repo.Save(ctx, sweep))

	runs, err := repo.ListByType(ctx, billing.JobTypeRentCycleGeneration, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt), "newest first")

	sweeps, err := repo.ListByType(ctx, billing.JobTypeOverdueSweep, 10)
	require.NoError(t, err)
	assert.Len(t, sweeps, 1)
}
