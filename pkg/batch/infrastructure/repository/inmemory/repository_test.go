package inmemory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/inmemory"
)

func report(id, job string, start time.Time, status model.JobStatus) *model.JobReport {
	params := model.NewJobParameters()
	params.Name = job
	var lastErr error
	if status == model.StatusFailed {
		lastErr = errors.New("boom")
	}
	return model.NewJobReport(id, params, model.JobMetrics{ReadCount: 3, StartTime: start, EndTime: start.Add(time.Second)}, status, lastErr)
}

func TestInMemoryJobReportRepository(t *testing.T) {
	ctx := context.Background()
	repo := inmemory.NewInMemoryJobReportRepository()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveJobReport(ctx, report("a", "import", t0, model.StatusCompleted)))
	require.NoError(t, repo.SaveJobReport(ctx, report("b", "import", t0.Add(time.Hour), model.StatusFailed)))
	require.NoError(t, repo.SaveJobReport(ctx, report("c", "export", t0, model.StatusCompleted)))

	got, err := repo.FindJobReportByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.Status())

	reports, err := repo.FindJobReportsByJobName(ctx, "import")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "b", reports[0].ExecutionID())
	assert.Equal(t, "a", reports[1].ExecutionID())

	latest, err := repo.FindLatestJobReport(ctx, "import")
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ExecutionID())

	_, err = repo.FindJobReportByID(ctx, "zzz")
	assert.ErrorIs(t, err, repository.ErrJobReportNotFound)
	_, err = repo.FindLatestJobReport(ctx, "nothing")
	assert.ErrorIs(t, err, repository.ErrJobReportNotFound)

	assert.NoError(t, repo.Close())
}
