package sql_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	sqlrepo "github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/sql"
)

func openMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, sqlrepo.Migrate(sqlDB, "sqlite"))
	// A second run finds nothing to do.
	require.NoError(t, sqlrepo.Migrate(sqlDB, "sqlite"))
	return db
}

func newReport(id, job string, start time.Time, status model.JobStatus, lastErr error) *model.JobReport {
	params := model.JobParameters{Name: job, BatchSize: 5, ErrorThreshold: 2, MonitoringEnabled: true}
	metrics := model.JobMetrics{
		ReadCount:   10,
		WriteCount:  7,
		FilterCount: 1,
		ErrorCount:  2,
		StartTime:   start,
		EndTime:     start.Add(1500 * time.Millisecond),
	}
	return model.NewJobReport(id, params, metrics, status, lastErr)
}

func TestSQLJobReportRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := sqlrepo.NewSQLJobReportRepository(openMigratedDB(t))
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	saved := newReport("exec-1", "import", start, model.StatusFailed, errors.New("error threshold exceeded"))
	require.NoError(t, repo.SaveJobReport(ctx, saved))

	got, err := repo.FindJobReportByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, saved.Parameters(), got.Parameters())
	assert.Equal(t, model.StatusFailed, got.Status())
	assert.Equal(t, int64(10), got.Metrics().ReadCount)
	assert.Equal(t, int64(7), got.Metrics().WriteCount)
	assert.Equal(t, int64(1), got.Metrics().FilterCount)
	assert.Equal(t, int64(2), got.Metrics().ErrorCount)
	assert.True(t, start.Equal(got.Metrics().StartTime))
	assert.Equal(t, 1500*time.Millisecond, got.Metrics().Duration())
	require.Error(t, got.LastError())
	assert.Equal(t, "error threshold exceeded", got.LastError().Error())
}

func TestSQLJobReportRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	repo := sqlrepo.NewSQLJobReportRepository(openMigratedDB(t))
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveJobReport(ctx, newReport("exec-1", "import", start, model.StatusFailed, errors.New("x"))))
	require.NoError(t, repo.SaveJobReport(ctx, newReport("exec-1", "import", start, model.StatusCompleted, nil)))

	got, err := repo.FindJobReportByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status())
	assert.NoError(t, got.LastError())
}

func TestSQLJobReportRepository_QueriesByJobName(t *testing.T) {
	ctx := context.Background()
	repo := sqlrepo.NewSQLJobReportRepository(openMigratedDB(t))
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveJobReport(ctx, newReport("a", "import", t0, model.StatusCompleted, nil)))
	require.NoError(t, repo.SaveJobReport(ctx, newReport("b", "import", t0.Add(2*time.Hour), model.StatusAborted, context.Canceled)))
	require.NoError(t, repo.SaveJobReport(ctx, newReport("c", "import", t0.Add(time.Hour), model.StatusCompleted, nil)))
	require.NoError(t, repo.SaveJobReport(ctx, newReport("d", "export", t0.Add(3*time.Hour), model.StatusCompleted, nil)))

	reports, err := repo.FindJobReportsByJobName(ctx, "import")
	require.NoError(t, err)
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ExecutionID()
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	latest, err := repo.FindLatestJobReport(ctx, "import")
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ExecutionID())
	assert.Equal(t, model.StatusAborted, latest.Status())

	_, err = repo.FindLatestJobReport(ctx, "unknown")
	assert.ErrorIs(t, err, repository.ErrJobReportNotFound)
	_, err = repo.FindJobReportByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrJobReportNotFound)
}

func TestMigrate_UnsupportedType(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "x.db")), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Error(t, sqlrepo.Migrate(sqlDB, "oracle"))
}
