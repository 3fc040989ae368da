package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
	gormadapter "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm/sqlite"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	infrarepo "github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository"
	"github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/inmemory"
	sqlrepo "github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/sql"
)

func TestNewJobReportRepository_DefaultsToInMemory(t *testing.T) {
	repo, err := infrarepo.NewJobReportRepository(infrarepo.Params{Cfg: config.NewConfig()})
	require.NoError(t, err)
	assert.IsType(t, &inmemory.InMemoryJobReportRepository{}, repo)
}

func TestNewJobReportRepository_SQLWithAutoMigrate(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Surfin.Infrastructure.ReportRepositoryType = "sql"
	cfg.Surfin.Infrastructure.AutoMigrate = true
	cfg.Surfin.AdapterConfigs = map[string]interface{}{
		"metadata": map[string]interface{}{"type": "sqlite", "database": filepath.Join(t.TempDir(), "meta.db")},
	}
	resolver := gormadapter.NewGormDBConnectionResolver(gormadapter.ResolverParams{
		DBProviders: []database.DBProvider{sqlite.NewProvider()},
		Cfg:         cfg,
	})
	defer resolver.CloseAll()

	repo, err := infrarepo.NewJobReportRepository(infrarepo.Params{Cfg: cfg, Resolver: resolver})
	require.NoError(t, err)
	require.IsType(t, &sqlrepo.SQLJobReportRepository{}, repo)

	ctx := context.Background()
	params := model.NewJobParameters()
	require.NoError(t, repo.SaveJobReport(ctx, model.NewJobReport("id-1", params, model.JobMetrics{}, model.StatusCompleted, nil)))
	got, err := repo.FindJobReportByID(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultJobName, got.JobName())
}

func TestNewJobReportRepository_Errors(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Surfin.Infrastructure.ReportRepositoryType = "sql"
	_, err := infrarepo.NewJobReportRepository(infrarepo.Params{Cfg: cfg})
	assert.Error(t, err)

	cfg.Surfin.Infrastructure.ReportRepositoryType = "mongo"
	_, err = infrarepo.NewJobReportRepository(infrarepo.Params{Cfg: cfg})
	assert.ErrorContains(t, err, "mongo")
}
