// Package repository selects the JobReportRepository implementation from configuration.
package repository

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	domain "github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/inmemory"
	sqlrepo "github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/sql"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// Params are the dependencies of NewJobReportRepository.
type Params struct {
	fx.In
	Cfg      *config.Config
	Resolver database.DBConnectionResolver `optional:"true"`
}

// NewJobReportRepository returns the repository named by
// surfin.infrastructure.report_repository_type ("inmemory" or "sql").
func NewJobReportRepository(p Params) (domain.JobReportRepository, error) {
	infra := p.Cfg.Surfin.Infrastructure
	switch infra.ReportRepositoryType {
	case "", "inmemory":
		logger.Infof("Using in-memory job report repository.")
		return inmemory.NewInMemoryJobReportRepository(), nil
	case "sql":
		if p.Resolver == nil {
			return nil, fmt.Errorf("sql report repository requires a database connection resolver")
		}
		ctx := context.Background()
		db, err := p.Resolver.ResolveDB(ctx, infra.ReportRepositoryDBRef)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve report repository database '%s': %w", infra.ReportRepositoryDBRef, err)
		}
		if infra.AutoMigrate {
			dbType, err := p.Resolver.DatabaseType(infra.ReportRepositoryDBRef)
			if err != nil {
				return nil, err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			if err := sqlrepo.Migrate(sqlDB, dbType); err != nil {
				return nil, err
			}
		}
		logger.Infof("Using SQL job report repository on '%s'.", infra.ReportRepositoryDBRef)
		return sqlrepo.NewSQLJobReportRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown report repository type '%s'", infra.ReportRepositoryType)
	}
}

// Module provides the configured JobReportRepository.
var Module = fx.Provide(NewJobReportRepository)
