package sql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

// SQLJobReportRepository implements repository.JobReportRepository on a GORM connection.
// The schema is created by Migrate.
type SQLJobReportRepository struct {
	db *gorm.DB
}

// NewSQLJobReportRepository creates a new instance of SQLJobReportRepository.
//
// Parameters:
//
//	db: The GORM connection holding the batch_job_report table.
//
// Returns:
//
//	A new SQLJobReportRepository.
func NewSQLJobReportRepository(db *gorm.DB) *SQLJobReportRepository {
	return &SQLJobReportRepository{db: db}
}

// SaveJobReport inserts the report, or replaces the row with the same execution ID.
func (r *SQLJobReportRepository) SaveJobReport(ctx context.Context, report *model.JobReport) error {
	const op = "SQLJobReportRepository.SaveJobReport"
	entity := fromDomainJobReport(report)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(entity).Error
	if err != nil {
		return exception.NewBatchError(op, fmt.Sprintf("failed to save JobReport (ID: %s)", report.ExecutionID()), err, false, true)
	}
	return nil
}

func (r *SQLJobReportRepository) FindJobReportByID(ctx context.Context, executionID string) (*model.JobReport, error) {
	const op = "SQLJobReportRepository.FindJobReportByID"
	var entity JobReportEntity
	err := r.db.WithContext(ctx).Where("execution_id = ?", executionID).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobReportNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(op, fmt.Sprintf("failed to find JobReport (ID: %s)", executionID), err, false, true)
	}
	return toDomainJobReport(&entity), nil
}

func (r *SQLJobReportRepository) FindJobReportsByJobName(ctx context.Context, jobName string) ([]*model.JobReport, error) {
	const op = "SQLJobReportRepository.FindJobReportsByJobName"
	var entities []JobReportEntity
	err := r.db.WithContext(ctx).
		Where("job_name = ?", jobName).
		Order("start_time DESC").
		Find(&entities).Error
	if err != nil {
		return nil, exception.NewBatchError(op, fmt.Sprintf("failed to find JobReports of job '%s'", jobName), err, false, true)
	}
	reports := make([]*model.JobReport, len(entities))
	for i := range entities {
		reports[i] = toDomainJobReport(&entities[i])
	}
	return reports, nil
}

func (r *SQLJobReportRepository) FindLatestJobReport(ctx context.Context, jobName string) (*model.JobReport, error) {
	const op = "SQLJobReportRepository.FindLatestJobReport"
	var entity JobReportEntity
	err := r.db.WithContext(ctx).
		Where("job_name = ?", jobName).
		Order("start_time DESC").
		Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrJobReportNotFound
	}
	if err != nil {
		return nil, exception.NewBatchError(op, fmt.Sprintf("failed to find latest JobReport of job '%s'", jobName), err, false, true)
	}
	return toDomainJobReport(&entity), nil
}

// Close does nothing: the connection belongs to the database resolver.
func (r *SQLJobReportRepository) Close() error {
	return nil
}

var _ repository.JobReportRepository = (*SQLJobReportRepository)(nil)
