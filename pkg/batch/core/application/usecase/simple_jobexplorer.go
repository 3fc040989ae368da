package usecase

import (
	"context"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	logger "github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// SimpleJobExplorer implements JobExplorer over a JobReportRepository.
type SimpleJobExplorer struct {
	repository repository.JobReportRepository
}

// NewSimpleJobExplorer creates a new SimpleJobExplorer.
func NewSimpleJobExplorer(repo repository.JobReportRepository) *SimpleJobExplorer {
	return &SimpleJobExplorer{repository: repo}
}

// GetJobReport retrieves the report of one execution.
func (e *SimpleJobExplorer) GetJobReport(ctx context.Context, executionID string) (*model.JobReport, error) {
	logger.Debugf("JobExplorer: fetching report (execution ID: %s).", executionID)
	return e.repository.FindJobReportByID(ctx, executionID)
}

// GetJobReports retrieves every report of a job, latest first.
func (e *SimpleJobExplorer) GetJobReports(ctx context.Context, jobName string) ([]*model.JobReport, error) {
	return e.repository.FindJobReportsByJobName(ctx, jobName)
}

// GetLastJobReport retrieves the latest report of a job.
func (e *SimpleJobExplorer) GetLastJobReport(ctx context.Context, jobName string) (*model.JobReport, error) {
	return e.repository.FindLatestJobReport(ctx, jobName)
}

var _ JobExplorer = (*SimpleJobExplorer)(nil)
