package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

// ErrJobReportNotFound is the error returned when no report matches a query.
var ErrJobReportNotFound = errors.New("job report not found")

func init() {
	// Register the error type in the registry upon framework startup
	exception.RegisterErrorType("ErrJobReportNotFound", ErrJobReportNotFound)
}

// JobReportRepository persists the final reports of job runs.
type JobReportRepository interface {
	// SaveJobReport stores a report. Saving a report whose execution ID is already
	// stored replaces it.
	SaveJobReport(ctx context.Context, report *model.JobReport) error

	// FindJobReportByID returns the report of one execution, or ErrJobReportNotFound.
	FindJobReportByID(ctx context.Context, executionID string) (*model.JobReport, error)

	// FindJobReportsByJobName returns the reports of a job, latest start time first.
	FindJobReportsByJobName(ctx context.Context, jobName string) ([]*model.JobReport, error)

	// FindLatestJobReport returns the report with the latest start time for a job,
	// or ErrJobReportNotFound.
	FindLatestJobReport(ctx context.Context, jobName string) (*model.JobReport, error)

	// Close releases resources (such as database connections) used by the repository.
	Close() error
}
