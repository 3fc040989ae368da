// Package persistence stores the final report of every job it listens to.
package persistence

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-record/pkg/batch/listener"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// ReportPersistenceListener saves each job's final report to a JobReportRepository.
// A failed save is logged and does not change the job's outcome.
type ReportPersistenceListener struct {
	listener.NoOpJobListener
	repo repository.JobReportRepository
}

// NewReportPersistenceListener creates a listener saving to repo.
func NewReportPersistenceListener(repo repository.JobReportRepository) *ReportPersistenceListener {
	return &ReportPersistenceListener{repo: repo}
}

func (l *ReportPersistenceListener) AfterJob(ctx context.Context, report *model.JobReport) {
	// The job context may already be cancelled when the job was aborted.
	if err := l.repo.SaveJobReport(context.WithoutCancel(ctx), report); err != nil {
		logger.Errorf("ReportPersistenceListener: failed to save report of job '%s' (ID: %s): %v", report.JobName(), report.ExecutionID(), err)
		return
	}
	logger.Debugf("ReportPersistenceListener: saved report of job '%s' (ID: %s).", report.JobName(), report.ExecutionID())
}

var _ port.JobListener = (*ReportPersistenceListener)(nil)
