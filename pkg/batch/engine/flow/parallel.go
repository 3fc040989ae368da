package flow

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/executor"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// ParallelFlow submits jobs to a JobExecutor and waits for all of them.
type ParallelFlow struct {
	name     string
	executor port.JobExecutor
	jobs     []port.Job
}

var _ port.Job = (*ParallelFlow)(nil)

// NewParallelFlow creates a flow running jobs concurrently on e. Each job must own its
// reader, writer and stages.
func NewParallelFlow(name string, e port.JobExecutor, jobs ...port.Job) *ParallelFlow {
	return &ParallelFlow{name: name, executor: e, jobs: jobs}
}

// Name returns the flow's name.
func (f *ParallelFlow) Name() string { return f.name }

// Execute runs the jobs and returns their reports in completion order. Job failures
// are reported, not returned: the error is only set when the executor rejects a job,
// ctx ends before every job has finished, or a job could not be started.
func (f *ParallelFlow) Execute(ctx context.Context) ([]*model.JobReport, error) {
	var errs *multierror.Error
	futures := make([]port.JobFuture, 0, len(f.jobs))
	for _, job := range f.jobs {
		future, err := f.executor.Submit(ctx, job)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("submitting job '%s': %w", job.Name(), err))
			continue
		}
		futures = append(futures, future)
	}

	reports := make([]*model.JobReport, 0, len(futures))
	for result := range executor.InCompletionOrder(ctx, futures...) {
		if result.Err != nil {
			errs = multierror.Append(errs, result.Err)
			continue
		}
		reports = append(reports, result.Report)
	}
	if len(reports)+countErrors(errs) < len(f.jobs) {
		errs = multierror.Append(errs, fmt.Errorf("parallel flow '%s': %w", f.name, context.Cause(ctx)))
	}
	logger.Debugf("ParallelFlow '%s': %d of %d job(s) reported.", f.name, len(reports), len(f.jobs))
	return reports, errs.ErrorOrNil()
}

// Call runs the jobs and merges their reports: counters are summed and the worst
// status wins.
func (f *ParallelFlow) Call(ctx context.Context) *model.JobReport {
	reports, err := f.Execute(ctx)
	if err != nil {
		return failedReport(f.name, err)
	}
	return model.MergeReports(f.name, reports...)
}

func countErrors(errs *multierror.Error) int {
	if errs == nil {
		return 0
	}
	return len(errs.Errors)
}
