package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// emptyReport is returned by flows that ran nothing.
func emptyReport(name string) *model.JobReport {
	now := time.Now()
	params := model.NewJobParameters()
	params.Name = name
	return model.NewJobReport(model.NewID(), params, model.JobMetrics{StartTime: now, EndTime: now}, model.StatusCompleted, nil)
}

// failedReport describes a flow that could not run its jobs.
func failedReport(name string, err error) *model.JobReport {
	status := model.StatusFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = model.StatusAborted
		err = errors.Join(exception.ErrJobAborted, err)
	}
	now := time.Now()
	params := model.NewJobParameters()
	params.Name = name
	return model.NewJobReport(model.NewID(), params, model.JobMetrics{StartTime: now, EndTime: now}, status, exception.NewBatchError("flow", fmt.Sprintf("flow '%s' failed", name), err, false, false))
}

// SequentialFlow runs jobs one after another and stops at the first job that does
// not complete.
type SequentialFlow struct {
	name string
	jobs []port.Job
}

var _ port.Job = (*SequentialFlow)(nil)

// NewSequentialFlow creates a flow running jobs in the given order.
func NewSequentialFlow(name string, jobs ...port.Job) *SequentialFlow {
	return &SequentialFlow{name: name, jobs: jobs}
}

// Name returns the flow's name.
func (f *SequentialFlow) Name() string { return f.name }

// Call runs the jobs in order. It returns the report of the first FAILED or ABORTED
// job, or the report of the last job if all completed. A context cancelled between
// two jobs yields an ABORTED report.
func (f *SequentialFlow) Call(ctx context.Context) *model.JobReport {
	report := emptyReport(f.name)
	for i, job := range f.jobs {
		if err := context.Cause(ctx); err != nil {
			logger.Warnf("SequentialFlow '%s': cancelled before job %d of %d.", f.name, i+1, len(f.jobs))
			return failedReport(f.name, err)
		}
		report = job.Call(ctx)
		if report.Status() != model.StatusCompleted {
			logger.Warnf("SequentialFlow '%s': job '%s' ended with %s, skipping %d remaining job(s).",
				f.name, job.Name(), report.Status(), len(f.jobs)-i-1)
			return report
		}
	}
	return report
}

// ConditionalFlow runs a first job, then one of two branches depending on a predicate
// over its report.
type ConditionalFlow struct {
	name      string
	first     port.Job
	predicate ReportPredicate
	then      port.Job
	otherwise port.Job
}

var _ port.Job = (*ConditionalFlow)(nil)

// NewConditionalFlow creates a flow that runs then when predicate holds for the
// report of first.
func NewConditionalFlow(name string, first port.Job, predicate ReportPredicate, then port.Job) *ConditionalFlow {
	return &ConditionalFlow{name: name, first: first, predicate: predicate, then: then}
}

// Otherwise sets the job run when the predicate does not hold.
func (f *ConditionalFlow) Otherwise(job port.Job) *ConditionalFlow {
	f.otherwise = job
	return f
}

// Name returns the flow's name.
func (f *ConditionalFlow) Name() string { return f.name }

// Call returns the report of the branch that ran, or the first job's report if no
// branch ran.
func (f *ConditionalFlow) Call(ctx context.Context) *model.JobReport {
	report := f.first.Call(ctx)
	if report.Status() == model.StatusAborted {
		return report
	}
	branch := f.otherwise
	if f.predicate(report) {
		branch = f.then
	}
	if branch == nil {
		logger.Debugf("ConditionalFlow '%s': no branch for the report of '%s'.", f.name, f.first.Name())
		return report
	}
	logger.Debugf("ConditionalFlow '%s': running '%s'.", f.name, branch.Name())
	return branch.Call(ctx)
}

// JobSupplier returns a fresh job for each iteration of a RepeatFlow. Jobs run once,
// so the same instance cannot be reused.
type JobSupplier func() (port.Job, error)

// RepeatFlow runs jobs supplied by a JobSupplier while a predicate over the last
// report holds. The first job always runs.
type RepeatFlow struct {
	name          string
	supplier      JobSupplier
	predicate     ReportPredicate
	maxIterations int
}

var _ port.Job = (*RepeatFlow)(nil)

// NewRepeatFlow creates a flow that repeats while predicate holds.
func NewRepeatFlow(name string, supplier JobSupplier, predicate ReportPredicate) *RepeatFlow {
	return &RepeatFlow{name: name, supplier: supplier, predicate: predicate}
}

// MaxIterations caps the number of runs. Zero means no cap.
func (f *RepeatFlow) MaxIterations(n int) *RepeatFlow {
	f.maxIterations = n
	return f
}

// Name returns the flow's name.
func (f *RepeatFlow) Name() string { return f.name }

// Call returns the report of the last run. A supplier error ends the flow with a
// FAILED report.
func (f *RepeatFlow) Call(ctx context.Context) *model.JobReport {
	var report *model.JobReport
	for iteration := 1; ; iteration++ {
		job, err := f.supplier()
		if err != nil {
			return failedReport(f.name, fmt.Errorf("iteration %d: %w", iteration, err))
		}
		report = job.Call(ctx)
		logger.Debugf("RepeatFlow '%s': iteration %d ended with %s.", f.name, iteration, report.Status())

		if report.Status() == model.StatusAborted || !f.predicate(report) {
			return report
		}
		if f.maxIterations > 0 && iteration >= f.maxIterations {
			logger.Infof("RepeatFlow '%s': stopping after %d iterations.", f.name, iteration)
			return report
		}
		if ctx.Err() != nil {
			return report
		}
	}
}
