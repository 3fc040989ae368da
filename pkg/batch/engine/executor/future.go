package executor

import (
	"context"
	"fmt"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// jobFuture is resolved exactly once, with a report or with the error that kept the
// job from running.
type jobFuture struct {
	name   string
	done   chan struct{}
	report *model.JobReport
	err    error
}

func newJobFuture(name string) *jobFuture {
	return &jobFuture{name: name, done: make(chan struct{})}
}

func (f *jobFuture) complete(report *model.JobReport) {
	f.report = report
	close(f.done)
}

func (f *jobFuture) fail(err error) {
	f.err = err
	close(f.done)
}

// Done is closed once the future is resolved.
func (f *jobFuture) Done() <-chan struct{} { return f.done }

// Get waits for the report. A job that ran always yields a report, whatever its
// status; the error is only set when the job could not run or ctx ended first.
func (f *jobFuture) Get(ctx context.Context) (*model.JobReport, error) {
	select {
	case <-f.done:
		return f.report, f.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for job '%s': %w", f.name, ctx.Err())
	}
}

// AwaitAll waits for every future and returns the reports in the order of futures.
// It stops at the first error.
func AwaitAll(ctx context.Context, futures ...port.JobFuture) ([]*model.JobReport, error) {
	reports := make([]*model.JobReport, 0, len(futures))
	for _, f := range futures {
		report, err := f.Get(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Completed is one resolved future, as delivered by InCompletionOrder.
type Completed struct {
	Report *model.JobReport
	Err    error
}

// InCompletionOrder delivers the results of futures as they resolve. The channel is
// closed after the last one, or once ctx is done.
func InCompletionOrder(ctx context.Context, futures ...port.JobFuture) <-chan Completed {
	out := make(chan Completed, len(futures))
	remaining := make(chan struct{}, len(futures))
	for _, f := range futures {
		go func(f port.JobFuture) {
			defer func() { remaining <- struct{}{} }()
			select {
			case <-f.Done():
				report, err := f.Get(context.Background())
				out <- Completed{Report: report, Err: err}
			case <-ctx.Done():
			}
		}(f)
	}
	go func() {
		for range futures {
			<-remaining
		}
		close(out)
	}()
	return out
}
