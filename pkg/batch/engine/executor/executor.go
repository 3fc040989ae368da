// Package executor runs jobs concurrently on a bounded number of goroutines and
// hands out futures for their reports.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// ErrExecutorShutdown is returned by Submit once Shutdown has been called.
var ErrExecutorShutdown = errors.New("job executor is shut down")

// JobExecutor runs submitted jobs concurrently, at most MaxConcurrency at a time.
// Each job runs synchronously in its own goroutine; jobs must not share readers,
// writers or stages.
type JobExecutor struct {
	sem            *semaphore.Weighted
	maxConcurrency int

	mu       sync.Mutex
	shutdown bool
	inFlight sync.WaitGroup
	running  int
}

var _ port.JobExecutor = (*JobExecutor)(nil)

// NewJobExecutor creates an executor running at most maxConcurrency jobs at once.
// Values below 1 are treated as 1.
func NewJobExecutor(maxConcurrency int) *JobExecutor {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &JobExecutor{
		sem:            semaphore.NewWeighted(int64(maxConcurrency)),
		maxConcurrency: maxConcurrency,
	}
}

// MaxConcurrency returns the number of jobs that may run at the same time.
func (e *JobExecutor) MaxConcurrency() int { return e.maxConcurrency }

// Running returns the number of jobs currently executing.
func (e *JobExecutor) Running() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Submit schedules job and returns a future for its report. The job starts as soon
// as a slot is free. If ctx is done before that, the job never runs and the future
// resolves with ctx's error.
//
// Parameters:
//
//	ctx: Bounds the wait for a free slot and is passed to job.Call.
//	job: The job to run.
//
// Returns:
//
//	port.JobFuture: The pending report.
//	error: ErrExecutorShutdown if the executor no longer accepts jobs.
func (e *JobExecutor) Submit(ctx context.Context, job port.Job) (port.JobFuture, error) {
	if job == nil {
		return nil, exception.NewBatchError("executor", "cannot submit a nil job", exception.ErrJobMisconfigured, false, false)
	}
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return nil, ErrExecutorShutdown
	}
	e.inFlight.Add(1)
	e.mu.Unlock()

	future := newJobFuture(job.Name())
	go func() {
		defer e.inFlight.Done()
		if err := e.sem.Acquire(ctx, 1); err != nil {
			logger.Warnf("Job '%s' was not started: %v", job.Name(), err)
			future.fail(fmt.Errorf("job '%s' was not started: %w", job.Name(), err))
			return
		}
		defer e.sem.Release(1)

		e.setRunning(1)
		defer e.setRunning(-1)
		future.complete(callJob(ctx, job))
	}()
	return future, nil
}

// SubmitAll submits every job. On error, the jobs already submitted keep running and
// their futures are returned alongside the error.
func (e *JobExecutor) SubmitAll(ctx context.Context, jobs ...port.Job) ([]port.JobFuture, error) {
	futures := make([]port.JobFuture, 0, len(jobs))
	for _, job := range jobs {
		f, err := e.Submit(ctx, job)
		if err != nil {
			return futures, err
		}
		futures = append(futures, f)
	}
	return futures, nil
}

// Execute submits every job and waits for all of them. Reports are returned in
// submission order.
func (e *JobExecutor) Execute(ctx context.Context, jobs ...port.Job) ([]*model.JobReport, error) {
	futures, err := e.SubmitAll(ctx, jobs...)
	if err != nil {
		return nil, err
	}
	return AwaitAll(ctx, futures...)
}

// Shutdown stops accepting jobs. Jobs already submitted keep running.
func (e *JobExecutor) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.shutdown {
		logger.Debugf("JobExecutor shutting down; %d job(s) running.", e.running)
	}
	e.shutdown = true
}

// IsShutdown reports whether Shutdown has been called.
func (e *JobExecutor) IsShutdown() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdown
}

// AwaitTermination waits until every submitted job has finished, or ctx is done.
// It is normally called after Shutdown.
func (e *JobExecutor) AwaitTermination(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

func (e *JobExecutor) setRunning(delta int) {
	e.mu.Lock()
	e.running += delta
	e.mu.Unlock()
}

// callJob runs job, turning a panic into a FAILED report.
func callJob(ctx context.Context, job port.Job) (report *model.JobReport) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Job '%s' panicked: %v\n%s", job.Name(), r, debug.Stack())
			now := time.Now()
			params := model.NewJobParameters()
			params.Name = job.Name()
			err := exception.NewBatchErrorf("executor", "job '%s' panicked: %v", job.Name(), r)
			report = model.NewJobReport(model.NewID(), params, model.JobMetrics{StartTime: now, EndTime: now}, model.StatusFailed, err)
		}
	}()
	return job.Call(ctx)
}
