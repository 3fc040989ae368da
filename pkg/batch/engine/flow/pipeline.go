package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// PipelineReport holds the reports of a JobPipeline run.
type PipelineReport struct {
	Producer *model.JobReport
	Workers  []*model.JobReport
}

// Merged folds the producer and worker reports into one report named name.
func (r *PipelineReport) Merged(name string) *model.JobReport {
	reports := append([]*model.JobReport{r.Producer}, r.Workers...)
	return model.MergeReports(name, reports...)
}

// Status returns the worst status among all reports.
func (r *PipelineReport) Status() model.JobStatus {
	return r.Merged("pipeline").Status()
}

// JobPipeline runs a producer job and worker jobs concurrently. The producer writes
// into queues (typically with a dispatch writer) and the workers read from them.
// Termination flows through poison records: the producer's reader ends with a poison
// record, its writer broadcasts it, and every worker stops when it reads one.
//
// The executor must be able to run the producer and all workers at the same time;
// Run rejects an executor reporting a smaller MaxConcurrency.
type JobPipeline struct {
	name     string
	executor port.JobExecutor
	producer port.Job
	workers  []port.Job
}

var _ port.Job = (*JobPipeline)(nil)

// ErrInsufficientConcurrency is returned by Run when the executor cannot run every
// job of the pipeline at once.
var ErrInsufficientConcurrency = errors.New("executor cannot run the whole pipeline at once")

// concurrencyLimited is implemented by executors with a fixed number of slots.
type concurrencyLimited interface {
	MaxConcurrency() int
}

// NewJobPipeline creates a pipeline.
func NewJobPipeline(name string, e port.JobExecutor, producer port.Job, workers ...port.Job) *JobPipeline {
	return &JobPipeline{name: name, executor: e, producer: producer, workers: workers}
}

// Name returns the pipeline's name.
func (p *JobPipeline) Name() string { return p.name }

// Run starts the workers, then the producer, and waits for all of them. If the
// producer does not complete, the workers' context is cancelled so that they do not
// wait for a poison record that will never come.
func (p *JobPipeline) Run(ctx context.Context) (*PipelineReport, error) {
	if limited, ok := p.executor.(concurrencyLimited); ok {
		if need := len(p.workers) + 1; limited.MaxConcurrency() < need {
			return nil, fmt.Errorf("pipeline '%s' needs %d slots, executor has %d: %w", p.name, need, limited.MaxConcurrency(), ErrInsufficientConcurrency)
		}
	}

	workerCtx, cancelWorkers := context.WithCancelCause(ctx)
	defer cancelWorkers(nil)

	workerFutures := make([]port.JobFuture, 0, len(p.workers))
	for _, w := range p.workers {
		future, err := p.executor.Submit(workerCtx, w)
		if err != nil {
			cancelWorkers(err)
			return nil, fmt.Errorf("pipeline '%s': submitting worker '%s': %w", p.name, w.Name(), err)
		}
		workerFutures = append(workerFutures, future)
	}

	var errs *multierror.Error
	report := &PipelineReport{}
	producerFuture, err := p.executor.Submit(ctx, p.producer)
	if err == nil {
		report.Producer, err = producerFuture.Get(ctx)
	}
	workersCancelled := false
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("pipeline '%s': producer '%s': %w", p.name, p.producer.Name(), err))
		cancelWorkers(err)
	} else if report.Producer.Status() != model.StatusCompleted {
		logger.Warnf("Pipeline '%s': producer ended with %s, cancelling %d worker(s).", p.name, report.Producer.Status(), len(p.workers))
		cancelWorkers(fmt.Errorf("producer '%s' ended with %s", p.producer.Name(), report.Producer.Status()))
		workersCancelled = true
	}

	for i, future := range workerFutures {
		workerReport, err := future.Get(ctx)
		switch {
		case err == nil:
			report.Workers = append(report.Workers, workerReport)
		case workersCancelled:
			logger.Debugf("Pipeline '%s': worker '%s' was cancelled before it started.", p.name, p.workers[i].Name())
		default:
			errs = multierror.Append(errs, err)
		}
	}
	return report, errs.ErrorOrNil()
}

// Call runs the pipeline and returns the merged report.
func (p *JobPipeline) Call(ctx context.Context) *model.JobReport {
	report, err := p.Run(ctx)
	if err != nil {
		return failedReport(p.name, err)
	}
	return report.Merged(p.name)
}
