package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/executor"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/flow"
	exception "github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// Flow modes accepted by RunAll.
const (
	FlowParallel   = "parallel"
	FlowSequential = "sequential"
)

// DefaultJobOperator implements JobOperator for the jobs of a SimpleJobLauncher.
type DefaultJobOperator struct {
	launcher   *SimpleJobLauncher
	jobFactory *support.JobFactory
}

// NewDefaultJobOperator creates a new DefaultJobOperator.
func NewDefaultJobOperator(launcher *SimpleJobLauncher, jobFactory *support.JobFactory) *DefaultJobOperator {
	return &DefaultJobOperator{launcher: launcher, jobFactory: jobFactory}
}

// Stop cancels a running execution.
func (o *DefaultJobOperator) Stop(executionID string) error {
	cancelFunc, ok := o.launcher.GetCancelFunc(executionID)
	if !ok {
		return fmt.Errorf("stop %s: %w", executionID, ErrJobNotRunning)
	}
	logger.Warnf("Stopping execution (ID: %s).", executionID)
	cancelFunc()
	return nil
}

// Running returns the IDs of the executions not finished yet.
func (o *DefaultJobOperator) Running() []string {
	return o.launcher.runningIDs()
}

// GetJobNames returns the IDs of the known JSL definitions.
func (o *DefaultJobOperator) GetJobNames() []string {
	return o.jobFactory.Definitions().IDs()
}

// RunAll launches the jobs and waits for them. In parallel mode every job is one
// execution and the reports follow jobIDs. In sequential mode the jobs form one
// SequentialFlow, which stops at the first job that does not complete, and the
// flow's single report is returned.
func (o *DefaultJobOperator) RunAll(ctx context.Context, mode string, jobIDs ...string) ([]*model.JobReport, error) {
	if len(jobIDs) == 0 {
		return nil, exception.NewBatchError("job_operator", "no jobs to run", exception.ErrJobMisconfigured, false, false)
	}

	jobs := make([]port.Job, 0, len(jobIDs))
	var errs []error
	for _, id := range jobIDs {
		job, err := o.jobFactory.CreateJob(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, job)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	switch mode {
	case FlowSequential:
		execution, err := o.launcher.Submit(ctx, flow.NewSequentialFlow(strings.Join(jobIDs, ">"), jobs...))
		if err != nil {
			return nil, err
		}
		report, err := execution.Future.Get(ctx)
		if err != nil {
			return nil, err
		}
		return []*model.JobReport{report}, nil
	case FlowParallel, "":
		futures := make([]port.JobFuture, 0, len(jobs))
		for _, job := range jobs {
			execution, err := o.launcher.Submit(ctx, job)
			if err != nil {
				return nil, err
			}
			futures = append(futures, execution.Future)
		}
		return executor.AwaitAll(ctx, futures...)
	default:
		return nil, exception.NewBatchError("job_operator", fmt.Sprintf("unknown flow mode '%s'", mode), exception.ErrJobMisconfigured, false, false)
	}
}

var _ JobOperator = (*DefaultJobOperator)(nil)
