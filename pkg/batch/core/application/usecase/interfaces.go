package usecase

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// JobExecution is a job handed to the executor.
type JobExecution struct {
	// ExecutionID identifies the run. For record jobs it is the ID reported in the JobReport.
	ExecutionID string
	// JobName is the name of the submitted job or flow.
	JobName string
	// Future resolves with the job's report.
	Future port.JobFuture
}

// JobLauncher starts jobs on the application's executor.
type JobLauncher interface {
	// Launch builds a new job from the JSL definition jobID and submits it.
	// The error describes a failure to launch, not a failure of the job itself.
	Launch(ctx context.Context, jobID string) (*JobExecution, error)

	// Submit hands an already built job or flow to the executor.
	Submit(ctx context.Context, job port.Job) (*JobExecution, error)
}

// JobOperator controls the jobs started by the launcher.
type JobOperator interface {
	// Stop cancels the context of a running execution. The job ends ABORTED.
	Stop(executionID string) error

	// Running returns the IDs of the executions that have not finished yet.
	Running() []string

	// RunAll launches the given JSL jobs, composed according to flow ("parallel" or
	// "sequential"), and waits for their reports.
	RunAll(ctx context.Context, flow string, jobIDs ...string) ([]*model.JobReport, error)

	// GetJobNames returns the IDs of the known JSL definitions.
	GetJobNames() []string
}

// JobExplorer queries the reports of finished jobs.
type JobExplorer interface {
	// GetJobReport retrieves the report of one execution.
	GetJobReport(ctx context.Context, executionID string) (*model.JobReport, error)

	// GetJobReports retrieves every report of a job, latest first.
	GetJobReports(ctx context.Context, jobName string) ([]*model.JobReport, error)

	// GetLastJobReport retrieves the latest report of a job.
	GetLastJobReport(ctx context.Context, jobName string) (*model.JobReport, error)
}
