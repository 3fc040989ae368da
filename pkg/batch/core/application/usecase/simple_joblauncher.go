package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	exception "github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// ErrJobNotRunning is returned when stopping an execution that is unknown or already finished.
var ErrJobNotRunning = errors.New("job execution is not running")

func init() {
	exception.RegisterErrorType("ErrJobNotRunning", ErrJobNotRunning)
}

// SimpleJobLauncher implements JobLauncher on top of a port.JobExecutor. Every
// submitted execution runs under its own cancellable context until its future resolves.
type SimpleJobLauncher struct {
	jobFactory *support.JobFactory
	executor   port.JobExecutor
	// activeJobCancellations holds the cancel functions of running executions.
	activeJobCancellations map[string]context.CancelFunc
	mu                     sync.Mutex
}

// NewSimpleJobLauncher creates a new SimpleJobLauncher.
func NewSimpleJobLauncher(factory *support.JobFactory, executor port.JobExecutor) *SimpleJobLauncher {
	return &SimpleJobLauncher{
		jobFactory:             factory,
		executor:               executor,
		activeJobCancellations: make(map[string]context.CancelFunc),
	}
}

// Launch builds a new job from the JSL definition jobID and submits it.
func (l *SimpleJobLauncher) Launch(ctx context.Context, jobID string) (*JobExecution, error) {
	job, err := l.jobFactory.CreateJob(jobID)
	if err != nil {
		return nil, err
	}
	return l.Submit(ctx, job)
}

// Submit hands job to the executor under a context that Stop can cancel.
func (l *SimpleJobLauncher) Submit(ctx context.Context, job port.Job) (*JobExecution, error) {
	executionID := executionIDOf(job)
	jobCtx, cancel := context.WithCancel(ctx)

	l.registerCancelFunc(executionID, cancel)
	future, err := l.executor.Submit(jobCtx, job)
	if err != nil {
		l.unregisterCancelFunc(executionID)
		cancel()
		return nil, err
	}
	go func() {
		<-future.Done()
		l.unregisterCancelFunc(executionID)
		cancel()
	}()

	logger.Infof("Job '%s' launched. Execution ID: %s", job.Name(), executionID)
	return &JobExecution{ExecutionID: executionID, JobName: job.Name(), Future: future}, nil
}

// executionIDOf returns the job's own execution ID when it has one, or a new ID for flows.
func executionIDOf(job port.Job) string {
	if j, ok := job.(interface{ ExecutionID() string }); ok {
		return j.ExecutionID()
	}
	return model.NewID()
}

func (l *SimpleJobLauncher) registerCancelFunc(executionID string, cancelFunc context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activeJobCancellations[executionID] = cancelFunc
	logger.Debugf("Registered CancelFunc for execution (ID: %s).", executionID)
}

func (l *SimpleJobLauncher) unregisterCancelFunc(executionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.activeJobCancellations[executionID]; ok {
		delete(l.activeJobCancellations, executionID)
		logger.Debugf("Unregistered CancelFunc for execution (ID: %s).", executionID)
	}
}

// GetCancelFunc retrieves the cancel function of a running execution.
func (l *SimpleJobLauncher) GetCancelFunc(executionID string) (context.CancelFunc, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cancelFunc, ok := l.activeJobCancellations[executionID]
	return cancelFunc, ok
}

// runningIDs returns the IDs of the executions not finished yet, sorted.
func (l *SimpleJobLauncher) runningIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.activeJobCancellations))
	for id := range l.activeJobCancellations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var _ JobLauncher = (*SimpleJobLauncher)(nil)
