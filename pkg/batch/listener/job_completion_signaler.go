package listener

import (
	"context"
	"sync"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// JobCompletionSignaler is a JobListener that closes a channel when the job ends,
// whatever its status. It lets a caller that did not start the job wait for it.
type JobCompletionSignaler struct {
	NoOpJobListener
	done   chan struct{}
	once   sync.Once
	report *model.JobReport
}

// NewJobCompletionSignaler creates a new instance of JobCompletionSignaler.
func NewJobCompletionSignaler() *JobCompletionSignaler {
	return &JobCompletionSignaler{done: make(chan struct{})}
}

// Done is closed once the job has finished.
func (l *JobCompletionSignaler) Done() <-chan struct{} { return l.done }

// Report returns the job's report. It is nil until Done is closed.
func (l *JobCompletionSignaler) Report() *model.JobReport {
	select {
	case <-l.done:
		return l.report
	default:
		return nil
	}
}

// AfterJob stores the report and closes the channel. Later calls are ignored.
func (l *JobCompletionSignaler) AfterJob(ctx context.Context, report *model.JobReport) {
	l.once.Do(func() {
		logger.Debugf("JobCompletionSignaler: job '%s' finished with status %s.", report.JobName(), report.Status())
		l.report = report
		close(l.done)
	})
}

var _ port.JobListener = (*JobCompletionSignaler)(nil)
