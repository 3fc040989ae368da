package metrics

import (
	"context"
	"sync"
	"time"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/listener"
)

// Duration names recorded by MetricsListener.
const (
	JobDurationName        = "job"
	BatchWriteDurationName = "batch.write"
)

// MetricsListener records job and batch-write durations through RecordDuration,
// tagged with the job name and outcome. It works whether or not the job's own
// monitoring is enabled, and may be shared by jobs running concurrently.
type MetricsListener struct {
	listener.NoOpJobListener
	recorder metrics.MetricRecorder
	writes   sync.Map // model.Header -> time.Time
}

// NewMetricsListener creates a listener reporting to recorder.
func NewMetricsListener(recorder metrics.MetricRecorder) *MetricsListener {
	return &MetricsListener{recorder: recorder}
}

func (l *MetricsListener) AfterJob(ctx context.Context, report *model.JobReport) {
	l.recorder.RecordDuration(ctx, JobDurationName, report.Metrics().Duration(), map[string]string{
		"job_name": report.JobName(),
		"status":   report.Status().String(),
	})
}

func (l *MetricsListener) BeforeRecordWriting(_ context.Context, batch model.Batch) {
	l.writes.Store(batch.Header(), time.Now())
}

func (l *MetricsListener) AfterRecordWriting(ctx context.Context, batch model.Batch) {
	l.recordWrite(ctx, batch, "success")
}

func (l *MetricsListener) OnRecordWritingException(ctx context.Context, batch model.Batch, _ error) {
	l.recordWrite(ctx, batch, "failure")
}

func (l *MetricsListener) recordWrite(ctx context.Context, batch model.Batch, outcome string) {
	started, ok := l.writes.LoadAndDelete(batch.Header())
	if !ok {
		return
	}
	l.recorder.RecordDuration(ctx, BatchWriteDurationName, time.Since(started.(time.Time)), map[string]string{
		"job_name": batch.Header().Source(),
		"outcome":  outcome,
	})
}

var (
	_ port.JobListener          = (*MetricsListener)(nil)
	_ port.RecordWriterListener = (*MetricsListener)(nil)
)
