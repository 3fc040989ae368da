package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// NoOpMetricRecorder is a MetricRecorder that does nothing.
// It is used when monitoring is disabled and in tests.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

func (r *NoOpMetricRecorder) RecordJobStart(ctx context.Context, parameters model.JobParameters) {}
func (r *NoOpMetricRecorder) RecordJobEnd(ctx context.Context, report *model.JobReport)          {}
func (r *NoOpMetricRecorder) RecordRecordRead(ctx context.Context, jobName string)               {}
func (r *NoOpMetricRecorder) RecordRecordFilter(ctx context.Context, jobName string)             {}
func (r *NoOpMetricRecorder) RecordRecordError(ctx context.Context, jobName string, reason string) {
}
func (r *NoOpMetricRecorder) RecordBatchWrite(ctx context.Context, jobName string, count int, duration time.Duration) {
}
func (r *NoOpMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// NoOpTracer is a Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

// StartJobSpan returns ctx unchanged.
func (t *NoOpTracer) StartJobSpan(ctx context.Context, parameters model.JobParameters) (context.Context, func()) {
	return ctx, func() {}
}

// StartBatchSpan returns ctx unchanged.
func (t *NoOpTracer) StartBatchSpan(ctx context.Context, jobName string, batchNumber int64) (context.Context, func()) {
	return ctx, func() {}
}

func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
