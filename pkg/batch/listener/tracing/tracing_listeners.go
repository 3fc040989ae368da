package tracing

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
)

// Event names added to the job and batch spans.
const (
	EventBatchProcessed     = "batch.processed"
	EventBatchWritten       = "batch.written"
	EventBatchWriteFailed   = "batch.write_failed"
	EventRecordReadFailed   = "record.read_failed"
	EventRecordFailed       = "record.failed"
	EventJobReportAvailable = "job.report"
)

// TracingListener adds events to the spans the job opens for itself and its batches.
// It holds no state, so one instance may be shared by concurrent jobs.
type TracingListener struct {
	tracer metrics.Tracer
}

func NewTracingListener(tracer metrics.Tracer) *TracingListener {
	return &TracingListener{tracer: tracer}
}

func (l *TracingListener) BeforeJob(ctx context.Context, parameters model.JobParameters) {}

func (l *TracingListener) AfterJob(ctx context.Context, report *model.JobReport) {
	m := report.Metrics()
	l.tracer.RecordEvent(ctx, EventJobReportAvailable, map[string]interface{}{
		"job.status":       report.Status().String(),
		"job.read_count":   m.ReadCount,
		"job.write_count":  m.WriteCount,
		"job.filter_count": m.FilterCount,
		"job.error_count":  m.ErrorCount,
	})
}

func (l *TracingListener) BeforeBatchReading(ctx context.Context) {}

func (l *TracingListener) AfterBatchProcessing(ctx context.Context, batch model.Batch) {
	l.tracer.RecordEvent(ctx, EventBatchProcessed, batchAttributes(batch))
}

func (l *TracingListener) AfterBatchWriting(ctx context.Context, batch model.Batch) {
	l.tracer.RecordEvent(ctx, EventBatchWritten, batchAttributes(batch))
}

func (l *TracingListener) OnBatchWritingException(ctx context.Context, batch model.Batch, err error) {
	attrs := batchAttributes(batch)
	attrs["error"] = err.Error()
	l.tracer.RecordEvent(ctx, EventBatchWriteFailed, attrs)
}

func (l *TracingListener) BeforeRecordReading(ctx context.Context) {}

func (l *TracingListener) AfterRecordReading(ctx context.Context, record *model.AnyRecord) {}

func (l *TracingListener) OnRecordReadingException(ctx context.Context, err error) {
	l.tracer.RecordEvent(ctx, EventRecordReadFailed, map[string]interface{}{"error": err.Error()})
}

func (l *TracingListener) BeforeRecordProcessing(ctx context.Context, record *model.AnyRecord) *model.AnyRecord {
	return record
}

func (l *TracingListener) AfterRecordProcessing(ctx context.Context, input, output *model.AnyRecord) {}

func (l *TracingListener) OnRecordProcessingException(ctx context.Context, record *model.AnyRecord, err error) {
	attrs := map[string]interface{}{"error": err.Error()}
	if record != nil {
		attrs["record.number"] = record.Header().Number()
		attrs["record.source"] = record.Header().Source()
	}
	l.tracer.RecordEvent(ctx, EventRecordFailed, attrs)
}

func batchAttributes(batch model.Batch) map[string]interface{} {
	return map[string]interface{}{
		"batch.number": batch.Header().Number(),
		"batch.size":   batch.Size(),
	}
}

var (
	_ port.JobListener          = (*TracingListener)(nil)
	_ port.BatchListener        = (*TracingListener)(nil)
	_ port.RecordReaderListener = (*TracingListener)(nil)
	_ port.PipelineListener     = (*TracingListener)(nil)
)
