package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// InstrumentationName identifies the spans and instruments created by this package.
const InstrumentationName = "github.com/tigerroll/surfin-record"

// OpenTelemetryTracer is an implementation of metrics.Tracer using OpenTelemetry.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a tracer backed by provider.
func NewOpenTelemetryTracer(provider trace.TracerProvider) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{tracer: provider.Tracer(InstrumentationName)}
}

// StartJobSpan starts the span of a job run.
func (t *OpenTelemetryTracer) StartJobSpan(ctx context.Context, parameters model.JobParameters) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "job "+parameters.Name, trace.WithAttributes(
		attribute.String("job.name", parameters.Name),
		attribute.Int("job.batch_size", parameters.BatchSize),
		attribute.Int64("job.error_threshold", parameters.ErrorThreshold),
	))
	logger.Debugf("Tracer: started span for Job '%s' (trace %s).", parameters.Name, span.SpanContext().TraceID())
	return ctx, func() { span.End() }
}

// StartBatchSpan starts a child span covering the writing of one batch.
func (t *OpenTelemetryTracer) StartBatchSpan(ctx context.Context, jobName string, batchNumber int64) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("batch #%d", batchNumber), trace.WithAttributes(
		attribute.String("job.name", jobName),
		attribute.Int64("batch.number", batchNumber),
	))
	return ctx, func() { span.End() }
}

// RecordError records err on the current span and marks it as failed.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent adds an event to the current span.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

func toAttributes(values map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return attrs
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
