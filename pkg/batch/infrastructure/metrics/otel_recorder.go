package metrics

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
)

// OtelMetricRecorder is a metrics.MetricRecorder that records through an OpenTelemetry Meter.
type OtelMetricRecorder struct {
	jobStarted     metric.Int64Counter
	jobFinished    metric.Int64Counter
	jobDuration    metric.Float64Histogram
	recordsRead    metric.Int64Counter
	recordsFilter  metric.Int64Counter
	recordsWritten metric.Int64Counter
	recordErrors   metric.Int64Counter
	batchWrite     metric.Float64Histogram
	operation      metric.Float64Histogram
}

// NewOtelMetricRecorder creates the instruments on a Meter obtained from provider.
func NewOtelMetricRecorder(provider metric.MeterProvider) (*OtelMetricRecorder, error) {
	meter := provider.Meter(InstrumentationName)

	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	r := &OtelMetricRecorder{
		jobStarted:     counter("surfin.job.started", "Number of job runs started."),
		jobFinished:    counter("surfin.job.finished", "Number of finished job runs by status."),
		jobDuration:    histogram("surfin.job.duration", "Duration of job runs."),
		recordsRead:    counter("surfin.record.read", "Records read."),
		recordsFilter:  counter("surfin.record.filtered", "Records filtered."),
		recordsWritten: counter("surfin.record.written", "Records written."),
		recordErrors:   counter("surfin.record.errors", "Error events by failing module."),
		batchWrite:     histogram("surfin.batch.write.duration", "Time spent writing one batch."),
		operation:      histogram("surfin.operation.duration", "Duration of named operations."),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return r, nil
}

func jobAttr(jobName string) attribute.KeyValue {
	return attribute.String("job.name", jobName)
}

func (r *OtelMetricRecorder) RecordJobStart(ctx context.Context, parameters model.JobParameters) {
	r.jobStarted.Add(ctx, 1, metric.WithAttributes(jobAttr(parameters.Name)))
}

func (r *OtelMetricRecorder) RecordJobEnd(ctx context.Context, report *model.JobReport) {
	attrs := metric.WithAttributes(jobAttr(report.JobName()), attribute.String("job.status", report.Status().String()))
	r.jobFinished.Add(ctx, 1, attrs)
	r.jobDuration.Record(ctx, report.Metrics().Duration().Seconds(), attrs)
}

func (r *OtelMetricRecorder) RecordRecordRead(ctx context.Context, jobName string) {
	r.recordsRead.Add(ctx, 1, metric.WithAttributes(jobAttr(jobName)))
}

func (r *OtelMetricRecorder) RecordRecordFilter(ctx context.Context, jobName string) {
	r.recordsFilter.Add(ctx, 1, metric.WithAttributes(jobAttr(jobName)))
}

func (r *OtelMetricRecorder) RecordRecordError(ctx context.Context, jobName string, reason string) {
	r.recordErrors.Add(ctx, 1, metric.WithAttributes(jobAttr(jobName), attribute.String("reason", reason)))
}

// RecordBatchWrite adds count to the written records and records the write latency.
func (r *OtelMetricRecorder) RecordBatchWrite(ctx context.Context, jobName string, count int, duration time.Duration) {
	attrs := metric.WithAttributes(jobAttr(jobName))
	r.recordsWritten.Add(ctx, int64(count), attrs)
	r.batchWrite.Record(ctx, duration.Seconds(), attrs)
}

// RecordDuration records duration under the operation histogram, tagged with name and tags.
func (r *OtelMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	attrs := make([]attribute.KeyValue, 0, len(tags)+1)
	attrs = append(attrs, attribute.String("name", name))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.operation.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

var _ metrics.MetricRecorder = (*OtelMetricRecorder)(nil)
