package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// LoggingMetricRecorder writes metric events to the log instead of a metrics backend.
// It is the "log" metrics backend, useful during development.
type LoggingMetricRecorder struct{}

// NewLoggingMetricRecorder creates a new instance of LoggingMetricRecorder.
func NewLoggingMetricRecorder() *LoggingMetricRecorder {
	logger.Infof("Metrics: Initializing logging metric recorder.")
	return &LoggingMetricRecorder{}
}

// RecordJobStart records the start of a job run.
func (r *LoggingMetricRecorder) RecordJobStart(ctx context.Context, parameters model.JobParameters) {
	logger.Debugf("Metrics: Job Start recorded. JobName: %s", parameters.Name)
}

// RecordJobEnd records the end of a job run.
func (r *LoggingMetricRecorder) RecordJobEnd(ctx context.Context, report *model.JobReport) {
	m := report.Metrics()
	logger.Infof("Metrics: Job End recorded. JobName: %s, Status: %s, Duration: %s, read=%d written=%d filtered=%d errors=%d",
		report.JobName(), report.Status(), m.Duration(), m.ReadCount, m.WriteCount, m.FilterCount, m.ErrorCount)
}

func (r *LoggingMetricRecorder) RecordRecordRead(ctx context.Context, jobName string)   {}
func (r *LoggingMetricRecorder) RecordRecordFilter(ctx context.Context, jobName string) {}

func (r *LoggingMetricRecorder) RecordRecordError(ctx context.Context, jobName string, reason string) {
	logger.Debugf("Metrics: Error recorded. JobName: %s, Reason: %s", jobName, reason)
}

func (r *LoggingMetricRecorder) RecordBatchWrite(ctx context.Context, jobName string, count int, duration time.Duration) {
	logger.Debugf("Metrics: Batch written. JobName: %s, Count: %d, Duration: %s", jobName, count, duration)
}

// RecordDuration records the execution time of a specific operation.
func (r *LoggingMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	logger.Debugf("Metrics: Duration recorded. Name: %s, Duration: %s, Tags: %+v", name, duration, tags)
}

var _ metrics.MetricRecorder = (*LoggingMetricRecorder)(nil)
