package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics of job runs.
// It lets the engine publish counters without knowing the backend
// (Prometheus, OpenTelemetry metrics, ...).
type MetricRecorder interface {
	// RecordJobStart records the start of a job run.
	//
	// ctx: The context for the operation.
	// parameters: The parameters of the job that started.
	RecordJobStart(ctx context.Context, parameters model.JobParameters)

	// RecordJobEnd records the end of a job run.
	//
	// ctx: The context for the operation.
	// report: The final report of the run.
	RecordJobEnd(ctx context.Context, report *model.JobReport)

	// RecordRecordRead records one record read by a job.
	RecordRecordRead(ctx context.Context, jobName string)

	// RecordRecordFilter records one record filtered out by a job.
	RecordRecordFilter(ctx context.Context, jobName string)

	// RecordRecordError records one error event of a job.
	//
	// ctx: The context for the operation.
	// jobName: The name of the job.
	// reason: The failing module (e.g., "mapper", "validator", "writer").
	RecordRecordError(ctx context.Context, jobName string, reason string)

	// RecordBatchWrite records a batch written successfully.
	//
	// ctx: The context for the operation.
	// jobName: The name of the job.
	// count: The number of records in the batch.
	// duration: The time spent in the writer.
	RecordBatchWrite(ctx context.Context, jobName string, count int, duration time.Duration)

	// RecordDuration records the execution time of an arbitrary operation.
	//
	// ctx: The context for the operation.
	// name: The name of the duration to record.
	// duration: The length of the duration to record.
	// tags: Additional attributes to associate with the duration.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
