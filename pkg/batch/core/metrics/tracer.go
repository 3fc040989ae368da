package metrics

import (
	"context"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// Tracer is an abstract interface for distributed tracing of job runs.
type Tracer interface {
	// StartJobSpan starts a span covering a job run. The returned function ends it.
	StartJobSpan(ctx context.Context, parameters model.JobParameters) (context.Context, func())
	// StartBatchSpan starts a span covering one batch of a job. The returned function ends it.
	StartBatchSpan(ctx context.Context, jobName string, batchNumber int64) (context.Context, func())
	// RecordError records an error on the span held by ctx.
	RecordError(ctx context.Context, module string, err error)
	// RecordEvent records an event on the span held by ctx.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
