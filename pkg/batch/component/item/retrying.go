package item

import (
	"context"
	"fmt"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/policy"
)

// RetryingRecordReader retries failed reads of its delegate according to a retry policy.
// Open and Close are not retried.
type RetryingRecordReader struct {
	delegate port.RecordReader
	policy   policy.RetryPolicy
}

// NewRetryingRecordReader wraps delegate.
func NewRetryingRecordReader(delegate port.RecordReader, p policy.RetryPolicy) *RetryingRecordReader {
	return &RetryingRecordReader{delegate: delegate, policy: p}
}

func (r *RetryingRecordReader) Open(ctx context.Context) error { return r.delegate.Open(ctx) }

func (r *RetryingRecordReader) ReadRecord(ctx context.Context) (*model.AnyRecord, error) {
	var record *model.AnyRecord
	err := policy.Retry(ctx, r.policy, "record read", func(ctx context.Context) error {
		var err error
		record, err = r.delegate.ReadRecord(ctx)
		return err
	})
	return record, err
}

func (r *RetryingRecordReader) Close(ctx context.Context) error { return r.delegate.Close(ctx) }

// RetryingRecordWriter retries failed batch writes of its delegate. The delegate must
// tolerate a batch being written again after a failed attempt.
type RetryingRecordWriter struct {
	delegate port.RecordWriter
	policy   policy.RetryPolicy
}

// NewRetryingRecordWriter wraps delegate.
func NewRetryingRecordWriter(delegate port.RecordWriter, p policy.RetryPolicy) *RetryingRecordWriter {
	return &RetryingRecordWriter{delegate: delegate, policy: p}
}

func (w *RetryingRecordWriter) Open(ctx context.Context) error { return w.delegate.Open(ctx) }

func (w *RetryingRecordWriter) WriteRecords(ctx context.Context, batch model.Batch) error {
	name := fmt.Sprintf("batch #%d write", batch.Header().Number())
	return policy.Retry(ctx, w.policy, name, func(ctx context.Context) error {
		return w.delegate.WriteRecords(ctx, batch)
	})
}

func (w *RetryingRecordWriter) Close(ctx context.Context) error { return w.delegate.Close(ctx) }

// PropagatePoison forwards poison if the delegate accepts it.
func (w *RetryingRecordWriter) PropagatePoison(ctx context.Context, poison *model.AnyRecord) error {
	if p, ok := w.delegate.(port.PoisonPropagator); ok {
		return p.PropagatePoison(ctx, poison)
	}
	return nil
}

var (
	_ port.RecordReader     = (*RetryingRecordReader)(nil)
	_ port.RecordWriter     = (*RetryingRecordWriter)(nil)
	_ port.PoisonPropagator = (*RetryingRecordWriter)(nil)
)
