package item

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// CollectionRecordWriter keeps every written record in memory, in write order.
// It is safe for concurrent use, so several jobs may share one collector.
type CollectionRecordWriter struct {
	mu      sync.Mutex
	records []*model.AnyRecord
	batches int
}

// NewCollectionRecordWriter creates an empty collection writer.
func NewCollectionRecordWriter() *CollectionRecordWriter {
	return &CollectionRecordWriter{}
}

func (w *CollectionRecordWriter) Open(context.Context) error { return nil }

func (w *CollectionRecordWriter) WriteRecords(_ context.Context, batch model.Batch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, batch.Records()...)
	w.batches++
	return nil
}

func (w *CollectionRecordWriter) Close(context.Context) error { return nil }

// Records returns the written records.
func (w *CollectionRecordWriter) Records() []*model.AnyRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]*model.AnyRecord(nil), w.records...)
}

// Payloads returns the payloads of the written records.
func (w *CollectionRecordWriter) Payloads() []any {
	w.mu.Lock()
	defer w.mu.Unlock()
	payloads := make([]any, len(w.records))
	for i, r := range w.records {
		payloads[i] = r.Payload()
	}
	return payloads
}

// BatchCount returns the number of batches written.
func (w *CollectionRecordWriter) BatchCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.batches
}

// NoOpRecordWriter discards every batch.
type NoOpRecordWriter struct{}

// NewNoOpRecordWriter creates a NoOpRecordWriter.
func NewNoOpRecordWriter() *NoOpRecordWriter { return &NoOpRecordWriter{} }

func (w *NoOpRecordWriter) Open(context.Context) error                      { return nil }
func (w *NoOpRecordWriter) WriteRecords(context.Context, model.Batch) error { return nil }
func (w *NoOpRecordWriter) Close(context.Context) error                     { return nil }

// LoggingRecordWriter logs every record at info level.
type LoggingRecordWriter struct {
	prefix string
}

// NewLoggingRecordWriter creates a writer logging records with the given prefix.
func NewLoggingRecordWriter(prefix string) *LoggingRecordWriter {
	return &LoggingRecordWriter{prefix: prefix}
}

func (w *LoggingRecordWriter) Open(context.Context) error { return nil }

func (w *LoggingRecordWriter) WriteRecords(_ context.Context, batch model.Batch) error {
	for _, r := range batch.Records() {
		logger.Infof("%s%s", w.prefix, r)
	}
	return nil
}

func (w *LoggingRecordWriter) Close(context.Context) error { return nil }

// CompositeRecordWriter writes each batch to several writers in order. Writing stops
// at the first failing delegate; opening and closing visit every delegate and
// report all failures together.
type CompositeRecordWriter struct {
	delegates []port.RecordWriter
}

// NewCompositeRecordWriter creates a writer fanning out to delegates.
func NewCompositeRecordWriter(delegates ...port.RecordWriter) *CompositeRecordWriter {
	return &CompositeRecordWriter{delegates: delegates}
}

func (w *CompositeRecordWriter) Open(ctx context.Context) error {
	var errs *multierror.Error
	for _, d := range w.delegates {
		if err := d.Open(ctx); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (w *CompositeRecordWriter) WriteRecords(ctx context.Context, batch model.Batch) error {
	for _, d := range w.delegates {
		if err := d.WriteRecords(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

func (w *CompositeRecordWriter) Close(ctx context.Context) error {
	var errs *multierror.Error
	for i := len(w.delegates) - 1; i >= 0; i-- {
		if err := w.delegates[i].Close(ctx); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// PropagatePoison forwards poison to every delegate that accepts it.
func (w *CompositeRecordWriter) PropagatePoison(ctx context.Context, poison *model.AnyRecord) error {
	var errs *multierror.Error
	for _, d := range w.delegates {
		if p, ok := d.(port.PoisonPropagator); ok {
			if err := p.PropagatePoison(ctx, poison); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	return errs.ErrorOrNil()
}

var (
	_ port.RecordWriter     = (*CollectionRecordWriter)(nil)
	_ port.RecordWriter     = (*NoOpRecordWriter)(nil)
	_ port.RecordWriter     = (*LoggingRecordWriter)(nil)
	_ port.RecordWriter     = (*CompositeRecordWriter)(nil)
	_ port.PoisonPropagator = (*CompositeRecordWriter)(nil)
)
