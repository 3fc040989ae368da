package stage

import (
	"context"
	"sync"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// NewTypedProcessor adapts a function over payloads to a port.RecordProcessor.
func NewTypedProcessor[I, O any](process func(ctx context.Context, payload I) (O, error)) ProcessorFunc {
	mapper := NewTypedMapper(process)
	return ProcessorFunc(mapper)
}

// RecordCollector is a processor that keeps a reference to every record it sees
// and passes it on unchanged.
type RecordCollector struct {
	mu      sync.Mutex
	records []*model.AnyRecord
}

// NewRecordCollector creates an empty collector.
func NewRecordCollector() *RecordCollector {
	return &RecordCollector{}
}

func (c *RecordCollector) ProcessRecord(_ context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return record, nil
}

// Records returns the records collected so far.
func (c *RecordCollector) Records() []*model.AnyRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*model.AnyRecord(nil), c.records...)
}
