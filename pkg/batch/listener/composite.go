// Package listener provides composite listeners and general-purpose listeners for jobs.
//
// Composite listeners fan a notification out to an ordered list of delegates.
// "Before" hooks run in registration order; "after" and "on-exception" hooks run
// in reverse order, so the last listener to see "before" is the first to see "after".
package listener

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// CompositeJobListener notifies a list of JobListeners.
type CompositeJobListener struct {
	listeners []port.JobListener
}

// NewCompositeJobListener creates a composite of the given listeners, in order.
func NewCompositeJobListener(listeners ...port.JobListener) *CompositeJobListener {
	return &CompositeJobListener{listeners: append([]port.JobListener(nil), listeners...)}
}

// Add appends a listener.
func (c *CompositeJobListener) Add(l port.JobListener) { c.listeners = append(c.listeners, l) }

// Len returns the number of delegates.
func (c *CompositeJobListener) Len() int { return len(c.listeners) }

func (c *CompositeJobListener) BeforeJob(ctx context.Context, parameters model.JobParameters) {
	for _, l := range c.listeners {
		l.BeforeJob(ctx, parameters)
	}
}

func (c *CompositeJobListener) AfterJob(ctx context.Context, report *model.JobReport) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].AfterJob(ctx, report)
	}
}

// CompositeBatchListener notifies a list of BatchListeners.
type CompositeBatchListener struct {
	listeners []port.BatchListener
}

// NewCompositeBatchListener creates a composite of the given listeners, in order.
func NewCompositeBatchListener(listeners ...port.BatchListener) *CompositeBatchListener {
	return &CompositeBatchListener{listeners: append([]port.BatchListener(nil), listeners...)}
}

// Add appends a listener.
func (c *CompositeBatchListener) Add(l port.BatchListener) { c.listeners = append(c.listeners, l) }

// Len returns the number of delegates.
func (c *CompositeBatchListener) Len() int { return len(c.listeners) }

func (c *CompositeBatchListener) BeforeBatchReading(ctx context.Context) {
	for _, l := range c.listeners {
		l.BeforeBatchReading(ctx)
	}
}

func (c *CompositeBatchListener) AfterBatchProcessing(ctx context.Context, batch model.Batch) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].AfterBatchProcessing(ctx, batch)
	}
}

func (c *CompositeBatchListener) AfterBatchWriting(ctx context.Context, batch model.Batch) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].AfterBatchWriting(ctx, batch)
	}
}

func (c *CompositeBatchListener) OnBatchWritingException(ctx context.Context, batch model.Batch, err error) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].OnBatchWritingException(ctx, batch, err)
	}
}

// CompositeRecordReaderListener notifies a list of RecordReaderListeners.
type CompositeRecordReaderListener struct {
	listeners []port.RecordReaderListener
}

// NewCompositeRecordReaderListener creates a composite of the given listeners, in order.
func NewCompositeRecordReaderListener(listeners ...port.RecordReaderListener) *CompositeRecordReaderListener {
	return &CompositeRecordReaderListener{listeners: append([]port.RecordReaderListener(nil), listeners...)}
}

// Add appends a listener.
func (c *CompositeRecordReaderListener) Add(l port.RecordReaderListener) {
	c.listeners = append(c.listeners, l)
}

// Len returns the number of delegates.
func (c *CompositeRecordReaderListener) Len() int { return len(c.listeners) }

func (c *CompositeRecordReaderListener) BeforeRecordReading(ctx context.Context) {
	for _, l := range c.listeners {
		l.BeforeRecordReading(ctx)
	}
}

func (c *CompositeRecordReaderListener) AfterRecordReading(ctx context.Context, record *model.AnyRecord) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].AfterRecordReading(ctx, record)
	}
}

func (c *CompositeRecordReaderListener) OnRecordReadingException(ctx context.Context, err error) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].OnRecordReadingException(ctx, err)
	}
}

// CompositeRecordWriterListener notifies a list of RecordWriterListeners.
type CompositeRecordWriterListener struct {
	listeners []port.RecordWriterListener
}

// NewCompositeRecordWriterListener creates a composite of the given listeners, in order.
func NewCompositeRecordWriterListener(listeners ...port.RecordWriterListener) *CompositeRecordWriterListener {
	return &CompositeRecordWriterListener{listeners: append([]port.RecordWriterListener(nil), listeners...)}
}

// Add appends a listener.
func (c *CompositeRecordWriterListener) Add(l port.RecordWriterListener) {
	c.listeners = append(c.listeners, l)
}

// Len returns the number of delegates.
func (c *CompositeRecordWriterListener) Len() int { return len(c.listeners) }

func (c *CompositeRecordWriterListener) BeforeRecordWriting(ctx context.Context, batch model.Batch) {
	for _, l := range c.listeners {
		l.BeforeRecordWriting(ctx, batch)
	}
}

func (c *CompositeRecordWriterListener) AfterRecordWriting(ctx context.Context, batch model.Batch) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].AfterRecordWriting(ctx, batch)
	}
}

func (c *CompositeRecordWriterListener) OnRecordWritingException(ctx context.Context, batch model.Batch, err error) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].OnRecordWritingException(ctx, batch, err)
	}
}

// CompositePipelineListener notifies a list of PipelineListeners.
// BeforeRecordProcessing threads the record through the delegates; if one of them
// returns nil the remaining delegates are skipped and nil is returned.
type CompositePipelineListener struct {
	listeners []port.PipelineListener
}

// NewCompositePipelineListener creates a composite of the given listeners, in order.
func NewCompositePipelineListener(listeners ...port.PipelineListener) *CompositePipelineListener {
	return &CompositePipelineListener{listeners: append([]port.PipelineListener(nil), listeners...)}
}

// Add appends a listener.
func (c *CompositePipelineListener) Add(l port.PipelineListener) { c.listeners = append(c.listeners, l) }

// Len returns the number of delegates.
func (c *CompositePipelineListener) Len() int { return len(c.listeners) }

func (c *CompositePipelineListener) BeforeRecordProcessing(ctx context.Context, record *model.AnyRecord) *model.AnyRecord {
	current := record
	for _, l := range c.listeners {
		if current = l.BeforeRecordProcessing(ctx, current); current == nil {
			return nil
		}
	}
	return current
}

func (c *CompositePipelineListener) AfterRecordProcessing(ctx context.Context, input, output *model.AnyRecord) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].AfterRecordProcessing(ctx, input, output)
	}
}

func (c *CompositePipelineListener) OnRecordProcessingException(ctx context.Context, record *model.AnyRecord, err error) {
	for i := len(c.listeners) - 1; i >= 0; i-- {
		c.listeners[i].OnRecordProcessingException(ctx, record, err)
	}
}

var (
	_ port.JobListener          = (*CompositeJobListener)(nil)
	_ port.BatchListener        = (*CompositeBatchListener)(nil)
	_ port.RecordReaderListener = (*CompositeRecordReaderListener)(nil)
	_ port.RecordWriterListener = (*CompositeRecordWriterListener)(nil)
	_ port.PipelineListener     = (*CompositePipelineListener)(nil)
)
