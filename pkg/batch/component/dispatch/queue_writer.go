package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tigerroll/surfin-record/pkg/batch/component/stage"
	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

// BlockingQueueRecordWriter puts every record of a batch on each of its queues.
// Poison is put once on each queue.
type BlockingQueueRecordWriter struct {
	queues []*BlockingQueue
}

// NewBlockingQueueRecordWriter creates a writer feeding queues.
func NewBlockingQueueRecordWriter(queues ...*BlockingQueue) *BlockingQueueRecordWriter {
	return &BlockingQueueRecordWriter{queues: queues}
}

func (w *BlockingQueueRecordWriter) Open(context.Context) error { return nil }

func (w *BlockingQueueRecordWriter) WriteRecords(ctx context.Context, batch model.Batch) error {
	for _, record := range batch.Records() {
		if record.IsPoison() {
			if err := w.PropagatePoison(ctx, record); err != nil {
				return err
			}
			continue
		}
		for _, q := range w.queues {
			if err := q.Put(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *BlockingQueueRecordWriter) Close(context.Context) error { return nil }

// PropagatePoison puts poison once on every distinct queue.
func (w *BlockingQueueRecordWriter) PropagatePoison(ctx context.Context, poison *model.AnyRecord) error {
	return BroadcastPoison(ctx, poison, w.queues...)
}

type route struct {
	predicate stage.Predicate
	queue     *BlockingQueue
}

// ContentBasedRecordWriter routes each record to the queue of the first predicate it
// matches, or to the default queue. Records matching no route are dropped when there
// is no default queue. Poison is broadcast once to every distinct queue.
type ContentBasedRecordWriter struct {
	routes       []route
	defaultQueue *BlockingQueue
}

func (w *ContentBasedRecordWriter) Open(context.Context) error { return nil }

func (w *ContentBasedRecordWriter) WriteRecords(ctx context.Context, batch model.Batch) error {
	for _, record := range batch.Records() {
		if record.IsPoison() {
			if err := w.PropagatePoison(ctx, record); err != nil {
				return err
			}
			continue
		}
		q := w.destination(record)
		if q == nil {
			continue
		}
		if err := q.Put(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (w *ContentBasedRecordWriter) destination(record *model.AnyRecord) *BlockingQueue {
	for _, r := range w.routes {
		if r.predicate(record) {
			return r.queue
		}
	}
	return w.defaultQueue
}

func (w *ContentBasedRecordWriter) Close(context.Context) error { return nil }

// PropagatePoison puts poison once on every distinct route and default queue.
func (w *ContentBasedRecordWriter) PropagatePoison(ctx context.Context, poison *model.AnyRecord) error {
	return BroadcastPoison(ctx, poison, w.Queues()...)
}

// Queues returns the route queues in order, followed by the default queue.
func (w *ContentBasedRecordWriter) Queues() []*BlockingQueue {
	queues := make([]*BlockingQueue, 0, len(w.routes)+1)
	for _, r := range w.routes {
		queues = append(queues, r.queue)
	}
	if w.defaultQueue != nil {
		queues = append(queues, w.defaultQueue)
	}
	return queues
}

// ContentBasedRecordWriterBuilder assembles a ContentBasedRecordWriter.
//
//	writer, err := dispatch.NewContentBasedRecordWriterBuilder().
//		When(isOrange).WriteTo(orangeQueue).
//		When(isApple).WriteTo(appleQueue).
//		Otherwise(defaultQueue).
//		Build()
type ContentBasedRecordWriterBuilder struct {
	routes       []route
	pending      stage.Predicate
	defaultQueue *BlockingQueue
	errs         []error
}

// NewContentBasedRecordWriterBuilder creates an empty builder.
func NewContentBasedRecordWriterBuilder() *ContentBasedRecordWriterBuilder {
	return &ContentBasedRecordWriterBuilder{}
}

// When starts a route for records matching predicate. It must be followed by WriteTo.
func (b *ContentBasedRecordWriterBuilder) When(predicate stage.Predicate) *ContentBasedRecordWriterBuilder {
	if b.pending != nil {
		b.errs = append(b.errs, fmt.Errorf("route %d has no queue", len(b.routes)+1))
	}
	b.pending = predicate
	return b
}

// WriteTo completes the route started by When.
func (b *ContentBasedRecordWriterBuilder) WriteTo(queue *BlockingQueue) *ContentBasedRecordWriterBuilder {
	switch {
	case b.pending == nil:
		b.errs = append(b.errs, fmt.Errorf("route %d: WriteTo without a preceding When", len(b.routes)+1))
	case queue == nil:
		b.errs = append(b.errs, fmt.Errorf("route %d has a nil queue", len(b.routes)+1))
	default:
		b.routes = append(b.routes, route{predicate: b.pending, queue: queue})
	}
	b.pending = nil
	return b
}

// Otherwise sets the queue receiving the records no route matches.
func (b *ContentBasedRecordWriterBuilder) Otherwise(queue *BlockingQueue) *ContentBasedRecordWriterBuilder {
	b.defaultQueue = queue
	return b
}

// Build returns the writer.
func (b *ContentBasedRecordWriterBuilder) Build() (*ContentBasedRecordWriter, error) {
	errs := append([]error(nil), b.errs...)
	if b.pending != nil {
		errs = append(errs, fmt.Errorf("route %d has no queue", len(b.routes)+1))
	}
	if len(b.routes) == 0 && b.defaultQueue == nil {
		errs = append(errs, errors.New("at least one route or a default queue is required"))
	}
	if len(errs) > 0 {
		return nil, exception.NewBatchError("dispatch", "invalid content based writer", errors.Join(errs...), false, false)
	}
	return &ContentBasedRecordWriter{
		routes:       append([]route(nil), b.routes...),
		defaultQueue: b.defaultQueue,
	}, nil
}

// RoundRobinRecordWriter distributes records over its queues in turn. Poison is
// broadcast to every queue.
type RoundRobinRecordWriter struct {
	mu     sync.Mutex
	queues []*BlockingQueue
	next   int
}

// NewRoundRobinRecordWriter creates a writer cycling over queues.
func NewRoundRobinRecordWriter(queues ...*BlockingQueue) *RoundRobinRecordWriter {
	return &RoundRobinRecordWriter{queues: queues}
}

func (w *RoundRobinRecordWriter) Open(context.Context) error {
	if len(w.queues) == 0 {
		return errors.New("round robin writer has no queues")
	}
	return nil
}

func (w *RoundRobinRecordWriter) WriteRecords(ctx context.Context, batch model.Batch) error {
	for _, record := range batch.Records() {
		if record.IsPoison() {
			if err := w.PropagatePoison(ctx, record); err != nil {
				return err
			}
			continue
		}
		if err := w.nextQueue().Put(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (w *RoundRobinRecordWriter) nextQueue() *BlockingQueue {
	w.mu.Lock()
	defer w.mu.Unlock()
	q := w.queues[w.next]
	w.next = (w.next + 1) % len(w.queues)
	return q
}

func (w *RoundRobinRecordWriter) Close(context.Context) error { return nil }

// PropagatePoison puts poison once on every distinct queue.
func (w *RoundRobinRecordWriter) PropagatePoison(ctx context.Context, poison *model.AnyRecord) error {
	return BroadcastPoison(ctx, poison, w.queues...)
}

var (
	_ port.RecordWriter     = (*BlockingQueueRecordWriter)(nil)
	_ port.PoisonPropagator = (*BlockingQueueRecordWriter)(nil)
	_ port.RecordWriter     = (*ContentBasedRecordWriter)(nil)
	_ port.PoisonPropagator = (*ContentBasedRecordWriter)(nil)
	_ port.RecordWriter     = (*RoundRobinRecordWriter)(nil)
	_ port.PoisonPropagator = (*RoundRobinRecordWriter)(nil)
)
