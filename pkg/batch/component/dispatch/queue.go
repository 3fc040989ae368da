// Package dispatch connects jobs through blocking queues: queue readers and writers,
// and writers that route records to one of several queues. Poison records travel
// through the queues to tell consuming jobs that the stream has ended.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// ErrQueueTimeout is returned by Take when no record arrived in time.
var ErrQueueTimeout = errors.New("timed out waiting for a record")

// BlockingQueue is a bounded FIFO of records shared between a producing and one or
// more consuming jobs. It is safe for concurrent use.
type BlockingQueue struct {
	name string
	ch   chan *model.AnyRecord
}

// NewBlockingQueue creates a queue holding at most capacity records. A capacity below
// one creates an unbuffered queue, where Put blocks until a consumer takes the record.
func NewBlockingQueue(name string, capacity int) *BlockingQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &BlockingQueue{name: name, ch: make(chan *model.AnyRecord, capacity)}
}

// Name returns the queue name.
func (q *BlockingQueue) Name() string { return q.name }

// Len returns the number of records waiting in the queue.
func (q *BlockingQueue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *BlockingQueue) Cap() int { return cap(q.ch) }

// Put adds record to the queue, blocking while the queue is full.
func (q *BlockingQueue) Put(ctx context.Context, record *model.AnyRecord) error {
	select {
	case q.ch <- record:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue '%s': %w", q.name, context.Cause(ctx))
	}
}

// Take removes the oldest record, waiting up to timeout for one to arrive.
// A timeout of zero or less waits until ctx is done.
func (q *BlockingQueue) Take(ctx context.Context, timeout time.Duration) (*model.AnyRecord, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case record := <-q.ch:
		return record, nil
	case <-expired:
		return nil, fmt.Errorf("queue '%s' after %s: %w", q.name, timeout, ErrQueueTimeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("queue '%s': %w", q.name, context.Cause(ctx))
	}
}

// NewBlockingQueues creates n queues named "<prefix>-1" to "<prefix>-n".
func NewBlockingQueues(prefix string, n, capacity int) []*BlockingQueue {
	queues := make([]*BlockingQueue, n)
	for i := range queues {
		queues[i] = NewBlockingQueue(fmt.Sprintf("%s-%d", prefix, i+1), capacity)
	}
	return queues
}

// BroadcastPoison puts poison once on every distinct queue, in order.
func BroadcastPoison(ctx context.Context, poison *model.AnyRecord, queues ...*BlockingQueue) error {
	seen := make(map[*BlockingQueue]struct{}, len(queues))
	for _, q := range queues {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		if err := q.Put(ctx, poison); err != nil {
			return err
		}
	}
	return nil
}
