package dispatch

import (
	"context"
	"errors"
	"time"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// DefaultQueueTimeout is how long a queue reader waits for a record by default.
const DefaultQueueTimeout = time.Minute

// BlockingQueueRecordReader reads records from a queue. A poison record is returned
// like any other record, which makes the reading job stop. When no record arrives
// within the timeout the stream ends, or the read fails if the reader was created
// with TimeoutIsError.
type BlockingQueueRecordReader struct {
	queue          *BlockingQueue
	timeout        time.Duration
	timeoutIsError bool
}

// QueueReaderOption configures a BlockingQueueRecordReader.
type QueueReaderOption func(*BlockingQueueRecordReader)

// WithTimeout sets how long a read waits for a record.
func WithTimeout(timeout time.Duration) QueueReaderOption {
	return func(r *BlockingQueueRecordReader) { r.timeout = timeout }
}

// TimeoutIsError makes a timed-out read fail with ErrQueueTimeout instead of ending the stream.
func TimeoutIsError() QueueReaderOption {
	return func(r *BlockingQueueRecordReader) { r.timeoutIsError = true }
}

// NewBlockingQueueRecordReader creates a reader taking records from queue.
func NewBlockingQueueRecordReader(queue *BlockingQueue, opts ...QueueReaderOption) *BlockingQueueRecordReader {
	r := &BlockingQueueRecordReader{queue: queue, timeout: DefaultQueueTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *BlockingQueueRecordReader) Open(context.Context) error { return nil }

func (r *BlockingQueueRecordReader) ReadRecord(ctx context.Context) (*model.AnyRecord, error) {
	record, err := r.queue.Take(ctx, r.timeout)
	if errors.Is(err, ErrQueueTimeout) && !r.timeoutIsError {
		logger.Warnf("No record arrived on queue '%s' within %s, ending the stream.", r.queue.Name(), r.timeout)
		return nil, nil
	}
	return record, err
}

func (r *BlockingQueueRecordReader) Close(context.Context) error { return nil }

var _ port.RecordReader = (*BlockingQueueRecordReader)(nil)
