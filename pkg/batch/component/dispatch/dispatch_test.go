package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-record/pkg/batch/component/dispatch"
	"github.com/tigerroll/surfin-record/pkg/batch/component/item"
	"github.com/tigerroll/surfin-record/pkg/batch/component/stage"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/job"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

func poison() *model.AnyRecord {
	return model.NewPoisonRecord(model.NewHeader(99, "test", time.Now()))
}

func drain(t *testing.T, q *dispatch.BlockingQueue) []*model.AnyRecord {
	t.Helper()
	var out []*model.AnyRecord
	for q.Len() > 0 {
		r, err := q.Take(context.Background(), time.Second)
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestBlockingQueue_TakeTimesOut(t *testing.T) {
	q := dispatch.NewBlockingQueue("q", 1)
	_, err := q.Take(context.Background(), 10*time.Millisecond)
	assert.ErrorIs(t, err, dispatch.ErrQueueTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = q.Take(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBlockingQueue_PutBlocksWhenFull(t *testing.T) {
	q := dispatch.NewBlockingQueue("q", 1)
	require.NoError(t, q.Put(context.Background(), test.NewTestRecord(1, "a")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Put(ctx, test.NewTestRecord(2, "b")), context.DeadlineExceeded)
	assert.Equal(t, 1, q.Len())
}

func TestBlockingQueueRecordReader_TimeoutEndsStreamOrFails(t *testing.T) {
	ctx := context.Background()
	q := dispatch.NewBlockingQueue("q", 1)

	r := dispatch.NewBlockingQueueRecordReader(q, dispatch.WithTimeout(5*time.Millisecond))
	rec, err := r.ReadRecord(ctx)
	assert.NoError(t, err)
	assert.Nil(t, rec)

	strict := dispatch.NewBlockingQueueRecordReader(q, dispatch.WithTimeout(5*time.Millisecond), dispatch.TimeoutIsError())
	_, err = strict.ReadRecord(ctx)
	assert.ErrorIs(t, err, dispatch.ErrQueueTimeout)
}

func TestContentBasedRecordWriter_RoutesFirstMatchAndBroadcastsPoison(t *testing.T) {
	ctx := context.Background()
	oranges := dispatch.NewBlockingQueue("oranges", 10)
	apples := dispatch.NewBlockingQueue("apples", 10)
	others := dispatch.NewBlockingQueue("others", 10)

	isOrange := stage.PayloadMatches(func(s string) bool { return strings.Contains(s, "orange") })
	isApple := stage.PayloadMatches(func(s string) bool { return strings.Contains(s, "apple") })
	w, err := dispatch.NewContentBasedRecordWriterBuilder().
		When(isOrange).WriteTo(oranges).
		When(isApple).WriteTo(apples).
		When(isOrange).WriteTo(apples).
		Otherwise(others).
		Build()
	require.NoError(t, err)

	batch := test.NewTestBatch(1, test.NewTestRecords("orange juice", "apple pie", "orange apple", "banana")...)
	require.NoError(t, w.WriteRecords(ctx, batch))
	require.NoError(t, w.PropagatePoison(ctx, poison()))

	payloads := func(records []*model.AnyRecord) []any {
		var out []any
		for _, r := range records {
			if r.IsPoison() {
				out = append(out, "<poison>")
				continue
			}
			out = append(out, r.Payload())
		}
		return out
	}
	assert.Equal(t, []any{"orange juice", "orange apple", "<poison>"}, payloads(drain(t, oranges)))
	// apples is listed twice among the routes but receives a single poison.
	assert.Equal(t, []any{"apple pie", "<poison>"}, payloads(drain(t, apples)))
	assert.Equal(t, []any{"banana", "<poison>"}, payloads(drain(t, others)))
}

func TestContentBasedRecordWriterBuilder_Validation(t *testing.T) {
	q := dispatch.NewBlockingQueue("q", 1)
	_, err := dispatch.NewContentBasedRecordWriterBuilder().Build()
	assert.Error(t, err)

	_, err = dispatch.NewContentBasedRecordWriterBuilder().When(stage.IsPoison).Build()
	assert.Error(t, err)

	_, err = dispatch.NewContentBasedRecordWriterBuilder().WriteTo(q).Build()
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		_, err = dispatch.NewContentBasedRecordWriterBuilder().WriteTo(nil).Otherwise(q).Build()
	})
	assert.ErrorContains(t, err, "without a preceding When")
}

func TestRoundRobinRecordWriter(t *testing.T) {
	ctx := context.Background()
	queues := dispatch.NewBlockingQueues("worker", 2, 10)
	w := dispatch.NewRoundRobinRecordWriter(queues...)
	require.NoError(t, w.Open(ctx))

	require.NoError(t, w.WriteRecords(ctx, test.NewTestBatch(1, test.NewTestRecords(1, 2, 3)...)))
	require.NoError(t, w.PropagatePoison(ctx, poison()))

	first, second := drain(t, queues[0]), drain(t, queues[1])
	require.Len(t, first, 3)
	require.Len(t, second, 2)
	assert.Equal(t, 1, first[0].Payload())
	assert.Equal(t, 3, first[1].Payload())
	assert.Equal(t, 2, second[0].Payload())
	assert.True(t, first[2].IsPoison())
	assert.True(t, second[1].IsPoison())

	assert.Error(t, dispatch.NewRoundRobinRecordWriter().Open(ctx))
}

func TestBlockingQueueRecordWriter_PoisonInsideBatch(t *testing.T) {
	ctx := context.Background()
	q := dispatch.NewBlockingQueue("q", 10)
	w := dispatch.NewBlockingQueueRecordWriter(q, q)

	require.NoError(t, w.WriteRecords(ctx, test.NewTestBatch(1, test.NewTestRecord(1, "a"), poison())))
	records := drain(t, q)
	require.Len(t, records, 3, "the record is put once per queue entry, the poison once per distinct queue")
	assert.True(t, records[2].IsPoison())
}

// A queue-fed worker job reads until the poison record arrives and completes without
// counting or writing the poison.
func TestWorkerJob_StopsOnPoison(t *testing.T) {
	ctx := context.Background()
	q := dispatch.NewBlockingQueue("work", 10)
	for _, r := range test.NewTestRecords("a", "b", "c") {
		require.NoError(t, q.Put(ctx, r))
	}
	require.NoError(t, q.Put(ctx, poison()))
	require.NoError(t, q.Put(ctx, test.NewTestRecord(4, "after poison")))

	collector := item.NewCollectionRecordWriter()
	worker, err := job.NewJobBuilder().
		Named("worker").
		BatchSize(2).
		Reader(dispatch.NewBlockingQueueRecordReader(q, dispatch.WithTimeout(time.Second))).
		Writer(collector).
		Build()
	require.NoError(t, err)

	report := worker.Call(ctx)
	assert.Equal(t, model.StatusCompleted, report.Status())
	assert.Equal(t, int64(3), report.Metrics().ReadCount)
	assert.Equal(t, int64(3), report.Metrics().WriteCount)
	assert.Equal(t, []any{"a", "b", "c"}, collector.Payloads())
	assert.Equal(t, 1, q.Len(), "records after the poison stay in the queue")
}

// A producer feeding a content-based writer forwards its poison to every worker
// queue, so that each worker sees exactly one poison and completes.
func TestProducerAndWorkers_PoisonReachesEveryWorker(t *testing.T) {
	ctx := context.Background()
	evens := dispatch.NewBlockingQueue("evens", 2)
	odds := dispatch.NewBlockingQueue("odds", 2)
	isEven := stage.PayloadMatches(func(n int) bool { return n%2 == 0 })
	router, err := dispatch.NewContentBasedRecordWriterBuilder().When(isEven).WriteTo(evens).Otherwise(odds).Build()
	require.NoError(t, err)

	producer, err := job.NewJobBuilder().
		Named("producer").
		BatchSize(3).
		Reader(item.NewPoisonTerminatedReader(item.NewSliceRecordReader("numbers", []int{1, 2, 3, 4, 5, 6, 7}))).
		Writer(router).
		Build()
	require.NoError(t, err)

	collectors := map[string]*item.CollectionRecordWriter{}
	reports := make(chan *model.JobReport, 2)
	var wg sync.WaitGroup
	for _, q := range []*dispatch.BlockingQueue{evens, odds} {
		collector := item.NewCollectionRecordWriter()
		collectors[q.Name()] = collector
		worker, err := job.NewJobBuilder().
			Named("worker-" + q.Name()).
			BatchSize(2).
			Reader(dispatch.NewBlockingQueueRecordReader(q, dispatch.WithTimeout(5*time.Second), dispatch.TimeoutIsError())).
			Writer(collector).
			Build()
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports <- worker.Call(ctx)
		}()
	}

	producerReport := producer.Call(ctx)
	wg.Wait()
	close(reports)

	assert.Equal(t, model.StatusCompleted, producerReport.Status())
	assert.Equal(t, int64(7), producerReport.Metrics().WriteCount)
	for r := range reports {
		assert.Equal(t, model.StatusCompleted, r.Status(), r.JobName())
	}
	assert.Equal(t, []any{2, 4, 6}, collectors["evens"].Payloads())
	assert.Equal(t, []any{1, 3, 5, 7}, collectors["odds"].Payloads())
}

func TestBroadcastPoison_StopsOnCancelledContext(t *testing.T) {
	full := dispatch.NewBlockingQueue("full", 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	err := dispatch.BroadcastPoison(ctx, poison(), full)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
