package job_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-record/pkg/batch/component/dispatch"
	"github.com/tigerroll/surfin-record/pkg/batch/component/item"
	"github.com/tigerroll/surfin-record/pkg/batch/component/stage"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/job"
	"github.com/tigerroll/surfin-record/pkg/batch/listener"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

// batchRecorder keeps the payloads of every batch it is given.
type batchRecorder struct {
	item.NoOpRecordWriter
	batches [][]any
	numbers []int64
	poisons int
}

func (w *batchRecorder) WriteRecords(_ context.Context, batch model.Batch) error {
	w.batches = append(w.batches, batch.Payloads())
	w.numbers = append(w.numbers, batch.Header().Number())
	return nil
}

func (w *batchRecorder) PropagatePoison(context.Context, *model.AnyRecord) error {
	w.poisons++
	return nil
}

func (w *batchRecorder) sizes() []int {
	sizes := make([]int, len(w.batches))
	for i, b := range w.batches {
		sizes[i] = len(b)
	}
	return sizes
}

func (w *batchRecorder) payloads() []any {
	var out []any
	for _, b := range w.batches {
		out = append(out, b...)
	}
	return out
}

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func rejectNumbers(numbers ...int64) stage.ValidatorFunc {
	rejected := map[int64]bool{}
	for _, n := range numbers {
		rejected[n] = true
	}
	return func(_ context.Context, r *model.AnyRecord) (*model.AnyRecord, error) {
		if rejected[r.Header().Number()] {
			return nil, fmt.Errorf("record #%d rejected", r.Header().Number())
		}
		return r, nil
	}
}

func TestBatchJob_FiveRecordsInBatchesOfTwo(t *testing.T) {
	writer := &batchRecorder{}
	j, err := job.NewJobBuilder().
		Named("five").
		BatchSize(2).
		Reader(item.NewSliceRecordReader("numbers", ints(5))).
		Writer(writer).
		Build()
	require.NoError(t, err)

	report := j.Call(context.Background())

	assert.Equal(t, model.StatusCompleted, report.Status())
	assert.Equal(t, []int{2, 2, 1}, writer.sizes())
	assert.Equal(t, []int64{1, 2, 3}, writer.numbers, "batches are numbered from 1")
	assert.Equal(t, int64(5), report.Metrics().ReadCount)
	assert.Equal(t, int64(5), report.Metrics().WriteCount)
	assert.Equal(t, int64(0), report.Metrics().ErrorCount)
	assert.Nil(t, report.LastError())
	assert.Equal(t, "five", report.JobName())
	assert.Equal(t, j.ExecutionID(), report.ExecutionID())
	assert.Zero(t, writer.poisons)
}

func TestBatchJob_PreservesOrderMinusDroppedRecords(t *testing.T) {
	input := ints(23)
	writer := &batchRecorder{}
	j, err := job.NewJobBuilder().
		BatchSize(4).
		Reader(item.NewSliceRecordReader("numbers", input)).
		Filter(stage.NewPredicateFilter(stage.PayloadMatches(func(n int) bool { return n%3 == 0 }))).
		Mapper(stage.NewTypedMapper(func(_ context.Context, n int) (int, error) { return n * 10, nil })).
		Validator(rejectNumbers(5, 11)).
		Writer(writer).
		Build()
	require.NoError(t, err)

	report := j.Call(context.Background())

	var expected []any
	for _, n := range input {
		if n%3 != 0 && n != 5 && n != 11 {
			expected = append(expected, n*10)
		}
	}
	assert.Equal(t, expected, writer.payloads())
	assert.Equal(t, model.StatusCompleted, report.Status())
	assert.Equal(t, int64(23), report.Metrics().ReadCount)
	assert.Equal(t, int64(7), report.Metrics().FilterCount)
	assert.Equal(t, int64(2), report.Metrics().ErrorCount)
	assert.Equal(t, int64(len(expected)), report.Metrics().WriteCount)
}

func TestBatchJob_BatchSizing(t *testing.T) {
	for _, n := range []int{0, 1, 5, 6, 7, 12} {
		for _, b := range []int{1, 3, 6} {
			t.Run(fmt.Sprintf("N=%d/B=%d", n, b), func(t *testing.T) {
				writer := &batchRecorder{}
				j, err := job.NewJobBuilder().
					BatchSize(b).
					Reader(item.NewSliceRecordReader("numbers", ints(n))).
					Writer(writer).
					Build()
				require.NoError(t, err)
				require.Equal(t, model.StatusCompleted, j.Call(context.Background()).Status())

				var expected []int
				for i := 0; i < n/b; i++ {
					expected = append(expected, b)
				}
				if n%b != 0 {
					expected = append(expected, n%b)
				}
				if expected == nil {
					assert.Empty(t, writer.sizes(), "empty batches are not written")
					return
				}
				assert.Equal(t, expected, writer.sizes())
			})
		}
	}
}

func TestBatchJob_FailsOnceErrorCountExceedsThreshold(t *testing.T) {
	for _, threshold := range []int64{0, 1, 3, 10} {
		t.Run(fmt.Sprintf("T=%d", threshold), func(t *testing.T) {
			writer := &batchRecorder{}
			j, err := job.NewJobBuilder().
				ErrorThreshold(threshold).
				Reader(item.NewSliceRecordReader("numbers", ints(50))).
				Mapper(stage.MapperFunc(func(context.Context, *model.AnyRecord) (*model.AnyRecord, error) {
					return nil, errors.New("unmappable")
				})).
				Writer(writer).
				Build()
			require.NoError(t, err)

			report := j.Call(context.Background())

			assert.Equal(t, model.StatusFailed, report.Status())
			assert.Equal(t, threshold+1, report.Metrics().ErrorCount)
			assert.LessOrEqual(t, report.Metrics().ReadCount, threshold+1)
			assert.Zero(t, report.Metrics().WriteCount)
			assert.ErrorIs(t, report.LastError(), exception.ErrErrorThresholdExceeded)
			assert.ErrorIs(t, report.LastError(), exception.ErrRecordMapping)
			assert.Empty(t, writer.batches)
		})
	}
}

func TestBatchJob_ToleratesRejectionsUnderThreshold(t *testing.T) {
	writer := &batchRecorder{}
	j, err := job.NewJobBuilder().
		ErrorThreshold(5).
		Reader(item.NewSliceRecordReader("numbers", ints(10))).
		Validator(rejectNumbers(3, 7)).
		Writer(writer).
		Build()
	require.NoError(t, err)

	report := j.Call(context.Background())

	assert.Equal(t, model.StatusCompleted, report.Status())
	assert.Equal(t, int64(2), report.Metrics().ErrorCount)
	assert.Equal(t, int64(8), report.Metrics().WriteCount)
	assert.Equal(t, []any{1, 2, 4, 5, 6, 8, 9, 10}, writer.payloads())
}

func TestBatchJob_FailsOnSixthRejection(t *testing.T) {
	writer := &batchRecorder{}
	j, err := job.NewJobBuilder().
		BatchSize(3).
		ErrorThreshold(5).
		Reader(item.NewSliceRecordReader("numbers", ints(10))).
		Validator(rejectNumbers(1, 2, 4, 6, 7, 9)).
		Writer(writer).
		Build()
	require.NoError(t, err)

	report := j.Call(context.Background())

	assert.Equal(t, model.StatusFailed, report.Status())
	assert.Equal(t, int64(6), report.Metrics().ErrorCount)
	assert.Equal(t, int64(9), report.Metrics().ReadCount, "reading stops at the sixth rejection")
	assert.Less(t, report.Metrics().WriteCount, int64(10))
	// Batch [3,5,8] was written; the partial batch holding record 10 was never assembled.
	assert.Equal(t, []any{3, 5, 8}, writer.payloads())
	assert.ErrorIs(t, report.LastError(), exception.ErrRecordValidation)
}

func TestBatchJob_ReportIsStable(t *testing.T) {
	j, err := job.NewJobBuilder().Reader(item.NewSliceRecordReader("n", ints(3))).Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	first := []any{report.Status(), report.Metrics(), report.Parameters(), report.ExecutionID(), report.String()}
	for i := 0; i < 3; i++ {
		again := []any{report.Status(), report.Metrics(), report.Parameters(), report.ExecutionID(), report.String()}
		assert.Equal(t, first, again)
	}
}

func TestBatchJob_StateMachine(t *testing.T) {
	var observed []model.JobStatus
	var j *job.BatchJob
	probe := stage.ProcessorFunc(func(_ context.Context, r *model.AnyRecord) (*model.AnyRecord, error) {
		observed = append(observed, j.Status())
		return r, nil
	})
	var err error
	j, err = job.NewJobBuilder().Reader(item.NewSliceRecordReader("n", ints(2))).Processor(probe).Build()
	require.NoError(t, err)

	assert.Equal(t, model.StatusCreated, j.Status())
	report := j.Call(context.Background())
	assert.Equal(t, []model.JobStatus{model.StatusRunning, model.StatusRunning}, observed)
	assert.Equal(t, model.StatusCompleted, j.Status())
	assert.Equal(t, model.StatusCompleted, report.Status())
}

func TestBatchJob_CallTwice(t *testing.T) {
	j, err := job.NewJobBuilder().Reader(item.NewSliceRecordReader("n", ints(2))).Build()
	require.NoError(t, err)

	first := j.Call(context.Background())
	second := j.Call(context.Background())

	assert.Equal(t, model.StatusCompleted, first.Status())
	assert.Equal(t, int64(2), first.Metrics().ReadCount)
	assert.Equal(t, model.StatusFailed, second.Status())
	assert.ErrorIs(t, second.LastError(), exception.ErrJobAlreadyExecuted)
	assert.Equal(t, model.StatusCompleted, j.Status())
}

func TestBatchJob_OpenFailureClosesBothAndReadsNothing(t *testing.T) {
	reader := new(test.MockRecordReader)
	writer := new(test.MockRecordWriter)
	reader.On("Open", mock.Anything).Return(nil)
	reader.On("Close", mock.Anything).Return(nil).Once()
	writer.On("Open", mock.Anything).Return(errors.New("permission denied"))
	writer.On("Close", mock.Anything).Return(nil).Once()

	j, err := job.NewJobBuilder().Reader(reader).Writer(writer).Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	assert.Equal(t, model.StatusFailed, report.Status())
	assert.ErrorContains(t, report.LastError(), "permission denied")
	assert.Zero(t, report.Metrics().ReadCount)
	reader.AssertNotCalled(t, "ReadRecord", mock.Anything)
	reader.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestBatchJob_ReadErrorIsFatal(t *testing.T) {
	reader := new(test.MockRecordReader)
	reader.On("Open", mock.Anything).Return(nil)
	reader.On("ReadRecord", mock.Anything).Return(test.NewTestRecord(1, "a"), nil).Once()
	reader.On("ReadRecord", mock.Anything).Return(nil, errors.New("corrupt input")).Once()
	reader.On("Close", mock.Anything).Return(nil).Once()
	writer := &batchRecorder{}

	j, err := job.NewJobBuilder().Reader(reader).Writer(writer).Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	assert.Equal(t, model.StatusFailed, report.Status())
	assert.ErrorIs(t, report.LastError(), exception.ErrRecordReading)
	assert.Equal(t, int64(1), report.Metrics().ReadCount)
	assert.Empty(t, writer.batches)
	reader.AssertExpectations(t)
}

func TestBatchJob_WriterFailureIsOneErrorEvent(t *testing.T) {
	writer := new(test.MockRecordWriter)
	writer.On("Open", mock.Anything).Return(nil)
	writer.On("WriteRecords", mock.Anything, mock.MatchedBy(func(b model.Batch) bool { return b.Header().Number() == 2 })).
		Return(errors.New("deadlock"))
	writer.On("WriteRecords", mock.Anything, mock.Anything).Return(nil)
	writer.On("Close", mock.Anything).Return(nil)

	var failedBatches []int64
	hooks := &writeFailureListener{onFailure: func(b model.Batch) { failedBatches = append(failedBatches, b.Header().Number()) }}

	j, err := job.NewJobBuilder().
		BatchSize(3).
		Reader(item.NewSliceRecordReader("n", ints(7))).
		Writer(writer).
		Listener(hooks).
		Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	assert.Equal(t, model.StatusCompleted, report.Status())
	assert.Equal(t, int64(1), report.Metrics().ErrorCount)
	assert.Equal(t, int64(4), report.Metrics().WriteCount)
	assert.Equal(t, []int64{2, 2}, failedBatches, "writer and batch listeners are both told")
	assert.Nil(t, report.LastError())
}

func TestBatchJob_WriterFailureCountsTowardsThreshold(t *testing.T) {
	writer := new(test.MockRecordWriter)
	writer.On("Open", mock.Anything).Return(nil)
	writer.On("WriteRecords", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	writer.On("Close", mock.Anything).Return(nil)

	j, err := job.NewJobBuilder().ErrorThreshold(0).Reader(item.NewSliceRecordReader("n", ints(3))).Writer(writer).Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	assert.Equal(t, model.StatusFailed, report.Status())
	assert.ErrorIs(t, report.LastError(), exception.ErrRecordWriting)
	assert.Zero(t, report.Metrics().WriteCount)
}

type writeFailureListener struct {
	listener.NoOpBatchListener
	listener.NoOpRecordWriterListener
	onFailure func(model.Batch)
}

func (l *writeFailureListener) OnBatchWritingException(_ context.Context, b model.Batch, _ error) {
	l.onFailure(b)
}

func (l *writeFailureListener) OnRecordWritingException(_ context.Context, b model.Batch, _ error) {
	l.onFailure(b)
}

func TestBatchJob_CloseFailureFailsTheRun(t *testing.T) {
	writer := new(test.MockRecordWriter)
	writer.On("Open", mock.Anything).Return(nil)
	writer.On("WriteRecords", mock.Anything, mock.Anything).Return(nil)
	writer.On("Close", mock.Anything).Return(errors.New("flush failed")).Once()

	j, err := job.NewJobBuilder().Reader(item.NewSliceRecordReader("n", ints(2))).Writer(writer).Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	assert.Equal(t, model.StatusFailed, report.Status())
	assert.ErrorContains(t, report.LastError(), "flush failed")
	assert.Equal(t, int64(2), report.Metrics().WriteCount)
	writer.AssertExpectations(t)
}

// cancellingReader cancels the job's context after handing out `after` records.
type cancellingReader struct {
	after  int
	reads  int
	cancel context.CancelFunc
}

func (r *cancellingReader) Open(context.Context) error  { return nil }
func (r *cancellingReader) Close(context.Context) error { return nil }

func (r *cancellingReader) ReadRecord(ctx context.Context) (*model.AnyRecord, error) {
	r.reads++
	if r.reads > r.after {
		r.cancel()
	}
	return test.NewTestRecord(int64(r.reads), r.reads), nil
}

func TestBatchJob_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &cancellingReader{after: 3, cancel: cancel}
	writer := new(test.MockRecordWriter)
	writer.On("Open", mock.Anything).Return(nil)
	writer.On("WriteRecords", mock.Anything, mock.Anything).Return(nil)
	writer.On("Close", mock.Anything).Return(nil).Once()

	j, err := job.NewJobBuilder().BatchSize(2).Reader(reader).Writer(writer).Build()
	require.NoError(t, err)
	report := j.Call(ctx)

	assert.Equal(t, model.StatusAborted, report.Status())
	assert.ErrorIs(t, report.LastError(), exception.ErrJobAborted)
	assert.ErrorIs(t, report.LastError(), context.Canceled)
	writer.AssertExpectations(t)
}

func TestBatchJob_CancelledWhileWritingAbortsWithoutCountingAnError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// Nobody consumes the unbuffered queue, so the first write blocks until ctx ends.
	queue := dispatch.NewBlockingQueue("stalled", 0)

	j, err := job.NewJobBuilder().
		BatchSize(2).
		ErrorThreshold(0).
		Reader(item.NewSliceRecordReader("n", ints(4))).
		Writer(dispatch.NewBlockingQueueRecordWriter(queue)).
		Build()
	require.NoError(t, err)
	report := j.Call(ctx)

	assert.Equal(t, model.StatusAborted, report.Status())
	assert.ErrorIs(t, report.LastError(), exception.ErrJobAborted)
	assert.NotErrorIs(t, report.LastError(), exception.ErrErrorThresholdExceeded)
	assert.Equal(t, int64(0), report.Metrics().ErrorCount)
	assert.Equal(t, int64(0), report.Metrics().WriteCount)
}

func TestBatchJob_CancelledDuringStageAbortsWithoutCountingAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	processor := stage.ProcessorFunc(func(ctx context.Context, r *model.AnyRecord) (*model.AnyRecord, error) {
		if r.Header().Number() == 2 {
			cancel()
			return nil, ctx.Err()
		}
		return r, nil
	})
	writer := &batchRecorder{}

	j, err := job.NewJobBuilder().
		ErrorThreshold(0).
		Reader(item.NewSliceRecordReader("n", ints(3))).
		Processor(processor).
		Writer(writer).
		Build()
	require.NoError(t, err)
	report := j.Call(ctx)

	assert.Equal(t, model.StatusAborted, report.Status())
	assert.ErrorIs(t, report.LastError(), exception.ErrJobAborted)
	assert.Equal(t, int64(0), report.Metrics().ErrorCount)
	assert.Empty(t, writer.batches)
}

func TestBatchJob_PoisonStopsReadingAndIsPropagatedOnce(t *testing.T) {
	writer := &batchRecorder{}
	reader := item.NewPoisonTerminatedReader(item.NewSliceRecordReader("n", ints(3)))

	j, err := job.NewJobBuilder().BatchSize(2).Reader(reader).Writer(writer).Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	assert.Equal(t, model.StatusCompleted, report.Status())
	assert.Equal(t, int64(3), report.Metrics().ReadCount, "the poison record is not counted")
	assert.Equal(t, []any{1, 2, 3}, writer.payloads())
	assert.Equal(t, 1, writer.poisons)
}

// journal records listener hooks in call order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, s)
}

type journalListener struct{ j *journal }

func (l journalListener) BeforeJob(context.Context, model.JobParameters) { l.j.add("BeforeJob") }
func (l journalListener) AfterJob(context.Context, *model.JobReport)     { l.j.add("AfterJob") }
func (l journalListener) BeforeBatchReading(context.Context)             { l.j.add("BeforeBatchReading") }
func (l journalListener) AfterBatchProcessing(context.Context, model.Batch) {
	l.j.add("AfterBatchProcessing")
}
func (l journalListener) AfterBatchWriting(context.Context, model.Batch) { l.j.add("AfterBatchWriting") }
func (l journalListener) OnBatchWritingException(context.Context, model.Batch, error) {
	l.j.add("OnBatchWritingException")
}
func (l journalListener) BeforeRecordReading(context.Context) { l.j.add("BeforeRecordReading") }
func (l journalListener) AfterRecordReading(_ context.Context, r *model.AnyRecord) {
	if r == nil {
		l.j.add("AfterRecordReading(end)")
		return
	}
	l.j.add("AfterRecordReading")
}
func (l journalListener) OnRecordReadingException(context.Context, error) {
	l.j.add("OnRecordReadingException")
}
func (l journalListener) BeforeRecordWriting(context.Context, model.Batch) { l.j.add("BeforeRecordWriting") }
func (l journalListener) AfterRecordWriting(context.Context, model.Batch)  { l.j.add("AfterRecordWriting") }
func (l journalListener) OnRecordWritingException(context.Context, model.Batch, error) {
	l.j.add("OnRecordWritingException")
}
func (l journalListener) BeforeRecordProcessing(_ context.Context, r *model.AnyRecord) *model.AnyRecord {
	l.j.add("BeforeRecordProcessing")
	return r
}
func (l journalListener) AfterRecordProcessing(context.Context, *model.AnyRecord, *model.AnyRecord) {
	l.j.add("AfterRecordProcessing")
}
func (l journalListener) OnRecordProcessingException(context.Context, *model.AnyRecord, error) {
	l.j.add("OnRecordProcessingException")
}

func TestBatchJob_ListenerHookSequence(t *testing.T) {
	log := &journal{}
	j, err := job.NewJobBuilder().
		BatchSize(5).
		Reader(item.NewSliceRecordReader("n", ints(2))).
		Validator(rejectNumbers(2)).
		Listener(journalListener{j: log}).
		Build()
	require.NoError(t, err)
	j.Call(context.Background())

	assert.Equal(t, []string{
		"BeforeJob",
		"BeforeBatchReading",
		"BeforeRecordReading", "AfterRecordReading", "BeforeRecordProcessing", "AfterRecordProcessing",
		"BeforeRecordReading", "AfterRecordReading", "BeforeRecordProcessing", "OnRecordProcessingException",
		"BeforeRecordReading", "AfterRecordReading(end)",
		"AfterBatchProcessing", "BeforeRecordWriting", "AfterRecordWriting", "AfterBatchWriting",
		"AfterJob",
	}, log.entries)
}

type dropAllPipelineListener struct{ listener.NoOpPipelineListener }

func (dropAllPipelineListener) BeforeRecordProcessing(context.Context, *model.AnyRecord) *model.AnyRecord {
	return nil
}

func TestBatchJob_PipelineListenerCanDropRecords(t *testing.T) {
	writer := &batchRecorder{}
	j, err := job.NewJobBuilder().
		Reader(item.NewSliceRecordReader("n", ints(4))).
		PipelineListener(dropAllPipelineListener{}).
		Writer(writer).
		Build()
	require.NoError(t, err)
	report := j.Call(context.Background())

	assert.Equal(t, int64(4), report.Metrics().FilterCount)
	assert.Empty(t, writer.batches)
}

func TestBatchJob_CompletionSignaler(t *testing.T) {
	signaler := listener.NewJobCompletionSignaler()
	j, err := job.NewJobBuilder().Reader(item.NewSliceRecordReader("n", ints(1))).JobListener(signaler).Build()
	require.NoError(t, err)

	go j.Call(context.Background())
	select {
	case <-signaler.Done():
		assert.Equal(t, model.StatusCompleted, signaler.Report().Status())
	case <-time.After(5 * time.Second):
		t.Fatal("job did not signal completion")
	}
}
