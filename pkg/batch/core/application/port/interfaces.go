// Package port defines the capability interfaces of the record batch framework:
// the stages a job is assembled from, the listeners it notifies, and the contracts
// used to run and compose jobs.
package port

import (
	"context"
	"errors"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// ErrNoMoreRecords may be returned by a RecordReader to signal the end of its input.
// Returning a nil record with a nil error means the same thing.
var ErrNoMoreRecords = errors.New("no more records to read")

// RecordReader is the source of a job's records.
type RecordReader interface {
	// Open prepares the reader. It is called once, before the first read.
	//
	// Parameters:
	//   ctx: The context for the operation.
	//
	// Returns:
	//   error: An error if the data source cannot be opened. The job then fails without reading.
	Open(ctx context.Context) error
	// ReadRecord returns the next record. A nil record (or ErrNoMoreRecords / io.EOF)
	// signals the end of the input and is not an error. Implementations may block,
	// for instance while waiting on a queue.
	//
	// Parameters:
	//   ctx: The context for the operation.
	//
	// Returns:
	//   *model.AnyRecord: The next record, or nil at the end of the input.
	//   error: An error if the record could not be read.
	ReadRecord(ctx context.Context) (*model.AnyRecord, error)
	// Close releases the reader's resources. The job calls it exactly once, on every path.
	Close(ctx context.Context) error
}

// RecordWriter is the sink of a job's batches.
type RecordWriter interface {
	// Open prepares the writer. It is called once, before the first batch.
	Open(ctx context.Context) error
	// WriteRecords writes a whole batch. An error fails the whole batch: none of its
	// records count as written and the failure is one error event for the job.
	//
	// Parameters:
	//   ctx: The context for the operation.
	//   batch: The batch to write.
	//
	// Returns:
	//   error: An error if the batch could not be written.
	WriteRecords(ctx context.Context, batch model.Batch) error
	// Close releases the writer's resources. The job calls it exactly once, on every path.
	Close(ctx context.Context) error
}

// RecordFilter decides whether a record continues down the pipeline.
// Returning a nil record drops it; the job counts it as filtered.
type RecordFilter interface {
	Filter(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)
}

// RecordMapper turns a record into a new record, usually with a payload of another type.
// An error is a mapping failure for that record.
type RecordMapper interface {
	MapRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)
}

// RecordValidator checks a record. An error rejects the record as a validation failure.
type RecordValidator interface {
	ValidateRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)
}

// RecordProcessor applies business logic to a record before it is added to a batch.
// Returning a nil record drops it; an error is a processing failure for that record.
type RecordProcessor interface {
	ProcessRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)
}

// PoisonPropagator is implemented by writers that relay records to other jobs.
// When a job stops because it read a poison record, it hands the poison record to
// its writer through this interface once the final batch has been written.
type PoisonPropagator interface {
	PropagatePoison(ctx context.Context, poison *model.AnyRecord) error
}

// JobListener is notified around a whole job run.
type JobListener interface {
	// BeforeJob is called before the reader and writer are opened.
	BeforeJob(ctx context.Context, parameters model.JobParameters)
	// AfterJob is called with the final report, on every path.
	AfterJob(ctx context.Context, report *model.JobReport)
}

// BatchListener is notified around each batch.
type BatchListener interface {
	// BeforeBatchReading is called before the first record of a batch is read.
	BeforeBatchReading(ctx context.Context)
	// AfterBatchProcessing is called once a batch is assembled, before it is written.
	AfterBatchProcessing(ctx context.Context, batch model.Batch)
	// AfterBatchWriting is called after a batch was written successfully.
	AfterBatchWriting(ctx context.Context, batch model.Batch)
	// OnBatchWritingException is called when writing a batch failed.
	OnBatchWritingException(ctx context.Context, batch model.Batch, err error)
}

// RecordReaderListener is notified around each read.
type RecordReaderListener interface {
	BeforeRecordReading(ctx context.Context)
	// AfterRecordReading receives the record read, or nil at the end of the input.
	AfterRecordReading(ctx context.Context, record *model.AnyRecord)
	OnRecordReadingException(ctx context.Context, err error)
}

// RecordWriterListener is notified around each write. Its hooks see the batch
// boundary, which lets transactional sinks begin, commit or roll back per batch.
type RecordWriterListener interface {
	BeforeRecordWriting(ctx context.Context, batch model.Batch)
	AfterRecordWriting(ctx context.Context, batch model.Batch)
	OnRecordWritingException(ctx context.Context, batch model.Batch, err error)
}

// PipelineListener is notified around the processing of each record through the
// filter, mapper, validator and processor stages.
type PipelineListener interface {
	// BeforeRecordProcessing may replace the record; returning nil drops it.
	BeforeRecordProcessing(ctx context.Context, record *model.AnyRecord) *model.AnyRecord
	// AfterRecordProcessing receives the input record and the stage chain's output,
	// which is nil if the record was filtered.
	AfterRecordProcessing(ctx context.Context, input, output *model.AnyRecord)
	OnRecordProcessingException(ctx context.Context, record *model.AnyRecord, err error)
}

// Job is a single-shot unit of work that produces a report. Flows implement Job too,
// so they can be nested.
type Job interface {
	// Name returns the logical name of the job.
	Name() string
	// Call runs the job to completion. Failures are described by the returned report;
	// Call does not return errors.
	Call(ctx context.Context) *model.JobReport
}

// JobFuture is the pending result of a job submitted to a JobExecutor.
type JobFuture interface {
	// Done is closed when the job has finished.
	Done() <-chan struct{}
	// Get waits for the job's report, or for ctx to be done.
	Get(ctx context.Context) (*model.JobReport, error)
}

// JobExecutor runs jobs concurrently.
type JobExecutor interface {
	// Submit schedules job and returns a future for its report.
	Submit(ctx context.Context, job Job) (JobFuture, error)
}
