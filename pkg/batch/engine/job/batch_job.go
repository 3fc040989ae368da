// Package job implements the job execution core: a single-shot pipeline that reads
// records, runs them through filter, mapper, validator and processor stages, groups
// them into batches, writes the batches and reports the outcome.
package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/policy"
	"github.com/tigerroll/surfin-record/pkg/batch/listener"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

const moduleName = "job"

// BatchJob is the execution core. It is built with a JobBuilder and runs once:
// CREATED -> OPENED -> RUNNING -> COMPLETED | FAILED | ABORTED.
//
// A BatchJob, its stages and its metrics belong to the goroutine that calls Call.
// Run parallel work with separate BatchJob instances.
type BatchJob struct {
	executionID string
	parameters  model.JobParameters

	reader    port.RecordReader
	writer    port.RecordWriter
	stages    stageChain
	threshold policy.ErrorThresholdPolicy

	jobListener      *listener.CompositeJobListener
	batchListener    *listener.CompositeBatchListener
	readerListener   *listener.CompositeRecordReaderListener
	writerListener   *listener.CompositeRecordWriterListener
	pipelineListener *listener.CompositePipelineListener

	metricRecorder metrics.MetricRecorder
	tracer         metrics.Tracer

	executed   atomic.Bool
	statusMu   sync.RWMutex
	status     model.JobStatus
	jobMetrics model.JobMetrics
	batchSeq   *model.HeaderSequence
	poison     *model.AnyRecord
}

var _ port.Job = (*BatchJob)(nil)

// Name returns the job's name.
func (j *BatchJob) Name() string { return j.parameters.Name }

// ExecutionID returns the identifier reported for this job's run.
func (j *BatchJob) ExecutionID() string { return j.executionID }

// Parameters returns the parameters the job was built with.
func (j *BatchJob) Parameters() model.JobParameters { return j.parameters }

// Status returns the current state of the job. It is safe to call from any goroutine.
func (j *BatchJob) Status() model.JobStatus {
	j.statusMu.RLock()
	defer j.statusMu.RUnlock()
	return j.status
}

func (j *BatchJob) transition(next model.JobStatus) {
	j.statusMu.Lock()
	defer j.statusMu.Unlock()
	if !j.status.CanTransitionTo(next) {
		logger.Warnf("Job '%s': ignoring illegal transition %s -> %s.", j.parameters.Name, j.status, next)
		return
	}
	if j.status != next {
		logger.Debugf("Job '%s': %s -> %s", j.parameters.Name, j.status, next)
	}
	j.status = next
}

// Call runs the job and returns its report. Record-level failures never escape:
// the report's status and last error describe the outcome. Calling Call a second
// time returns a FAILED report without doing anything.
//
// Cancelling ctx stops the job between records; the report is then ABORTED.
func (j *BatchJob) Call(ctx context.Context) *model.JobReport {
	if !j.executed.CompareAndSwap(false, true) {
		now := time.Now()
		err := exception.NewBatchError(moduleName, fmt.Sprintf("job '%s' can only be called once", j.parameters.Name), exception.ErrJobAlreadyExecuted, false, false)
		logger.Errorf("%v", err)
		return model.NewJobReport(model.NewID(), j.parameters, model.JobMetrics{StartTime: now, EndTime: now}, model.StatusFailed, err)
	}

	ctx, endSpan := j.tracer.StartJobSpan(ctx, j.parameters)
	defer endSpan()

	j.jobMetrics.StartTime = time.Now()
	logger.Infof("Job '%s' starting (execution id: %s, %s).", j.parameters.Name, j.executionID, j.parameters)
	j.metricRecorder.RecordJobStart(ctx, j.parameters)
	j.jobListener.BeforeJob(ctx, j.parameters)

	err := j.run(ctx)
	return j.complete(ctx, err)
}

// run opens the reader and writer, processes every batch, and closes both exactly once.
func (j *BatchJob) run(ctx context.Context) (err error) {
	defer func() {
		err = j.closeAll(context.WithoutCancel(ctx), err)
	}()

	if err = j.open(ctx); err != nil {
		return err
	}
	j.transition(model.StatusOpened)

	return j.process(ctx)
}

func (j *BatchJob) open(ctx context.Context) error {
	if err := j.reader.Open(ctx); err != nil {
		return exception.NewBatchError("reader", "failed to open record reader", err, false, false)
	}
	if err := j.writer.Open(ctx); err != nil {
		return exception.NewBatchError("writer", "failed to open record writer", err, false, false)
	}
	return nil
}

// closeAll closes the writer and then the reader. Close failures fail an otherwise
// successful run and are appended to an existing failure.
func (j *BatchJob) closeAll(ctx context.Context, runErr error) error {
	var closeErrs *multierror.Error
	if err := j.writer.Close(ctx); err != nil {
		closeErrs = multierror.Append(closeErrs, exception.NewBatchError("writer", "failed to close record writer", err, false, false))
	}
	if err := j.reader.Close(ctx); err != nil {
		closeErrs = multierror.Append(closeErrs, exception.NewBatchError("reader", "failed to close record reader", err, false, false))
	}
	if closeErrs.ErrorOrNil() == nil {
		return runErr
	}
	if runErr == nil {
		return closeErrs.ErrorOrNil()
	}
	return multierror.Append(runErr, closeErrs.Errors...)
}

// process reads, processes and writes batches until the input ends, a poison record
// arrives, or a fatal error occurs.
func (j *BatchJob) process(ctx context.Context) error {
	for {
		records, endOfInput, err := j.readBatch(ctx)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			if err := j.writeBatch(ctx, records); err != nil {
				return err
			}
		}
		if endOfInput {
			break
		}
	}
	if j.poison != nil {
		return j.propagatePoison(ctx)
	}
	return nil
}

// readBatch assembles up to BatchSize surviving records.
func (j *BatchJob) readBatch(ctx context.Context) (records []*model.AnyRecord, endOfInput bool, err error) {
	j.batchListener.BeforeBatchReading(ctx)
	records = make([]*model.AnyRecord, 0, j.parameters.BatchSize)

	for len(records) < j.parameters.BatchSize {
		if ctx.Err() != nil {
			return nil, false, j.abortError(ctx)
		}
		record, err := j.readRecord(ctx)
		if err != nil {
			return nil, false, err
		}
		if record == nil {
			return records, true, nil
		}
		if record.IsPoison() {
			logger.Infof("Job '%s' received a poison record (#%d), stopping.", j.parameters.Name, record.Header().Number())
			j.poison = record
			return records, true, nil
		}

		j.jobMetrics.ReadCount++
		j.metricRecorder.RecordRecordRead(ctx, j.parameters.Name)

		output, err := j.processRecord(ctx, record)
		if err != nil {
			if ctx.Err() != nil {
				return nil, false, j.abortError(ctx)
			}
			if fatal := j.recordError(ctx, moduleOf(err), err); fatal != nil {
				return nil, false, fatal
			}
			continue
		}
		if output == nil {
			j.jobMetrics.FilterCount++
			j.metricRecorder.RecordRecordFilter(ctx, j.parameters.Name)
			continue
		}
		records = append(records, output)
	}
	return records, false, nil
}

func (j *BatchJob) readRecord(ctx context.Context) (*model.AnyRecord, error) {
	if j.Status() == model.StatusOpened {
		j.transition(model.StatusRunning)
	}

	j.readerListener.BeforeRecordReading(ctx)
	record, err := j.reader.ReadRecord(ctx)
	if errors.Is(err, port.ErrNoMoreRecords) || errors.Is(err, io.EOF) {
		record, err = nil, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, j.abortError(ctx)
		}
		j.readerListener.OnRecordReadingException(ctx, err)
		return nil, exception.NewBatchError("reader", "failed to read record", errors.Join(exception.ErrRecordReading, err), false, false)
	}
	j.readerListener.AfterRecordReading(ctx, record)
	return record, nil
}

func (j *BatchJob) processRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	input := j.pipelineListener.BeforeRecordProcessing(ctx, record)
	if input == nil {
		j.pipelineListener.AfterRecordProcessing(ctx, record, nil)
		return nil, nil
	}
	output, err := j.stages.apply(ctx, input)
	if err != nil {
		j.pipelineListener.OnRecordProcessingException(ctx, input, err)
		return nil, err
	}
	j.pipelineListener.AfterRecordProcessing(ctx, input, output)
	return output, nil
}

// recordError counts one error event and returns a non-nil error if it pushed the
// job past its error threshold.
func (j *BatchJob) recordError(ctx context.Context, module string, err error) error {
	j.jobMetrics.ErrorCount++
	j.metricRecorder.RecordRecordError(ctx, j.parameters.Name, module)
	j.tracer.RecordError(ctx, module, err)

	if !j.threshold.IsExceeded(j.jobMetrics.ErrorCount) {
		logger.Warnf("Job '%s': %v (error %d tolerated).", j.parameters.Name, err, j.jobMetrics.ErrorCount)
		return nil
	}
	message := fmt.Sprintf("error count %d exceeded threshold %d", j.jobMetrics.ErrorCount, j.threshold.Threshold())
	return exception.NewBatchError(moduleName, message, errors.Join(exception.ErrErrorThresholdExceeded, err), false, false)
}

// writeBatch hands one batch to the writer. A writer failure fails the whole batch
// and counts as a single error event, unless ctx was cancelled while writing, which
// aborts the job.
func (j *BatchJob) writeBatch(ctx context.Context, records []*model.AnyRecord) error {
	batch := model.NewBatch(j.batchSeq.Next(), records...)
	number := batch.Header().Number()
	j.batchListener.AfterBatchProcessing(ctx, batch)

	batchCtx, endSpan := j.tracer.StartBatchSpan(ctx, j.parameters.Name, number)
	defer endSpan()

	j.writerListener.BeforeRecordWriting(batchCtx, batch)
	start := time.Now()
	if err := j.writer.WriteRecords(batchCtx, batch); err != nil {
		writeErr := exception.NewBatchError("writer", fmt.Sprintf("batch #%d (%d records)", number, batch.Size()), errors.Join(exception.ErrRecordWriting, err), false, false)
		j.writerListener.OnRecordWritingException(batchCtx, batch, writeErr)
		j.batchListener.OnBatchWritingException(batchCtx, batch, writeErr)
		if ctx.Err() != nil {
			return j.abortError(ctx)
		}
		return j.recordError(batchCtx, "writer", writeErr)
	}
	j.jobMetrics.WriteCount += int64(batch.Size())
	j.metricRecorder.RecordBatchWrite(batchCtx, j.parameters.Name, batch.Size(), time.Since(start))
	j.writerListener.AfterRecordWriting(batchCtx, batch)
	j.batchListener.AfterBatchWriting(batchCtx, batch)
	logger.Debugf("Job '%s': wrote batch #%d (%d records).", j.parameters.Name, number, batch.Size())
	return nil
}

func (j *BatchJob) propagatePoison(ctx context.Context) error {
	propagator, ok := j.writer.(port.PoisonPropagator)
	if !ok {
		return nil
	}
	if err := propagator.PropagatePoison(ctx, j.poison); err != nil {
		return exception.NewBatchError("writer", "failed to propagate poison record", err, false, false)
	}
	return nil
}

func (j *BatchJob) abortError(ctx context.Context) error {
	return exception.NewBatchError(moduleName, fmt.Sprintf("job '%s' aborted", j.parameters.Name), errors.Join(exception.ErrJobAborted, context.Cause(ctx)), false, false)
}

// complete moves the job to its terminal state, builds the report and notifies listeners.
func (j *BatchJob) complete(ctx context.Context, err error) *model.JobReport {
	status := model.StatusCompleted
	switch {
	case err == nil:
	case errors.Is(err, exception.ErrJobAborted):
		status = model.StatusAborted
	default:
		status = model.StatusFailed
	}
	j.transition(status)
	j.jobMetrics.EndTime = time.Now()

	report := model.NewJobReport(j.executionID, j.parameters, j.jobMetrics, status, err)
	if err != nil {
		j.tracer.RecordError(ctx, moduleName, err)
		logger.Errorf("Job '%s' finished with status %s: %v", j.parameters.Name, status, err)
	} else {
		logger.Infof("Job '%s' finished with status %s (read=%d, written=%d, filtered=%d, errors=%d) in %s.",
			j.parameters.Name, status, j.jobMetrics.ReadCount, j.jobMetrics.WriteCount,
			j.jobMetrics.FilterCount, j.jobMetrics.ErrorCount, j.jobMetrics.Duration())
	}

	j.jobListener.AfterJob(ctx, report)
	j.metricRecorder.RecordJobEnd(ctx, report)
	return report
}
