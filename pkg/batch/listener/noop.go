package listener

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// The NoOp types implement every hook of a listener interface as a no-op.
// Embed them to implement only the hooks you need.

type NoOpJobListener struct{}

func (NoOpJobListener) BeforeJob(context.Context, model.JobParameters) {}
func (NoOpJobListener) AfterJob(context.Context, *model.JobReport)     {}

type NoOpBatchListener struct{}

func (NoOpBatchListener) BeforeBatchReading(context.Context)                          {}
func (NoOpBatchListener) AfterBatchProcessing(context.Context, model.Batch)           {}
func (NoOpBatchListener) AfterBatchWriting(context.Context, model.Batch)              {}
func (NoOpBatchListener) OnBatchWritingException(context.Context, model.Batch, error) {}

type NoOpRecordReaderListener struct{}

func (NoOpRecordReaderListener) BeforeRecordReading(context.Context)                  {}
func (NoOpRecordReaderListener) AfterRecordReading(context.Context, *model.AnyRecord) {}
func (NoOpRecordReaderListener) OnRecordReadingException(context.Context, error)      {}

type NoOpRecordWriterListener struct{}

func (NoOpRecordWriterListener) BeforeRecordWriting(context.Context, model.Batch)             {}
func (NoOpRecordWriterListener) AfterRecordWriting(context.Context, model.Batch)              {}
func (NoOpRecordWriterListener) OnRecordWritingException(context.Context, model.Batch, error) {}

type NoOpPipelineListener struct{}

func (NoOpPipelineListener) BeforeRecordProcessing(_ context.Context, record *model.AnyRecord) *model.AnyRecord {
	return record
}
func (NoOpPipelineListener) AfterRecordProcessing(context.Context, *model.AnyRecord, *model.AnyRecord) {
}
func (NoOpPipelineListener) OnRecordProcessingException(context.Context, *model.AnyRecord, error) {}

var (
	_ port.JobListener          = NoOpJobListener{}
	_ port.BatchListener        = NoOpBatchListener{}
	_ port.RecordReaderListener = NoOpRecordReaderListener{}
	_ port.RecordWriterListener = NoOpRecordWriterListener{}
	_ port.PipelineListener     = NoOpPipelineListener{}
)
