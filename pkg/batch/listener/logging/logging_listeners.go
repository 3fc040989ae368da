package logging

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	logger "github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// Properties configures a LoggingListener.
type Properties struct {
	// Prefix is prepended to every message.
	Prefix string `yaml:"prefix"`
	// Records logs every record read and processed at debug level.
	Records bool `yaml:"records"`
}

// --- Job Listener ---

// LoggingJobListener logs the start and the final report of a job.
type LoggingJobListener struct {
	props Properties
}

func NewLoggingJobListener(props Properties) *LoggingJobListener {
	return &LoggingJobListener{props: props}
}

func (l *LoggingJobListener) BeforeJob(ctx context.Context, parameters model.JobParameters) {
	logger.Infof("%sJobListener: BeforeJob - JobName: %s, Params: %s", l.props.Prefix, parameters.Name, parameters)
}

func (l *LoggingJobListener) AfterJob(ctx context.Context, report *model.JobReport) {
	if report.Succeeded() {
		logger.Infof("%sJobListener: AfterJob - %s", l.props.Prefix, report)
		return
	}
	logger.Warnf("%sJobListener: AfterJob - %s", l.props.Prefix, report)
}

var _ port.JobListener = (*LoggingJobListener)(nil)

// --- Batch Listener ---

// LoggingBatchListener logs each batch as it goes through the job.
type LoggingBatchListener struct {
	props Properties
}

func NewLoggingBatchListener(props Properties) *LoggingBatchListener {
	return &LoggingBatchListener{props: props}
}

func (l *LoggingBatchListener) BeforeBatchReading(ctx context.Context) {
	logger.Debugf("%sBatchListener: BeforeBatchReading", l.props.Prefix)
}

func (l *LoggingBatchListener) AfterBatchProcessing(ctx context.Context, batch model.Batch) {
	logger.Debugf("%sBatchListener: AfterBatchProcessing - %s", l.props.Prefix, batch)
}

func (l *LoggingBatchListener) AfterBatchWriting(ctx context.Context, batch model.Batch) {
	logger.Infof("%sBatchListener: AfterBatchWriting - Batch #%d, Size: %d", l.props.Prefix, batch.Header().Number(), batch.Size())
}

func (l *LoggingBatchListener) OnBatchWritingException(ctx context.Context, batch model.Batch, err error) {
	logger.Errorf("%sBatchListener: OnBatchWritingException - Batch #%d, Size: %d, Error: %v", l.props.Prefix, batch.Header().Number(), batch.Size(), err)
}

var _ port.BatchListener = (*LoggingBatchListener)(nil)

// --- Record Reader Listener ---

// LoggingRecordReaderListener logs read failures, and each record read when Records is set.
type LoggingRecordReaderListener struct {
	props Properties
}

func NewLoggingRecordReaderListener(props Properties) *LoggingRecordReaderListener {
	return &LoggingRecordReaderListener{props: props}
}

func (l *LoggingRecordReaderListener) BeforeRecordReading(ctx context.Context) {}

func (l *LoggingRecordReaderListener) AfterRecordReading(ctx context.Context, record *model.AnyRecord) {
	if !l.props.Records {
		return
	}
	if record == nil {
		logger.Debugf("%sRecordReaderListener: AfterRecordReading - end of input", l.props.Prefix)
		return
	}
	logger.Debugf("%sRecordReaderListener: AfterRecordReading - %s", l.props.Prefix, record)
}

func (l *LoggingRecordReaderListener) OnRecordReadingException(ctx context.Context, err error) {
	logger.Errorf("%sRecordReaderListener: OnRecordReadingException - %v", l.props.Prefix, err)
}

var _ port.RecordReaderListener = (*LoggingRecordReaderListener)(nil)

// --- Record Writer Listener ---

// LoggingRecordWriterListener logs writer failures.
type LoggingRecordWriterListener struct {
	props Properties
}

func NewLoggingRecordWriterListener(props Properties) *LoggingRecordWriterListener {
	return &LoggingRecordWriterListener{props: props}
}

func (l *LoggingRecordWriterListener) BeforeRecordWriting(ctx context.Context, batch model.Batch) {}

func (l *LoggingRecordWriterListener) AfterRecordWriting(ctx context.Context, batch model.Batch) {}

func (l *LoggingRecordWriterListener) OnRecordWritingException(ctx context.Context, batch model.Batch, err error) {
	logger.Errorf("%sRecordWriterListener: OnRecordWritingException - Records count: %d, Error: %v", l.props.Prefix, batch.Size(), err)
}

var _ port.RecordWriterListener = (*LoggingRecordWriterListener)(nil)

// --- Pipeline Listener ---

// LoggingPipelineListener logs record-level failures, and each processed record when Records is set.
type LoggingPipelineListener struct {
	props Properties
}

func NewLoggingPipelineListener(props Properties) *LoggingPipelineListener {
	return &LoggingPipelineListener{props: props}
}

func (l *LoggingPipelineListener) BeforeRecordProcessing(ctx context.Context, record *model.AnyRecord) *model.AnyRecord {
	return record
}

func (l *LoggingPipelineListener) AfterRecordProcessing(ctx context.Context, input, output *model.AnyRecord) {
	if !l.props.Records {
		return
	}
	if output == nil {
		logger.Debugf("%sPipelineListener: AfterRecordProcessing - %s filtered", l.props.Prefix, input)
		return
	}
	logger.Debugf("%sPipelineListener: AfterRecordProcessing - %s -> %s", l.props.Prefix, input, output)
}

func (l *LoggingPipelineListener) OnRecordProcessingException(ctx context.Context, record *model.AnyRecord, err error) {
	logger.Warnf("%sPipelineListener: OnRecordProcessingException - Record: %s, Error: %v", l.props.Prefix, record, err)
}

var _ port.PipelineListener = (*LoggingPipelineListener)(nil)
