package job

import (
	"context"
	"errors"
	"fmt"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/policy"
	"github.com/tigerroll/surfin-record/pkg/batch/listener"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

// JobBuilder assembles a BatchJob. Parameters and components are only settable here;
// a built job cannot be reconfigured.
//
//	j, err := job.NewJobBuilder().
//		Named("import-people").
//		BatchSize(100).
//		ErrorThreshold(10).
//		Reader(reader).
//		Mapper(mapper).
//		Validator(validator).
//		Writer(writer).
//		Build()
type JobBuilder struct {
	parameters model.JobParameters
	reader     port.RecordReader
	writer     port.RecordWriter
	stages     stageChain

	jobListeners      []port.JobListener
	batchListeners    []port.BatchListener
	readerListeners   []port.RecordReaderListener
	writerListeners   []port.RecordWriterListener
	pipelineListeners []port.PipelineListener

	metricRecorder metrics.MetricRecorder
	tracer         metrics.Tracer
	errs           []error
}

// NewJobBuilder creates a builder with default parameters.
func NewJobBuilder() *JobBuilder {
	return &JobBuilder{parameters: model.NewJobParameters()}
}

// Named sets the job name.
func (b *JobBuilder) Named(name string) *JobBuilder {
	b.parameters.Name = name
	return b
}

// BatchSize sets the maximum number of records per batch.
func (b *JobBuilder) BatchSize(size int) *JobBuilder {
	b.parameters.BatchSize = size
	return b
}

// ErrorThreshold sets the number of errors tolerated before the job fails.
func (b *JobBuilder) ErrorThreshold(threshold int64) *JobBuilder {
	b.parameters.ErrorThreshold = threshold
	return b
}

// EnableMonitoring turns metric recording on or off.
func (b *JobBuilder) EnableMonitoring(enabled bool) *JobBuilder {
	b.parameters.MonitoringEnabled = enabled
	return b
}

// FromConfig seeds name, batch size, error threshold and monitoring from the
// configured defaults. Later calls to the individual setters override them.
func (b *JobBuilder) FromConfig(cfg config.BatchConfig) *JobBuilder {
	if cfg.JobName != "" {
		b.parameters.Name = cfg.JobName
	}
	if cfg.BatchSize > 0 {
		b.parameters.BatchSize = cfg.BatchSize
	}
	b.parameters.ErrorThreshold = cfg.ErrorThreshold
	b.parameters.MonitoringEnabled = cfg.MonitoringEnabled
	return b
}

// Parameters replaces all parameters at once.
func (b *JobBuilder) Parameters(parameters model.JobParameters) *JobBuilder {
	b.parameters = parameters
	return b
}

// Reader sets the record reader. It is required.
func (b *JobBuilder) Reader(reader port.RecordReader) *JobBuilder {
	b.reader = reader
	return b
}

// Writer sets the record writer. Without one, batches are discarded.
func (b *JobBuilder) Writer(writer port.RecordWriter) *JobBuilder {
	b.writer = writer
	return b
}

// Filter appends a filter stage.
func (b *JobBuilder) Filter(filter port.RecordFilter) *JobBuilder {
	if b.require(filter, "filter") {
		b.stages = append(b.stages, recordStage{module: "filter", kind: exception.ErrRecordFiltering, apply: filter.Filter})
	}
	return b
}

// Mapper appends a mapper stage.
func (b *JobBuilder) Mapper(mapper port.RecordMapper) *JobBuilder {
	if b.require(mapper, "mapper") {
		b.stages = append(b.stages, recordStage{module: "mapper", kind: exception.ErrRecordMapping, apply: mapper.MapRecord})
	}
	return b
}

// Validator appends a validator stage.
func (b *JobBuilder) Validator(validator port.RecordValidator) *JobBuilder {
	if b.require(validator, "validator") {
		b.stages = append(b.stages, recordStage{module: "validator", kind: exception.ErrRecordValidation, apply: validator.ValidateRecord})
	}
	return b
}

// Processor appends a processor stage.
func (b *JobBuilder) Processor(processor port.RecordProcessor) *JobBuilder {
	if b.require(processor, "processor") {
		b.stages = append(b.stages, recordStage{module: "processor", kind: exception.ErrRecordProcessing, apply: processor.ProcessRecord})
	}
	return b
}

// JobListener registers a job listener.
func (b *JobBuilder) JobListener(l port.JobListener) *JobBuilder {
	b.jobListeners = append(b.jobListeners, l)
	return b
}

// BatchListener registers a batch listener.
func (b *JobBuilder) BatchListener(l port.BatchListener) *JobBuilder {
	b.batchListeners = append(b.batchListeners, l)
	return b
}

// ReaderListener registers a record reader listener.
func (b *JobBuilder) ReaderListener(l port.RecordReaderListener) *JobBuilder {
	b.readerListeners = append(b.readerListeners, l)
	return b
}

// WriterListener registers a record writer listener.
func (b *JobBuilder) WriterListener(l port.RecordWriterListener) *JobBuilder {
	b.writerListeners = append(b.writerListeners, l)
	return b
}

// PipelineListener registers a pipeline listener.
func (b *JobBuilder) PipelineListener(l port.PipelineListener) *JobBuilder {
	b.pipelineListeners = append(b.pipelineListeners, l)
	return b
}

// Listener registers l for every listener interface it implements. It is an error
// to pass a value that implements none of them.
func (b *JobBuilder) Listener(l interface{}) *JobBuilder {
	matched := false
	if v, ok := l.(port.JobListener); ok {
		b.JobListener(v)
		matched = true
	}
	if v, ok := l.(port.BatchListener); ok {
		b.BatchListener(v)
		matched = true
	}
	if v, ok := l.(port.RecordReaderListener); ok {
		b.ReaderListener(v)
		matched = true
	}
	if v, ok := l.(port.RecordWriterListener); ok {
		b.WriterListener(v)
		matched = true
	}
	if v, ok := l.(port.PipelineListener); ok {
		b.PipelineListener(v)
		matched = true
	}
	if !matched {
		b.errs = append(b.errs, fmt.Errorf("%T implements no listener interface", l))
	}
	return b
}

// MetricRecorder sets the recorder used when monitoring is enabled.
func (b *JobBuilder) MetricRecorder(r metrics.MetricRecorder) *JobBuilder {
	b.metricRecorder = r
	return b
}

// Tracer sets the tracer used for job and batch spans.
func (b *JobBuilder) Tracer(t metrics.Tracer) *JobBuilder {
	b.tracer = t
	return b
}

func (b *JobBuilder) require(component interface{}, kind string) bool {
	if component == nil {
		b.errs = append(b.errs, fmt.Errorf("%s must not be nil", kind))
		return false
	}
	return true
}

// Build validates the configuration and returns the job.
func (b *JobBuilder) Build() (*BatchJob, error) {
	errs := append([]error(nil), b.errs...)
	if err := b.parameters.Validate(); err != nil {
		errs = append(errs, err)
	}
	if b.reader == nil {
		errs = append(errs, errors.New("a record reader is required"))
	}
	if len(errs) > 0 {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("invalid configuration for job '%s'", b.parameters.Name), errors.Join(append([]error{exception.ErrJobMisconfigured}, errs...)...), false, false)
	}

	writer := b.writer
	if writer == nil {
		writer = discardWriter{}
	}
	recorder := b.metricRecorder
	if recorder == nil || !b.parameters.MonitoringEnabled {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	tracer := b.tracer
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}

	return &BatchJob{
		executionID:      model.NewID(),
		parameters:       b.parameters,
		reader:           b.reader,
		writer:           writer,
		stages:           append(stageChain(nil), b.stages...),
		threshold:        policy.NewErrorThresholdPolicy(b.parameters.ErrorThreshold),
		jobListener:      listener.NewCompositeJobListener(b.jobListeners...),
		batchListener:    listener.NewCompositeBatchListener(b.batchListeners...),
		readerListener:   listener.NewCompositeRecordReaderListener(b.readerListeners...),
		writerListener:   listener.NewCompositeRecordWriterListener(b.writerListeners...),
		pipelineListener: listener.NewCompositePipelineListener(b.pipelineListeners...),
		metricRecorder:   recorder,
		tracer:           tracer,
		status:           model.StatusCreated,
		batchSeq:         model.NewHeaderSequence(b.parameters.Name),
	}, nil
}

// discardWriter is used when no writer is configured.
type discardWriter struct{}

func (discardWriter) Open(context.Context) error                     { return nil }
func (discardWriter) WriteRecords(context.Context, model.Batch) error { return nil }
func (discardWriter) Close(context.Context) error                    { return nil }
