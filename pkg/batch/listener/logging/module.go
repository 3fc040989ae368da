package logging

import (
	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// newListenerBuilder binds the JSL properties and hands them to newListener.
func newListenerBuilder[L any](newListener func(Properties) L) jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		var props Properties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		return newListener(props), nil
	}
}

// NewLoggingJobListenerBuilder creates a ComponentBuilder for LoggingJobListener.
func NewLoggingJobListenerBuilder() jsl.ComponentBuilder {
	return newListenerBuilder(NewLoggingJobListener)
}

// NewLoggingBatchListenerBuilder creates a ComponentBuilder for LoggingBatchListener.
func NewLoggingBatchListenerBuilder() jsl.ComponentBuilder {
	return newListenerBuilder(NewLoggingBatchListener)
}

// NewLoggingRecordReaderListenerBuilder creates a ComponentBuilder for LoggingRecordReaderListener.
func NewLoggingRecordReaderListenerBuilder() jsl.ComponentBuilder {
	return newListenerBuilder(NewLoggingRecordReaderListener)
}

// NewLoggingRecordWriterListenerBuilder creates a ComponentBuilder for LoggingRecordWriterListener.
func NewLoggingRecordWriterListenerBuilder() jsl.ComponentBuilder {
	return newListenerBuilder(NewLoggingRecordWriterListener)
}

// NewLoggingPipelineListenerBuilder creates a ComponentBuilder for LoggingPipelineListener.
func NewLoggingPipelineListenerBuilder() jsl.ComponentBuilder {
	return newListenerBuilder(NewLoggingPipelineListener)
}

// AllListenerBuilders is a struct to receive all listener builders from Fx.
type AllListenerBuilders struct {
	fx.In
	JobListenerBuilder          jsl.ComponentBuilder `name:"loggingJobListener"`
	BatchListenerBuilder        jsl.ComponentBuilder `name:"loggingBatchListener"`
	RecordReaderListenerBuilder jsl.ComponentBuilder `name:"loggingRecordReaderListener"`
	RecordWriterListenerBuilder jsl.ComponentBuilder `name:"loggingRecordWriterListener"`
	PipelineListenerBuilder     jsl.ComponentBuilder `name:"loggingPipelineListener"`
}

// RegisterAllListeners registers all listener builders with the JobFactory.
func RegisterAllListeners(jf *support.JobFactory, builders AllListenerBuilders) {
	jf.RegisterComponentBuilder("loggingJobListener", builders.JobListenerBuilder)
	jf.RegisterComponentBuilder("loggingBatchListener", builders.BatchListenerBuilder)
	jf.RegisterComponentBuilder("loggingRecordReaderListener", builders.RecordReaderListenerBuilder)
	jf.RegisterComponentBuilder("loggingRecordWriterListener", builders.RecordWriterListenerBuilder)
	jf.RegisterComponentBuilder("loggingPipelineListener", builders.PipelineListenerBuilder)
	logger.Debugf("All logging listeners registered with JobFactory.")
}

// Module aggregates all listener components provided by this package.
var Module = fx.Options(
	// Job Listener
	fx.Provide(fx.Annotate(NewLoggingJobListenerBuilder, fx.ResultTags(`name:"loggingJobListener"`))),
	// Batch Listener
	fx.Provide(fx.Annotate(NewLoggingBatchListenerBuilder, fx.ResultTags(`name:"loggingBatchListener"`))),
	// Record Reader Listener
	fx.Provide(fx.Annotate(NewLoggingRecordReaderListenerBuilder, fx.ResultTags(`name:"loggingRecordReaderListener"`))),
	// Record Writer Listener
	fx.Provide(fx.Annotate(NewLoggingRecordWriterListenerBuilder, fx.ResultTags(`name:"loggingRecordWriterListener"`))),
	// Pipeline Listener
	fx.Provide(fx.Annotate(NewLoggingPipelineListenerBuilder, fx.ResultTags(`name:"loggingPipelineListener"`))),

	// Register all builders
	fx.Invoke(RegisterAllListeners),
)
