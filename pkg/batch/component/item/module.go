package item

import (
	"time"

	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/policy"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// valuesReaderProperties configures the "valuesReader" component.
type valuesReaderProperties struct {
	Source string   `yaml:"source"`
	Values []string `yaml:"values"`
	// Poison appends a poison record after the last value.
	Poison bool `yaml:"poison"`
}

// NewValuesReaderComponentBuilder creates a builder for a reader over a comma-separated
// list of string values.
func NewValuesReaderComponentBuilder() jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		props := valuesReaderProperties{Source: "values"}
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		reader := NewSliceRecordReader(props.Source, props.Values)
		if props.Poison {
			return NewPoisonTerminatedReader(reader), nil
		}
		return reader, nil
	}
}

// NewNoOpRecordWriterComponentBuilder creates a builder for NoOpRecordWriter.
func NewNoOpRecordWriterComponentBuilder() jsl.ComponentBuilder {
	return func(_ *config.Config, _ map[string]string) (interface{}, error) {
		return NewNoOpRecordWriter(), nil
	}
}

type loggingWriterProperties struct {
	Prefix string `yaml:"prefix"`
	// Retry wraps the writer with the configured retry policy.
	Retry bool `yaml:"retry"`
}

// NewLoggingRecordWriterComponentBuilder creates a builder for LoggingRecordWriter.
func NewLoggingRecordWriterComponentBuilder() jsl.ComponentBuilder {
	return func(cfg *config.Config, properties map[string]string) (interface{}, error) {
		var props loggingWriterProperties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		writer := NewLoggingRecordWriter(props.Prefix)
		if props.Retry {
			return NewRetryingRecordWriter(writer, RetryPolicyFromConfig(cfg.Surfin.Batch.Retry)), nil
		}
		return writer, nil
	}
}

// RetryPolicyFromConfig converts the millisecond-based configuration to a retry policy.
func RetryPolicyFromConfig(c config.RetryConfig) policy.RetryPolicy {
	return policy.NewRetryPolicy(policy.RetryConfig{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: time.Duration(c.InitialInterval) * time.Millisecond,
		MaxInterval:     time.Duration(c.MaxInterval) * time.Millisecond,
		Factor:          c.Factor,
		RetryableErrors: c.RetryableErrors,
	})
}

// genericItemBuilders receives the generic component builders from Fx.
type genericItemBuilders struct {
	fx.In
	ValuesReader  jsl.ComponentBuilder `name:"valuesReader"`
	NoOpWriter    jsl.ComponentBuilder `name:"noOpRecordWriter"`
	LoggingWriter jsl.ComponentBuilder `name:"loggingRecordWriter"`
}

// RegisterGenericItemBuilders registers the generic component builders with the JobFactory.
func RegisterGenericItemBuilders(jf *support.JobFactory, builders genericItemBuilders) {
	names := map[string]jsl.ComponentBuilder{
		"valuesReader":        builders.ValuesReader,
		"noOpRecordWriter":    builders.NoOpWriter,
		"loggingRecordWriter": builders.LoggingWriter,
	}
	for name, b := range names {
		jf.RegisterComponentBuilder(name, b)
	}
	logger.Debugf("%d generic item components were registered with JobFactory.", len(names))
}

// Module defines Fx options for the generic readers and writers.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewValuesReaderComponentBuilder,
		fx.ResultTags(`name:"valuesReader"`),
	)),
	fx.Provide(fx.Annotate(
		NewNoOpRecordWriterComponentBuilder,
		fx.ResultTags(`name:"noOpRecordWriter"`),
	)),
	fx.Provide(fx.Annotate(
		NewLoggingRecordWriterComponentBuilder,
		fx.ResultTags(`name:"loggingRecordWriter"`),
	)),
	fx.Invoke(RegisterGenericItemBuilders),
)
