package tracing

import (
	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	"github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	"github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// NewTracingListenerBuilder creates a ComponentBuilder for TracingListener.
func NewTracingListenerBuilder(tracer metrics.Tracer) jsl.ComponentBuilder {
	return func(_ *config.Config, _ map[string]string) (interface{}, error) {
		return NewTracingListener(tracer), nil
	}
}

// tracingListenerBuilders receives the tracing listener builders from Fx.
type tracingListenerBuilders struct {
	fx.In
	Listener jsl.ComponentBuilder `name:"tracingListener"`
}

// RegisterAllTracingListeners registers all tracing listener builders with the JobFactory.
func RegisterAllTracingListeners(jf *support.JobFactory, builders tracingListenerBuilders) {
	jf.RegisterComponentBuilder("tracingListener", builders.Listener)
	logger.Debugf("All tracing listeners registered with JobFactory.")
}

// Module provides tracing-related components.
// The Tracer itself comes from the infrastructure layer (pkg/batch/infrastructure/metrics).
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewTracingListenerBuilder, fx.ResultTags(`name:"tracingListener"`))),
	fx.Invoke(RegisterAllTracingListeners),
)
