package metrics

import (
	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// NewMetricsListenerBuilder creates a ComponentBuilder for MetricsListener.
func NewMetricsListenerBuilder(recorder metrics.MetricRecorder) jsl.ComponentBuilder {
	return func(_ *config.Config, _ map[string]string) (interface{}, error) {
		return NewMetricsListener(recorder), nil
	}
}

// metricsListenerBuilders receives the metrics listener builders from Fx.
type metricsListenerBuilders struct {
	fx.In
	MetricsListener jsl.ComponentBuilder `name:"metricsListener"`
}

// RegisterMetricsListeners registers the metrics listener builders with the JobFactory.
func RegisterMetricsListeners(jf *support.JobFactory, builders metricsListenerBuilders) {
	jf.RegisterComponentBuilder("metricsListener", builders.MetricsListener)
	logger.Debugf("Metrics listeners registered with JobFactory.")
}

// Module aggregates the metrics listener components.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewMetricsListenerBuilder, fx.ResultTags(`name:"metricsListener"`))),
	fx.Invoke(RegisterMetricsListeners),
)
