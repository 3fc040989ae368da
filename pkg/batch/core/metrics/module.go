package metrics

import (
	"go.uber.org/fx"
)

// Module provides no-op fallbacks for MetricRecorder and Tracer.
// Infrastructure modules (Prometheus, OpenTelemetry) decorate these when enabled.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewNoOpMetricRecorder,
		fx.As(new(MetricRecorder)),
	)),
	fx.Provide(fx.Annotate(
		NewNoOpTracer,
		fx.As(new(Tracer)),
	)),
)
