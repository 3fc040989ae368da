package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	listenermetrics "github.com/tigerroll/surfin-record/pkg/batch/listener/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// Metric backends accepted in MetricsConfig.Backend.
const (
	BackendPrometheus = "prometheus"
	BackendOtel       = "otel"
	BackendLog        = "log"
)

// DecorateMetricRecorder replaces the no-op MetricRecorder with the configured backend
// when metrics are enabled, and wraps it asynchronously when metrics.async is set.
// Providers and servers it creates are shut down with the application.
func DecorateMetricRecorder(lc fx.Lifecycle, cfg *config.Config, fallback metrics.MetricRecorder) (metrics.MetricRecorder, error) {
	mc := cfg.Surfin.Metrics
	if !mc.Enabled {
		return fallback, nil
	}

	var recorder metrics.MetricRecorder
	switch mc.Backend {
	case BackendPrometheus, "":
		prom := NewPrometheusRecorder(mc.Namespace)
		if mc.ListenAddress != "" {
			servePrometheus(lc, mc.ListenAddress, prom.Handler())
		}
		recorder = prom
	case BackendOtel:
		provider, err := NewMeterProvider(context.Background(), mc, cfg.Surfin.Tracing.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("failed to create meter provider: %w", err)
		}
		lc.Append(fx.Hook{OnStop: provider.Shutdown})
		otelRecorder, err := NewOtelMetricRecorder(provider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metric instruments: %w", err)
		}
		recorder = otelRecorder
	case BackendLog:
		recorder = listenermetrics.NewLoggingMetricRecorder()
	default:
		return nil, fmt.Errorf("unknown metrics backend '%s'", mc.Backend)
	}
	logger.Infof("Metrics: '%s' backend enabled.", mc.Backend)
	return listenermetrics.NewAsyncMetricRecorderWrapper(lc, cfg, recorder), nil
}

// servePrometheus exposes handler on address under /metrics for the application lifetime.
func servePrometheus(lc fx.Lifecycle, address string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Addr: address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", address)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", address, err)
			}
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf("Metrics: Prometheus endpoint stopped: %v", err)
				}
			}()
			logger.Infof("Metrics: Prometheus endpoint listening on %s/metrics.", ln.Addr())
			return nil
		},
		OnStop: server.Shutdown,
	})
}

// DecorateTracer replaces the no-op Tracer with an OpenTelemetry tracer when tracing is enabled.
func DecorateTracer(lc fx.Lifecycle, cfg *config.Config, fallback metrics.Tracer) (metrics.Tracer, error) {
	tc := cfg.Surfin.Tracing
	if !tc.Enabled {
		return fallback, nil
	}
	provider, err := NewTracerProvider(context.Background(), tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}
	lc.Append(fx.Hook{OnStop: provider.Shutdown})
	return NewOpenTelemetryTracer(provider), nil
}

// Module decorates the MetricRecorder and Tracer provided by the core metrics module.
var Module = fx.Options(
	fx.Decorate(DecorateMetricRecorder),
	fx.Decorate(DecorateTracer),
)
