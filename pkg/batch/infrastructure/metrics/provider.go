package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// Exporter protocols accepted in ExporterConfig.Protocol.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
	ProtocolNone = "none"
)

// newResource describes the process to the telemetry backend.
func newResource(serviceName string) *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", serviceName))
}

// newSpanExporter creates the OTLP span exporter selected by c. It returns nil for ProtocolNone.
func newSpanExporter(ctx context.Context, c config.ExporterConfig) (sdktrace.SpanExporter, error) {
	switch c.Protocol {
	case ProtocolGRPC:
		var opts []otlptracegrpc.Option
		if c.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(c.Endpoint))
		}
		if c.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case ProtocolHTTP:
		var opts []otlptracehttp.Option
		if c.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(c.Endpoint))
		}
		if c.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case "", ProtocolNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter protocol '%s'", c.Protocol)
	}
}

// newMetricExporter creates the OTLP metric exporter selected by c. It returns nil for ProtocolNone.
func newMetricExporter(ctx context.Context, c config.ExporterConfig) (sdkmetric.Exporter, error) {
	switch c.Protocol {
	case ProtocolGRPC:
		var opts []otlpmetricgrpc.Option
		if c.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(c.Endpoint))
		}
		if c.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case ProtocolHTTP:
		var opts []otlpmetrichttp.Option
		if c.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(c.Endpoint))
		}
		if c.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	case "", ProtocolNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown metric exporter protocol '%s'", c.Protocol)
	}
}

// NewTracerProvider creates an SDK TracerProvider sampling cfg.SampleRatio of the root
// traces and batching spans to the configured exporter. Extra span processors are
// registered as well, which tests use to capture spans.
func NewTracerProvider(ctx context.Context, cfg config.TracingConfig, processors ...sdktrace.SpanProcessor) (*sdktrace.TracerProvider, error) {
	exporter, err := newSpanExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, err
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(newResource(cfg.ServiceName)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	logger.Infof("Tracing: TracerProvider created (service: %s, exporter: %s, sample ratio: %.2f).", cfg.ServiceName, cfg.Exporter.Protocol, cfg.SampleRatio)
	return sdktrace.NewTracerProvider(opts...), nil
}

// NewMeterProvider creates an SDK MeterProvider exporting periodically to the
// configured exporter. Extra readers are registered as well.
func NewMeterProvider(ctx context.Context, cfg config.MetricsConfig, serviceName string, readers ...sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	exporter, err := newMetricExporter(ctx, cfg.Exporter)
	if err != nil {
		return nil, err
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(newResource(serviceName))}
	if exporter != nil {
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	logger.Infof("Metrics: MeterProvider created (exporter: %s).", cfg.Exporter.Protocol)
	return sdkmetric.NewMeterProvider(opts...), nil
}
