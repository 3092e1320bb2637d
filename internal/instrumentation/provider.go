package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider owns the OpenTelemetry meter and tracer providers for the server.
type Provider struct {
	config         Config
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	metrics        *Metrics
	auditLogger    *AuditLogger
}

// NewProvider sets up metrics and tracing from config and installs them as
// the global OpenTelemetry providers. When config.Enabled is false the
// provider records nothing but all accessors still return usable values.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.ServiceName == "" {
		config.ServiceName = "mcp-vcluster"
	}

	p := &Provider{
		config:      config,
		auditLogger: NewAuditLogger(slog.Default().With(slog.String("component", "audit"))),
	}

	if !config.Enabled {
		metrics, err := NewMetrics(metricnoop.NewMeterProvider().Meter(TracerName), false)
		if err != nil {
			return nil, err
		}
		p.metrics = metrics
		return p, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", config.ServiceName),
			attribute.String("service.version", config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader, err := newMetricReader(ctx, config)
	if err != nil {
		return nil, err
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(p.meterProvider)

	p.metrics, err = NewMetrics(p.meterProvider.Meter(TracerName), config.DetailedLabels)
	if err != nil {
		_ = p.meterProvider.Shutdown(ctx)
		return nil, err
	}

	exporter, err := newTraceExporter(ctx, config)
	if err != nil {
		_ = p.meterProvider.Shutdown(ctx)
		return nil, err
	}
	if exporter != nil {
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TraceSamplingRate))),
		)
		otel.SetTracerProvider(p.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	slog.Debug("instrumentation initialized",
		slog.String("metrics_exporter", config.MetricsExporter),
		slog.String("tracing_exporter", config.TracingExporter))

	return p, nil
}

func newMetricReader(ctx context.Context, config Config) (sdkmetric.Reader, error) {
	switch config.MetricsExporter {
	case "", ExporterPrometheus:
		exporter, err := otelprom.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		return exporter, nil

	case ExporterOTLP:
		var opts []otlpmetrichttp.Option
		if config.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(config.OTLPEndpoint))
		}
		if config.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval)), nil

	case ExporterStdout:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(DefaultMetricInterval)), nil
	}
	return nil, fmt.Errorf("unsupported metrics exporter %q", config.MetricsExporter)
}

func newTraceExporter(ctx context.Context, config Config) (sdktrace.SpanExporter, error) {
	switch config.TracingExporter {
	case "", ExporterNone:
		return nil, nil

	case ExporterOTLP:
		var opts []otlptracehttp.Option
		if config.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(config.OTLPEndpoint))
		}
		if config.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		return exporter, nil

	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		return exporter, nil
	}
	return nil, fmt.Errorf("unsupported tracing exporter %q", config.TracingExporter)
}

// Enabled reports whether metrics and traces are being exported.
func (p *Provider) Enabled() bool {
	return p != nil && p.config.Enabled
}

// Config returns the configuration the provider was built with.
func (p *Provider) Config() Config {
	return p.config
}

// Metrics returns the metrics recorder. It is never nil for a non-nil provider.
func (p *Provider) Metrics() *Metrics {
	if p == nil {
		return nil
	}
	return p.metrics
}

// AuditLogger returns the tool invocation audit logger.
func (p *Provider) AuditLogger() *AuditLogger {
	if p == nil {
		return nil
	}
	return p.auditLogger
}

// Meter returns a meter from the provider, or a no-op meter when disabled.
func (p *Provider) Meter(name string) metric.Meter {
	if p == nil || p.meterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return p.meterProvider.Meter(name)
}

// Shutdown flushes and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
