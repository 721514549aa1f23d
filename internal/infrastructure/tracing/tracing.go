// Package tracing configures OpenTelemetry for the toolkit.
//
// A disabled Provider hands out a no-op tracer, so callers can start spans
// unconditionally.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
)

// DefaultServiceName identifies the toolkit in traces.
const DefaultServiceName = "gltoolkit"

// Span attribute keys.
const (
	AttrSettingID   = "setting.id"
	AttrSettingKind = "setting.wire_kind"
	AttrSource      = "setting.source"
	AttrServiceType = "registry.type"
	AttrUserID      = "user.id"
)

// Provider owns the tracer provider for the process.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	enabled  bool
}

// NewProvider builds a provider from cfg and installs it as the global
// OpenTelemetry provider. A disabled config yields a no-op provider.
func NewProvider(ctx context.Context, cfg config.TracingConfig) (*Provider, error) {
	if !cfg.Enabled {
		return Disabled(), nil
	}

	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.Exporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
	case "otlp":
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = "localhost:4317"
		}
		exporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
	case "none", "":
		// Spans are still created so trace ids reach the logs.
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.Exporter)
	}

	p := newSDKProvider(cfg.SampleRate, sdktrace.WithBatcher, exporter)
	otel.SetTracerProvider(p.provider)
	return p, nil
}

// NewProviderWithExporter returns an enabled provider that exports every
// span synchronously to exp. It does not touch the global provider.
func NewProviderWithExporter(exp sdktrace.SpanExporter) *Provider {
	return newSDKProvider(1.0, func(e sdktrace.SpanExporter, _ ...sdktrace.BatchSpanProcessorOption) sdktrace.TracerProviderOption {
		return sdktrace.WithSyncer(e)
	}, exp)
}

func newSDKProvider(
	sampleRate float64,
	attach func(sdktrace.SpanExporter, ...sdktrace.BatchSpanProcessorOption) sdktrace.TracerProviderOption,
	exporter sdktrace.SpanExporter,
) *Provider {
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	// Schemaless avoids schema URL conflicts with resource.Default().
	res := resource.NewSchemaless(attribute.String("service.name", DefaultServiceName))

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	}
	if exporter != nil {
		opts = append(opts, attach(exporter))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	return &Provider{
		provider: provider,
		tracer:   provider.Tracer(DefaultServiceName),
		enabled:  true,
	}
}

// Disabled returns a provider whose tracer records nothing.
func Disabled() *Provider {
	return &Provider{
		tracer: noop.NewTracerProvider().Tracer("noop"),
	}
}

// Tracer returns the tracer. Never nil.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p != nil && p.enabled
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// RecordError marks span as failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
