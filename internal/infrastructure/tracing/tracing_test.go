package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/nerrad567/gray-logic-toolkit/internal/infrastructure/config"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid(), "disabled tracer should not produce valid spans")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	require.True(t, provider.Enabled())
	_, span := provider.Tracer().Start(context.Background(), "correlate")
	assert.True(t, span.SpanContext().IsValid(), "spans need valid ids for log correlation")
	span.End()
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	provider, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "stdout", SampleRate: 1})
	require.NoError(t, err)
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter type")
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderWithExporter_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := NewProviderWithExporter(exporter)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx, parent := provider.Tracer().Start(context.Background(), "settings.set")
	parent.SetAttributes(attribute.String(AttrSettingID, "dimmer.level"))
	_, child := provider.Tracer().Start(ctx, "settings.persist")
	RecordError(child, errors.New("disk full"))
	child.End()
	RecordError(parent, nil)
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	byName := map[string]tracetest.SpanStub{}
	for _, s := range spans {
		byName[s.Name] = s
	}

	persist := byName["settings.persist"]
	assert.Equal(t, codes.Error, persist.Status.Code)
	assert.Equal(t, "disk full", persist.Status.Description)
	assert.Equal(t, byName["settings.set"].SpanContext.SpanID(), persist.Parent.SpanID())

	set := byName["settings.set"]
	assert.Equal(t, codes.Unset, set.Status.Code)
	assert.Contains(t, set.Attributes, attribute.String(AttrSettingID, "dimmer.level"))
}
