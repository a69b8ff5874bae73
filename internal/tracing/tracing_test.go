package tracing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

var discard = slog.New(slog.DiscardHandler)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "OTLP")
	t.Setenv("TRACING_SAMPLE_RATIO", "3")
	t.Setenv("OTLP_ENDPOINT", "collector:4317")

	cfg := ConfigFromEnv("detector", discard)
	assert.Equal(t, Config{
		Enabled:     true,
		ServiceName: "detector",
		Exporter:    "otlp",
		Endpoint:    "collector:4317",
		SampleRatio: 1,
	}, cfg)
}

func TestInitDisabled(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := Init(context.Background(), Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true, Exporter: "zipkin", SampleRatio: 1}, discard)
	assert.ErrorContains(t, err, "unsupported tracing exporter")
}
