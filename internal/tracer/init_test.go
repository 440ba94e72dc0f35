package tracer

import (
	"context"
	"testing"

	"podcast-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestInit_DisabledKeepsGlobalProvider(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := Init(context.Background(), config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestResource_CarriesServiceIdentity(t *testing.T) {
	res := Resource(config.TracingConfig{ServiceName: "podcast-be", ServiceVersion: "1.4.0"}, "staging")

	attrs := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "podcast-be", attrs[semconv.ServiceNameKey])
	assert.Equal(t, "1.4.0", attrs[semconv.ServiceVersionKey])
	assert.Equal(t, "staging", attrs[semconv.DeploymentEnvironmentKey])
}

func TestSampler_ClampsRatio(t *testing.T) {
	assert.Contains(t, sampler(2).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
