package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMetrics_Creation(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	assert.NotNil(t, m.runsStarted)
	assert.NotNil(t, m.runsSucceeded)
	assert.NotNil(t, m.runsFailed)
	assert.NotNil(t, m.runDuration)
	assert.NotNil(t, m.runsActive)
	assert.NotNil(t, m.stageFailures)
}

func TestMetrics_Record(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordStarted(ctx, "customer_support")
		m.RecordStageFailure(ctx, "design_architecture")
		m.RecordFinished(ctx, "customer_support", false, 2*time.Second)
		m.RecordStarted(ctx, "knowledge_base")
		m.RecordFinished(ctx, "knowledge_base", true, time.Second)
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordStarted(context.Background(), "x")
		m.RecordFinished(context.Background(), "x", true, 0)
		m.RecordStageFailure(context.Background(), "x")
	})
}

func TestEnd(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	End(ok, nil)
	_, bad := tracer.Start(context.Background(), "bad")
	End(bad, assert.AnError)
	End(nil, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Len(t, spans[1].Events(), 1)
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Disable: true})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetrics_RecordedValues(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetricsFromProvider(mp)
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordStarted(ctx, "customer_support")
	m.RecordStageFailure(ctx, "validate_config")
	m.RecordStageFailure(ctx, "validate_config")
	m.RecordFinished(ctx, "customer_support", false, 2*time.Second)
	m.RecordStarted(ctx, "knowledge_base")

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, data["chatbot_factory.generations.started"], "chatbot.type", "customer_support"))
	assert.Equal(t, int64(1), sumFor(t, data["chatbot_factory.generations.failed"], "chatbot.type", "customer_support"))
	assert.Equal(t, int64(2), sumFor(t, data["chatbot_factory.stage.failures"], "stage", "validate_config"))
	assert.Equal(t, int64(0), sumFor(t, data["chatbot_factory.generations.active"], "chatbot.type", "customer_support"))
	assert.Equal(t, int64(1), sumFor(t, data["chatbot_factory.generations.active"], "chatbot.type", "knowledge_base"))

	hist, ok := data["chatbot_factory.generation.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 2.0, hist.DataPoints[0].Sum, 1e-9)
}

func TestInitInstallsMeterProvider(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider)
	assert.True(t, ok, "expected SDK meter provider, got %T", otel.GetMeterProvider())
}
