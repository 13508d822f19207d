package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records generation run outcomes
type Metrics struct {
	runsStarted   metric.Int64Counter
	runsSucceeded metric.Int64Counter
	runsFailed    metric.Int64Counter
	runDuration   metric.Float64Histogram
	runsActive    metric.Int64UpDownCounter
	stageFailures metric.Int64Counter
}

// NewMetrics creates the generation instruments on the global meter provider
func NewMetrics() (*Metrics, error) {
	return NewMetricsFromProvider(otel.GetMeterProvider())
}

// NewMetricsFromProvider creates the generation instruments on mp
func NewMetricsFromProvider(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(ServiceName)

	runsStarted, err := meter.Int64Counter(
		"chatbot_factory.generations.started",
		metric.WithDescription("Total number of generation runs started"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsSucceeded, err := meter.Int64Counter(
		"chatbot_factory.generations.succeeded",
		metric.WithDescription("Total number of generation runs that finished without errors"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsFailed, err := meter.Int64Counter(
		"chatbot_factory.generations.failed",
		metric.WithDescription("Total number of generation runs that finished with errors"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"chatbot_factory.generation.duration",
		metric.WithDescription("Duration of generation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runsActive, err := meter.Int64UpDownCounter(
		"chatbot_factory.generations.active",
		metric.WithDescription("Number of generation runs in progress"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	stageFailures, err := meter.Int64Counter(
		"chatbot_factory.stage.failures",
		metric.WithDescription("Stage failures recorded into a run's errors"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		runsStarted:   runsStarted,
		runsSucceeded: runsSucceeded,
		runsFailed:    runsFailed,
		runDuration:   runDuration,
		runsActive:    runsActive,
		stageFailures: stageFailures,
	}, nil
}

// RecordStarted records a new run for the given chatbot type
func (m *Metrics) RecordStarted(ctx context.Context, chatbotType string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("chatbot.type", chatbotType))
	m.runsStarted.Add(ctx, 1, attrs)
	m.runsActive.Add(ctx, 1, attrs)
}

// RecordFinished records the end of a run
func (m *Metrics) RecordFinished(ctx context.Context, chatbotType string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "succeeded"
	counter := m.runsSucceeded
	if !success {
		status = "failed"
		counter = m.runsFailed
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("chatbot.type", chatbotType)))
	m.runDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("chatbot.type", chatbotType),
			attribute.String("status", status),
		),
	)
	m.runsActive.Add(ctx, -1, metric.WithAttributes(attribute.String("chatbot.type", chatbotType)))
}

// RecordStageFailure counts a failure recorded by the named stage
func (m *Metrics) RecordStageFailure(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}
