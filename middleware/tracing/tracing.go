package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetpotato0/chatbot-factory/middleware"
	"github.com/sweetpotato0/chatbot-factory/pkg/telemetry"
)

// StageTracer opens one span per stage
type StageTracer struct {
	tracer trace.Tracer
}

// NewStageTracer creates a tracing middleware. A nil tracer uses the global provider.
func NewStageTracer(tracer trace.Tracer) *StageTracer {
	if tracer == nil {
		tracer = telemetry.Tracer("pipeline")
	}
	return &StageTracer{tracer: tracer}
}

// Name returns the middleware name
func (m *StageTracer) Name() string {
	return "StageTracer"
}

// Execute wraps next in a span named after the stage
func (m *StageTracer) Execute(ctx *middleware.Context, next middleware.Handler) error {
	parent := ctx.Context()
	spanCtx, span := m.tracer.Start(parent, "stage."+ctx.Stage,
		trace.WithAttributes(
			attribute.String("stage", ctx.Stage),
			attribute.String("run.id", ctx.RunID),
		),
	)
	ctx.SetContext(spanCtx)

	err := next(ctx)

	ctx.SetContext(parent)
	telemetry.End(span, err)
	return err
}
