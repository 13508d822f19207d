package logger

import (
	"log/slog"
	"time"

	"github.com/sweetpotato0/chatbot-factory/middleware"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
)

// StageLogger logs the start and outcome of every stage
type StageLogger struct {
	logger *slog.Logger
}

// NewStageLogger creates a stage logging middleware. A nil logger uses the shared one.
func NewStageLogger(logger *slog.Logger) *StageLogger {
	if logger == nil {
		logger = logging.WithComponent("pipeline")
	}
	return &StageLogger{logger: logger}
}

// Name returns the middleware name
func (m *StageLogger) Name() string {
	return "StageLogger"
}

// Execute logs around the stage
func (m *StageLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	log := m.logger.With("stage", ctx.Stage, "run_id", ctx.RunID)
	log.DebugContext(ctx.Context(), "stage started")

	start := time.Now()
	err := next(ctx)
	elapsed := time.Since(start)

	if err != nil {
		log.WarnContext(ctx.Context(), "stage failed", "duration", elapsed, "error", err)
		return err
	}
	log.InfoContext(ctx.Context(), "stage completed", "duration", elapsed)
	return nil
}
