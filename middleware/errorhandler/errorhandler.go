package errorhandler

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/sweetpotato0/chatbot-factory/middleware"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
)

// ErrorHandlerFunc handles errors
type ErrorHandlerFunc func(*middleware.Context, error) error

// ErrorHandler hands stage errors to a callback which may replace or suppress them
type ErrorHandler struct {
	handler ErrorHandlerFunc
}

// NewErrorHandler creates an error handling middleware
func NewErrorHandler(handler ErrorHandlerFunc) *ErrorHandler {
	return &ErrorHandler{handler: handler}
}

// Name returns the middleware name
func (m *ErrorHandler) Name() string {
	return "ErrorHandler"
}

// Execute handles errors from downstream middlewares
func (m *ErrorHandler) Execute(ctx *middleware.Context, next middleware.Handler) error {
	err := next(ctx)
	if err != nil && m.handler != nil {
		return m.handler(ctx, err)
	}
	return err
}

// Recoverer turns a panic in a stage into an error wrapping middleware.ErrStagePanicked
type Recoverer struct {
	logger *slog.Logger
}

// NewRecoverer creates a panic recovery middleware
func NewRecoverer(logger *slog.Logger) *Recoverer {
	if logger == nil {
		logger = logging.WithComponent("pipeline")
	}
	return &Recoverer{logger: logger}
}

// Name returns the middleware name
func (m *Recoverer) Name() string {
	return "Recoverer"
}

// Execute runs next and recovers any panic
func (m *Recoverer) Execute(ctx *middleware.Context, next middleware.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("stage panicked",
				"stage", ctx.Stage,
				"run_id", ctx.RunID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%w: %v", middleware.ErrStagePanicked, r)
		}
	}()
	return next(ctx)
}
