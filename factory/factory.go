// Package factory is the public entry point for generating chatbot projects.
package factory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sweetpotato0/chatbot-factory/chatbot"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/history"
	"github.com/sweetpotato0/chatbot-factory/pipeline"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
	"github.com/sweetpotato0/chatbot-factory/pkg/telemetry"
	"github.com/sweetpotato0/chatbot-factory/publish"
)

// Engine runs one generation and returns its final state
type Engine interface {
	Run(ctx context.Context, req *chatbot.GenerationRequest) (*pipeline.State, error)
}

// Orchestrator turns every run, including engine faults and panics, into a response.
type Orchestrator struct {
	engine    Engine
	history   history.Store
	metrics   *telemetry.Metrics
	publisher publish.Publisher
	logger    *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithHistory records every run in store
func WithHistory(store history.Store) Option {
	return func(o *Orchestrator) {
		o.history = store
	}
}

// WithMetrics records run counters and durations
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithPublisher uploads the output of successful runs
func WithPublisher(p publish.Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an orchestrator around engine
func New(engine Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine: engine,
		logger: logging.WithComponent("factory"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs one generation. It never returns nil and never panics.
func (o *Orchestrator) Generate(ctx context.Context, req *chatbot.GenerationRequest) *chatbot.GenerationResponse {
	start := time.Now()
	chatbotType := ""
	if req != nil {
		chatbotType = string(req.Config.ChatbotType)
	}
	o.metrics.RecordStarted(ctx, chatbotType)

	state, err := o.run(ctx, req)

	var resp *chatbot.GenerationResponse
	runID := ""
	if err != nil {
		o.logger.Error("generation failed", "error", err)
		resp = failed(err)
	} else {
		resp = state.Response()
		runID = state.RunID
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	duration := time.Since(start)
	o.metrics.RecordFinished(ctx, chatbotType, resp.Success, duration)

	rec := history.NewRecord(req, resp, runID, duration)
	if resp.Success && resp.OutputPath != "" && o.publisher != nil {
		prefix, perr := o.publisher.Publish(ctx, runID, resp.OutputPath, resp.FilesGenerated)
		if perr != nil {
			o.logger.Warn("artifact publish failed", "run_id", runID, "error", perr)
		} else {
			rec.ArtifactPrefix = prefix
		}
	}
	o.record(ctx, rec)

	o.logger.Info("generation finished",
		"run_id", runID,
		"success", resp.Success,
		"files", len(resp.FilesGenerated),
		"errors", len(resp.Errors),
		"duration", duration,
	)
	return resp
}

// run calls the engine, converting a panic into an error.
func (o *Orchestrator) run(ctx context.Context, req *chatbot.GenerationRequest) (state *pipeline.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			state = nil
			err = fmt.Errorf("%w: panic: %v", fterrors.ErrInternal, r)
		}
	}()

	if o.engine == nil {
		return nil, fmt.Errorf("no engine configured: %w", fterrors.ErrInternal)
	}
	if req == nil {
		return nil, fmt.Errorf("nil request: %w", fterrors.ErrInvalidInput)
	}
	state, err = o.engine.Run(ctx, req)
	if err == nil && state == nil {
		err = fmt.Errorf("engine returned no state: %w", fterrors.ErrInternal)
	}
	return state, err
}

func (o *Orchestrator) record(ctx context.Context, rec *history.Record) {
	if o.history == nil {
		return
	}
	// history survives caller cancellation
	if err := o.history.Save(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Warn("history save failed", "run_id", rec.RunID, "error", err)
	}
}

// History returns up to limit recent runs, newest first
func (o *Orchestrator) History(ctx context.Context, limit int) ([]*history.Record, error) {
	if o.history == nil {
		return []*history.Record{}, nil
	}
	return o.history.List(ctx, limit)
}

func failed(err error) *chatbot.GenerationResponse {
	return &chatbot.GenerationResponse{
		Success:        false,
		OutputPath:     "",
		Message:        fmt.Sprintf("Generation failed: %v", err),
		FilesGenerated: []string{},
		Errors:         []string{err.Error()},
	}
}
