// Package server exposes the factory over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	"github.com/sweetpotato0/chatbot-factory/history"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
	"github.com/sweetpotato0/chatbot-factory/prompt"
)

// Version is reported by GET /
const Version = "0.1.0"

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// Generator runs a generation once a slot is free
type Generator interface {
	Run(ctx context.Context, req *chatbot.GenerationRequest) (*chatbot.GenerationResponse, error)
}

// HistoryLister lists recent runs
type HistoryLister interface {
	History(ctx context.Context, limit int) ([]*history.Record, error)
}

// PreviewFunc designs an architecture without calling a model
type PreviewFunc func(cfg *chatbot.Config) *chatbot.Architecture

// Options configures the server. Generator is required.
type Options struct {
	Generator Generator
	History   HistoryLister
	Preview   PreviewFunc
	Templates *prompt.Manager
	// Auth, when set, requires a bearer token on every route that runs or reads generations.
	Auth   *TokenManager
	Logger *slog.Logger
}

// Server serves the HTTP API
type Server struct {
	opts   Options
	router *gin.Engine
	logger *slog.Logger
}

// New builds the router
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("server")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{opts: opts, router: router, logger: logger}
	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.GET("/templates", s.templates)
	router.GET("/openapi.json", s.openAPI)

	api := router.Group("/")
	if opts.Auth != nil {
		api.Use(requireAuth(opts.Auth))
	}
	api.POST("/generate", s.generate)
	api.POST("/preview", s.preview)
	api.GET("/history", s.history)
	api.GET("/ws/generate", s.streamGenerate)
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // generations are synchronous
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "chatbot-factory",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"POST /generate",
			"POST /preview",
			"GET /templates",
			"GET /history",
			"GET /ws/generate",
			"GET /openapi.json",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) generate(c *gin.Context) {
	var req chatbot.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	resp, err := s.opts.Generator.Run(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation not started: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) preview(c *gin.Context) {
	if s.opts.Preview == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "preview is not configured"})
		return
	}
	var cfg chatbot.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid config: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.opts.Preview(&cfg))
}

func (s *Server) templates(c *gin.Context) {
	names := []string{}
	if s.opts.Templates != nil {
		names = s.opts.Templates.List()
	}
	c.JSON(http.StatusOK, gin.H{
		"templates":     names,
		"chatbot_types": chatbot.Types(),
	})
}

func (s *Server) history(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if s.opts.History == nil {
		c.JSON(http.StatusOK, gin.H{"records": []*history.Record{}})
		return
	}
	recs, err := s.opts.History.History(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("history lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// requestLogger logs one line per request
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		logger.Info("http request", attrs...)
	}
}
