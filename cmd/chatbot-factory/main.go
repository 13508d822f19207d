// Command chatbot-factory generates runnable chatbot projects.
//
// Usage:
//
//	chatbot-factory serve                      HTTP API on HTTP_ADDR
//	chatbot-factory generate -config bot.yaml  one generation, JSON result on stdout
//	chatbot-factory preview -config bot.yaml   rule-based architecture, no model call
//	chatbot-factory mcp                        MCP tools over stdio
//	chatbot-factory init -out bot.yaml         interactive config wizard
//	chatbot-factory token -subject ci          mint an API bearer token
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	"github.com/sweetpotato0/chatbot-factory/config"
	"github.com/sweetpotato0/chatbot-factory/mcpserver"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
	"github.com/sweetpotato0/chatbot-factory/pkg/telemetry"
	"github.com/sweetpotato0/chatbot-factory/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "chatbot-factory:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return serve(ctx, args)
	case "generate":
		return generate(ctx, args)
	case "preview":
		return preview(ctx, args)
	case "mcp":
		return serveMCP(ctx, args)
	case "init":
		return initConfig(ctx, args)
	case "token":
		return issueToken(args)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: chatbot-factory [serve|generate|preview|mcp|init|token] [flags]")
}

// setup loads settings and starts tracing. stdout is reserved for protocol
// output when quiet is set, so logs go to stderr and spans are not printed.
func setup(ctx context.Context, quiet bool) (*config.Settings, *slog.Logger, func(context.Context) error, error) {
	if quiet {
		logging.SetLogger(logging.New(os.Stderr, os.Getenv("CHATBOT_FACTORY_LOG_FORMAT"), os.Getenv("CHATBOT_FACTORY_LOG_LEVEL")))
	}
	logger := logging.Logger()

	settings, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, nil, err
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceVersion: server.Version,
		Environment:    os.Getenv("ENVIRONMENT"),
		Disable:        quiet && os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "",
		Logger:         logger.With("component", "telemetry"),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return settings, logger, shutdown, nil
}

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default HTTP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, logger, shutdown, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	a, err := newApp(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	listen := settings.HTTPAddr
	if *addr != "" {
		listen = *addr
	}
	var auth *server.TokenManager
	if settings.AuthSecret != "" {
		if auth, err = server.NewTokenManager(settings.AuthSecret); err != nil {
			return err
		}
	}
	srv := server.New(server.Options{
		Generator: a.runner,
		History:   a.factory,
		Preview:   a.preview,
		Templates: a.templates,
		Auth:      auth,
		Logger:    logger.With("component", "server"),
	})
	logger.Info("chatbot factory starting",
		"addr", listen,
		"provider", settings.LLMProvider,
		"model", settings.Model,
		"history", settings.HistoryBackend,
		"max_concurrency", a.runner.MaxConcurrency(),
		"auth", auth != nil,
	)
	return srv.ListenAndServe(ctx, listen)
}

func generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	configPath := fs.String("config", "", "chatbot config file (.json, .yaml or .toml)")
	output := fs.String("output", "", "output directory name (default: chatbot name)")
	noTests := fs.Bool("no-tests", false, "skip the test scaffold")
	noDocs := fs.Bool("no-docs", false, "skip the API documentation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errors.New("generate: -config is required")
	}

	cfg, err := chatbot.LoadConfigFile(*configPath)
	if err != nil {
		return err
	}

	settings, logger, shutdown, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	a, err := newApp(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	name := *output
	if name == "" {
		name = cfg.Name
	}
	req := chatbot.NewRequest(*cfg, name)
	req.IncludeTests = !*noTests
	req.IncludeDocs = !*noDocs

	resp := a.factory.Generate(ctx, req)
	if err := writeJSON(resp); err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Message)
	}
	return nil
}

func preview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	configPath := fs.String("config", "", "chatbot config file (.json, .yaml or .toml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errors.New("preview: -config is required")
	}

	cfg, err := chatbot.LoadConfigFile(*configPath)
	if err != nil {
		return err
	}
	settings, err := config.Load()
	if err != nil {
		return err
	}
	a := &app{defaults: defaultsFrom(settings)}
	return writeJSON(a.preview(cfg))
}

func serveMCP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, logger, shutdown, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	a, err := newApp(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("serving MCP over stdio")
	return mcpserver.NewServer(a.runner, a.preview).Run(ctx, &mcp.StdioTransport{})
}

func issueToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "", "token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return errors.New("token: -subject is required")
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}
	m, err := server.NewTokenManager(settings.AuthSecret)
	if err != nil {
		return fmt.Errorf("token: JWT_SECRET: %w", err)
	}
	token, err := m.Issue(*subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
