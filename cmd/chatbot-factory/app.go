package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/chatbot-factory/architect"
	"github.com/sweetpotato0/chatbot-factory/chatbot"
	"github.com/sweetpotato0/chatbot-factory/codegen"
	"github.com/sweetpotato0/chatbot-factory/config"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider"
	"github.com/sweetpotato0/chatbot-factory/contrib/tokenizer/tiktoken"
	"github.com/sweetpotato0/chatbot-factory/factory"
	"github.com/sweetpotato0/chatbot-factory/history"
	"github.com/sweetpotato0/chatbot-factory/history/store"
	"github.com/sweetpotato0/chatbot-factory/pipeline"
	"github.com/sweetpotato0/chatbot-factory/pkg/telemetry"
	"github.com/sweetpotato0/chatbot-factory/prompt"
	"github.com/sweetpotato0/chatbot-factory/publish"
	"github.com/sweetpotato0/chatbot-factory/runner"
)

// knowledgeTokenBudget caps each fetched knowledge document
const knowledgeTokenBudget = 2000

// app holds the wired factory components shared by every subcommand
type app struct {
	settings  *config.Settings
	templates *prompt.Manager
	defaults  architect.Defaults
	factory   *factory.Orchestrator
	runner    *runner.Runner
	history   history.Store
}

func newApp(ctx context.Context, settings *config.Settings, logger *slog.Logger) (*app, error) {
	templates, err := loadTemplates(settings.TemplatesPath, logger)
	if err != nil {
		return nil, err
	}

	// The design call runs cooler than the generated bot.
	designCfg := provider.FromSettings(settings)
	designCfg.Temperature = architect.DesignTemperature
	client, err := provider.New(ctx, designCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", settings.LLMProvider, err)
	}

	tok, err := tiktoken.NewTiktokenTokenizer("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	defaults := defaultsFrom(settings)
	var designer pipeline.Designer
	designer, err = architect.New(architect.Options{
		Client:    client,
		Defaults:  defaults,
		Prompts:   templates,
		Tokenizer: tok,
		Logger:    logger.With("component", "architect"),
	})
	if err != nil {
		return nil, err
	}
	if settings.ArchitectCacheSize > 0 {
		if designer, err = architect.NewCache(designer, settings.ArchitectCacheSize); err != nil {
			return nil, err
		}
	}

	generator, err := codegen.New(codegen.Options{
		Provider:       settings.LLMProvider,
		Model:          settings.Model,
		Temperature:    settings.Temperature,
		CredentialName: settings.CredentialName(),
		Templates:      templates,
		Knowledge: codegen.NewKnowledgeFetcher(
			codegen.WithTruncation(tok, knowledgeTokenBudget),
			codegen.WithFetcherLogger(logger.With("component", "knowledge")),
		),
		Logger: logger.With("component", "codegen"),
	})
	if err != nil {
		return nil, err
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return nil, err
	}

	engine, err := pipeline.New(pipeline.Options{
		Designer:    designer,
		Generator:   generator,
		Credentials: settings,
		OutputPath:  settings.OutputPath,
		Registry:    settings.DockerRegistry,
		Templates:   templates,
		Logger:      logger.With("component", "pipeline"),
		OnFailure: func(ctx context.Context, stage string, err error) {
			metrics.RecordStageFailure(ctx, stage)
		},
	})
	if err != nil {
		return nil, err
	}

	hist, err := store.Open(ctx, settings.HistoryBackend)
	if err != nil {
		return nil, fmt.Errorf("open %s history: %w", settings.HistoryBackend, err)
	}

	opts := []factory.Option{
		factory.WithHistory(hist),
		factory.WithMetrics(metrics),
		factory.WithLogger(logger.With("component", "factory")),
	}
	if settings.Artifact.Enabled {
		pub, err := publish.NewS3Publisher(settings.Artifact)
		if err != nil {
			hist.Close()
			return nil, err
		}
		opts = append(opts, factory.WithPublisher(pub))
	}
	orch := factory.New(engine, opts...)

	return &app{
		settings:  settings,
		templates: templates,
		defaults:  defaults,
		factory:   orch,
		runner:    runner.New(orch, settings.MaxConcurrency),
		history:   hist,
	}, nil
}

func defaultsFrom(settings *config.Settings) architect.Defaults {
	return architect.Defaults{
		Provider:    settings.LLMProvider,
		Model:       settings.Model,
		Temperature: settings.Temperature,
	}
}

// preview applies the design rules with the configured defaults
func (a *app) preview(cfg *chatbot.Config) *chatbot.Architecture {
	return architect.Preview(cfg, a.defaults)
}

func (a *app) Close() error {
	return a.history.Close()
}

// loadTemplates registers the built-in templates, then lets files in dir override them.
func loadTemplates(dir string, logger *slog.Logger) (*prompt.Manager, error) {
	m := prompt.NewManager()
	for _, register := range []func(*prompt.Manager) error{
		pipeline.RegisterAncillaryTemplates,
		architect.RegisterTemplates,
		codegen.RegisterTemplates,
	} {
		if err := register(m); err != nil {
			return nil, err
		}
	}
	if dir == "" {
		return m, nil
	}
	n, err := m.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load template overrides: %w", err)
	}
	if n > 0 {
		logger.Info("template overrides loaded", "dir", dir, "count", n)
	}
	return m, nil
}
