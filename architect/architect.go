// Package architect designs the agent layout of a chatbot.
//
// Architect asks a language model for recommendations and then structures
// the design with fixed rules, so the result does not depend on the shape
// of the model's answer. Preview applies the same rules without a model.
package architect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/llm"
	"github.com/sweetpotato0/chatbot-factory/message"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
	"github.com/sweetpotato0/chatbot-factory/prompt"
)

// DesignTemperature is the sampling temperature the design client should use.
const DesignTemperature = 0.3

// TokenCounter counts prompt tokens
type TokenCounter interface {
	CountTokens(text string) int
}

// Options configures an Architect. Client is required.
type Options struct {
	Client   llm.Client
	Defaults Defaults
	// Prompts must hold TemplateSystem and TemplateUser. Nil uses the built-in prompts.
	Prompts   *prompt.Manager
	Tokenizer TokenCounter
	Logger    *slog.Logger
}

// Architect designs architectures with a language model
type Architect struct {
	client    llm.Client
	defaults  Defaults
	prompts   *prompt.Manager
	tokenizer TokenCounter
	logger    *slog.Logger
}

// New creates an Architect
func New(opts Options) (*Architect, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("architect: client is required: %w", fterrors.ErrInvalidInput)
	}
	prompts := opts.Prompts
	if prompts == nil {
		prompts = prompt.NewManager()
		if err := RegisterTemplates(prompts); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("architect")
	}
	return &Architect{
		client:    opts.Client,
		defaults:  opts.Defaults,
		prompts:   prompts,
		tokenizer: opts.Tokenizer,
		logger:    logger,
	}, nil
}

// Design asks the model for recommendations and returns the structured architecture.
func (a *Architect) Design(ctx context.Context, cfg *chatbot.Config) (*chatbot.Architecture, error) {
	if cfg == nil {
		return nil, fmt.Errorf("architect: nil config: %w", fterrors.ErrInvalidInput)
	}

	msgs, err := a.messages(cfg)
	if err != nil {
		return nil, err
	}
	if a.tokenizer != nil {
		total := 0
		for _, m := range msgs {
			total += a.tokenizer.CountTokens(m.Content)
		}
		a.logger.Debug("architect prompt", "chatbot", cfg.Name, "tokens", total)
	}

	reply, err := a.client.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("architect: %w", err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return nil, fmt.Errorf("architect: %w", fterrors.ErrEmptyResponse)
	}

	arch := Preview(cfg, a.defaults)
	arch.Recommendations = strings.TrimSpace(reply.Content)
	return arch, nil
}

func (a *Architect) messages(cfg *chatbot.Config) ([]*message.Message, error) {
	system, err := a.prompts.Render(TemplateSystem, nil)
	if err != nil {
		return nil, fmt.Errorf("architect: %w", err)
	}

	integrations, err := json.Marshal(cfg.Integrations)
	if err != nil {
		return nil, fmt.Errorf("architect: encode integrations: %w", err)
	}
	user, err := a.prompts.Render(TemplateUser, map[string]any{
		"Name":                  cfg.Name,
		"Type":                  string(cfg.ChatbotType),
		"Description":           cfg.Description,
		"Personality":           cfg.TraitNames(),
		"DomainExpertise":       append([]string{}, cfg.DomainExpertise...),
		"EnableRAG":             cfg.EnableRAG,
		"EnableFunctionCalling": cfg.EnableFunctionCalling,
		"EnableMemory":          cfg.EnableMemory,
		"EnableWebSearch":       cfg.EnableWebSearch,
		"Integrations":          string(integrations),
		"IsMultiAgent":          cfg.IsMultiAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("architect: %w", err)
	}

	return []*message.Message{message.System(system), message.User(user)}, nil
}
