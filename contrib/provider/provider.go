// Package provider selects and builds the language model client named by the settings.
package provider

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/chatbot-factory/config"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/claude"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/cohere"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/gemini"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/groq"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/openai"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/llm"
)

// Config is the provider-neutral client configuration
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
}

// FromSettings copies the active provider's settings.
func FromSettings(s *config.Settings) Config {
	return Config{
		Provider:    s.LLMProvider,
		APIKey:      s.APIKey(),
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}
}

// New builds the client for cfg.Provider.
func New(ctx context.Context, cfg Config) (llm.Client, error) {
	switch cfg.Provider {
	case config.ProviderGroq, "":
		gc := groq.DefaultConfig(cfg.APIKey)
		gc.BaseURL = cfg.BaseURL
		gc.Model = cfg.Model
		gc.Temperature = cfg.Temperature
		gc.MaxTokens = cfg.MaxTokens
		return groq.New(gc), nil
	case config.ProviderOpenAI:
		oc := openai.DefaultConfig().WithAPIKey(cfg.APIKey).WithBaseURL(cfg.BaseURL).WithModel(cfg.Model)
		oc.Temperature = cfg.Temperature
		oc.MaxTokens = int64(cfg.MaxTokens)
		return openai.New(oc), nil
	case config.ProviderClaude:
		cc := claude.DefaultConfig(cfg.APIKey, cfg.BaseURL)
		cc.Model = cfg.Model
		cc.Temperature = cfg.Temperature
		cc.MaxTokens = int64(cfg.MaxTokens)
		return claude.New(cc), nil
	case config.ProviderGemini:
		gc := gemini.DefaultConfig(cfg.APIKey)
		gc.Model = cfg.Model
		gc.Temperature = float32(cfg.Temperature)
		gc.MaxTokens = int32(cfg.MaxTokens)
		return gemini.New(ctx, gc)
	case config.ProviderCohere:
		cc := cohere.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		cc.Model = cfg.Model
		cc.Temperature = cfg.Temperature
		cc.MaxTokens = cfg.MaxTokens
		return cohere.New(cc), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: %w", cfg.Provider, fterrors.ErrInvalidInput)
	}
}
