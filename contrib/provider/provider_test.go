package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/sweetpotato0/chatbot-factory/config"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/claude"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/cohere"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/groq"
	"github.com/sweetpotato0/chatbot-factory/contrib/provider/openai"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
)

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		check    func(any) bool
	}{
		{provider: config.ProviderGroq, check: func(c any) bool { _, ok := c.(*groq.Provider); return ok }},
		{provider: "", check: func(c any) bool { _, ok := c.(*groq.Provider); return ok }},
		{provider: config.ProviderOpenAI, check: func(c any) bool { _, ok := c.(*openai.Provider); return ok }},
		{provider: config.ProviderClaude, check: func(c any) bool { _, ok := c.(*claude.Provider); return ok }},
		{provider: config.ProviderCohere, check: func(c any) bool { _, ok := c.(*cohere.Provider); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			client, err := New(context.Background(), Config{Provider: tt.provider, APIKey: "key", Model: "m"})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !tt.check(client) {
				t.Errorf("unexpected client type %T", client)
			}
		})
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "mistral"})
	if !errors.Is(err, fterrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFromSettings(t *testing.T) {
	s, err := config.FromEnv(func(key string) string {
		return map[string]string{
			"LLM_PROVIDER":   "openai",
			"OPENAI_API_KEY": "sk-test",
			"TEMPERATURE":    "0.2",
		}[key]
	})
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	cfg := FromSettings(s)
	if cfg.Provider != "openai" || cfg.APIKey != "sk-test" || cfg.Model != "gpt-4o-mini" || cfg.Temperature != 0.2 {
		t.Errorf("unexpected config %+v", cfg)
	}
}
