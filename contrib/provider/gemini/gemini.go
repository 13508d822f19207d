package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/message"
)

// Config holds Gemini provider configuration
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "gemini-1.5-pro",
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// Provider implements llm.Client for Google Gemini
type Provider struct {
	config *Config
	client *genai.Client
}

// New creates a new Gemini provider. Call Close when done.
// Without an API key no client is dialled and Generate fails with
// ErrCredentialMissing.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-pro"
	}
	if config.APIKey == "" {
		return &Provider{config: config}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{
		config: config,
		client: client,
	}, nil
}

// Close releases the underlying client
func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Generate implements llm.Client. Earlier turns become chat history; the last one is sent.
func (p *Provider) Generate(ctx context.Context, messages []*message.Message) (*message.Message, error) {
	if p.client == nil {
		return nil, fmt.Errorf("gemini: %w", fterrors.ErrCredentialMissing)
	}
	model := p.client.GenerativeModel(p.config.Model)
	model.SetTemperature(p.config.Temperature)
	if p.config.MaxTokens > 0 {
		model.SetMaxOutputTokens(p.config.MaxTokens)
	}
	if system := message.SystemPrompt(messages); system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	history, last := splitConversation(messages)
	if last == nil {
		return nil, fmt.Errorf("gemini: no user message to send")
	}

	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini: no text in candidates: %w", fterrors.ErrEmptyResponse)
	}
	return message.NewMessage(message.RoleAssistant, text), nil
}

// splitConversation drops system messages and returns all but the last
// remaining message as history.
func splitConversation(messages []*message.Message) ([]*genai.Content, *message.Message) {
	var turns []*message.Message
	for _, m := range messages {
		if m != nil && m.Role != message.RoleSystem {
			turns = append(turns, m)
		}
	}
	if len(turns) == 0 {
		return nil, nil
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == message.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}
	return history, turns[len(turns)-1]
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		// first candidate with content wins
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}
