package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/message"
)

const groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// Config holds Groq provider configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns default Groq configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "llama-3.1-70b-versatile",
		MaxTokens:   4096,
		Temperature: 0.7,
		Timeout:     2 * time.Minute,
	}
}

// Provider implements llm.Client for Groq's OpenAI-compatible chat endpoint
type Provider struct {
	config *Config
	client *http.Client
}

// New creates a new Groq provider
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}

	if config.Model == "" {
		config.Model = "llama-3.1-70b-versatile"
	}
	if config.BaseURL == "" {
		config.BaseURL = groqAPIURL
	}

	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type groqChoice struct {
	Message groqMessage `json:"message"`
}

type groqResponse struct {
	Choices []groqChoice `json:"choices"`
	Error   *groqError   `json:"error,omitempty"`
}

type groqError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate implements llm.Client
func (p *Provider) Generate(ctx context.Context, messages []*message.Message) (*message.Message, error) {
	if p.config.APIKey == "" {
		return nil, fmt.Errorf("groq API key not configured")
	}

	groqMessages := make([]groqMessage, 0, len(messages))
	for _, msg := range messages {
		groqMessages = append(groqMessages, groqMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	reqBody, err := json.Marshal(groqRequest{
		Model:       p.config.Model,
		Messages:    groqMessages,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp groqResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("groq API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("groq: no choices in response: %w", fterrors.ErrEmptyResponse)
	}

	return message.NewMessage(message.RoleAssistant, resp.Choices[0].Message.Content), nil
}
