package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/message"
)

const cohereAPIURL = "https://api.cohere.com/v2/chat"

// Config holds Cohere provider configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns default Cohere configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "command-r-plus",
		MaxTokens:   4096,
		Temperature: 0.7,
		Timeout:     2 * time.Minute,
	}
}

// Provider implements llm.Client for the Cohere v2 chat endpoint
type Provider struct {
	config *Config
	client *http.Client
}

// New creates a new Cohere provider
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}

	if config.Model == "" {
		config.Model = "command-r-plus"
	}
	if config.BaseURL == "" {
		config.BaseURL = cohereAPIURL
	}

	return &Provider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

type cohereMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type cohereRequest struct {
	Model       string          `json:"model"`
	Messages    []cohereMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type cohereContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type cohereResponse struct {
	Message struct {
		Role    string          `json:"role"`
		Content []cohereContent `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type cohereError struct {
	Message string `json:"message"`
}

// Generate implements llm.Client
func (p *Provider) Generate(ctx context.Context, messages []*message.Message) (*message.Message, error) {
	if p.config.APIKey == "" {
		return nil, fmt.Errorf("cohere API key not configured")
	}

	cohereMessages := make([]cohereMessage, 0, len(messages))
	for _, msg := range messages {
		cohereMessages = append(cohereMessages, cohereMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	reqBody, err := json.Marshal(cohereRequest{
		Model:       p.config.Model,
		Messages:    cohereMessages,
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
	httpReq.Header.Set("Accept", "application/json")

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
		var apiErr cohereError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("cohere API error (status %d): %s", httpResp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("cohere API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp cohereResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	var text strings.Builder
	for _, c := range resp.Message.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("cohere: no text in response: %w", fterrors.ErrEmptyResponse)
	}

	return message.NewMessage(message.RoleAssistant, text.String()), nil
}
