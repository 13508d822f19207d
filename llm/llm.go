// Package llm defines the contract between the factory and a language model provider.
package llm

import (
	"context"

	"github.com/sweetpotato0/chatbot-factory/message"
)

// Client generates a single assistant reply for a conversation.
// Implementations live under contrib/provider.
type Client interface {
	Generate(ctx context.Context, messages []*message.Message) (*message.Message, error)
}

// ClientFunc adapts an ordinary function to the Client interface.
type ClientFunc func(ctx context.Context, messages []*message.Message) (*message.Message, error)

// Generate calls f(ctx, messages).
func (f ClientFunc) Generate(ctx context.Context, messages []*message.Message) (*message.Message, error) {
	return f(ctx, messages)
}
