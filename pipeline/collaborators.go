package pipeline

import (
	"context"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// Designer produces the architecture for a chatbot, typically by asking an LLM.
type Designer interface {
	Design(ctx context.Context, cfg *chatbot.Config) (*chatbot.Architecture, error)
}

// CodeGenerator writes the chatbot project under dir and returns the written paths.
type CodeGenerator interface {
	GenerateFiles(ctx context.Context, cfg *chatbot.Config, arch *chatbot.Architecture, dir string) ([]string, error)
}

// CredentialProvider reports whether the upstream LLM credential is configured.
type CredentialProvider interface {
	CredentialName() string
	HasCredential() bool
}

// DesignerFunc adapts a function to Designer
type DesignerFunc func(ctx context.Context, cfg *chatbot.Config) (*chatbot.Architecture, error)

// Design calls f(ctx, cfg).
func (f DesignerFunc) Design(ctx context.Context, cfg *chatbot.Config) (*chatbot.Architecture, error) {
	return f(ctx, cfg)
}

// GeneratorFunc adapts a function to CodeGenerator
type GeneratorFunc func(ctx context.Context, cfg *chatbot.Config, arch *chatbot.Architecture, dir string) ([]string, error)

// GenerateFiles calls f(ctx, cfg, arch, dir).
func (f GeneratorFunc) GenerateFiles(ctx context.Context, cfg *chatbot.Config, arch *chatbot.Architecture, dir string) ([]string, error) {
	return f(ctx, cfg, arch, dir)
}

// StaticCredential is a CredentialProvider with fixed answers
type StaticCredential struct {
	Name    string
	Present bool
}

// CredentialName returns the credential's environment key
func (c StaticCredential) CredentialName() string { return c.Name }

// HasCredential reports whether the credential is present
func (c StaticCredential) HasCredential() bool { return c.Present }
