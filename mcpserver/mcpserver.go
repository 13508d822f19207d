// Package mcpserver exposes the factory as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// Version is advertised to MCP clients
const Version = "0.1.0"

// Generator runs a generation once a slot is free
type Generator interface {
	Run(ctx context.Context, req *chatbot.GenerationRequest) (*chatbot.GenerationResponse, error)
}

// PreviewFunc designs an architecture without calling a model
type PreviewFunc func(cfg *chatbot.Config) *chatbot.Architecture

// NewServer builds the MCP server with the generate_chatbot and preview_architecture tools.
func NewServer(gen Generator, preview PreviewFunc) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chatbot-factory",
		Version: Version,
		Title:   "Chatbot Factory",
	}, nil)

	addGenerateTool(server, gen)
	if preview != nil {
		addPreviewTool(server, preview)
	}
	return server
}

type generateArgs struct {
	Config       map[string]any `json:"config" jsonschema:"Chatbot configuration; omitted fields take the factory defaults"`
	OutputName   string         `json:"output_name" jsonschema:"Directory name for the generated project"`
	IncludeTests *bool          `json:"include_tests,omitempty" jsonschema:"Write a pytest scaffold (default true)"`
	IncludeDocs  *bool          `json:"include_docs,omitempty" jsonschema:"Write API documentation (default true)"`
}

func addGenerateTool(server *mcp.Server, gen Generator) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_chatbot",
		Description: "Generate a runnable chatbot project from a configuration",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a generateArgs) (*mcp.CallToolResult, any, error) {
		cfg, err := decodeConfig(a.Config)
		if err != nil {
			return nil, nil, err
		}
		greq := chatbot.NewRequest(*cfg, a.OutputName)
		if a.IncludeTests != nil {
			greq.IncludeTests = *a.IncludeTests
		}
		if a.IncludeDocs != nil {
			greq.IncludeDocs = *a.IncludeDocs
		}

		resp, err := gen.Run(ctx, greq)
		if err != nil {
			return nil, nil, fmt.Errorf("generation not started: %w", err)
		}
		return jsonResult(resp, !resp.Success)
	})
}

type previewArgs struct {
	Config map[string]any `json:"config" jsonschema:"Chatbot configuration; omitted fields take the factory defaults"`
}

func addPreviewTool(server *mcp.Server, preview PreviewFunc) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_architecture",
		Description: "Return the agent architecture the factory would design, without calling a model",
	}, func(ctx context.Context, req *mcp.CallToolRequest, a previewArgs) (*mcp.CallToolResult, any, error) {
		cfg, err := decodeConfig(a.Config)
		if err != nil {
			return nil, nil, err
		}
		return jsonResult(preview(cfg), false)
	})
}

// decodeConfig round-trips through JSON so factory defaults apply
func decodeConfig(raw map[string]any) (*chatbot.Config, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var cfg chatbot.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func jsonResult(v any, isError bool) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
		IsError: isError,
	}, nil, nil
}
