package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

type stubGenerator struct {
	got *chatbot.GenerationRequest
}

func (g *stubGenerator) Run(ctx context.Context, req *chatbot.GenerationRequest) (*chatbot.GenerationResponse, error) {
	g.got = req
	return &chatbot.GenerationResponse{
		Success:        req.Config.Name != "",
		Message:        "done",
		FilesGenerated: []string{},
		Errors:         []string{},
	}, nil
}

func connect(t *testing.T, server *mcp.Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()

	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestListTools(t *testing.T) {
	cs := connect(t, NewServer(&stubGenerator{}, func(*chatbot.Config) *chatbot.Architecture { return nil }))

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	if !names["generate_chatbot"] || !names["preview_architecture"] {
		t.Errorf("unexpected tools %v", names)
	}
}

func TestGenerateTool(t *testing.T) {
	gen := &stubGenerator{}
	cs := connect(t, NewServer(gen, nil))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "generate_chatbot",
		Arguments: map[string]any{
			"config":      map[string]any{"name": "Help Bot", "enable_docker": false},
			"output_name": "help",
			"include_docs": false,
		},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", text(t, res))
	}

	if gen.got == nil {
		t.Fatal("generator not called")
	}
	if gen.got.Config.Name != "Help Bot" || gen.got.Config.EnableDocker {
		t.Errorf("unexpected config %+v", gen.got.Config)
	}
	if gen.got.Config.Port != 7860 {
		t.Errorf("defaults not applied, port = %d", gen.got.Config.Port)
	}
	if !gen.got.IncludeTests || gen.got.IncludeDocs {
		t.Errorf("include flags = %v/%v", gen.got.IncludeTests, gen.got.IncludeDocs)
	}

	var resp chatbot.GenerationResponse
	if err := json.Unmarshal([]byte(text(t, res)), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Message != "done" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestGenerateToolReportsFailure(t *testing.T) {
	cs := connect(t, NewServer(&stubGenerator{}, nil))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "generate_chatbot",
		Arguments: map[string]any{"config": map[string]any{}, "output_name": "x"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("unsuccessful generation should be flagged as a tool error")
	}
}

func TestPreviewTool(t *testing.T) {
	var got *chatbot.Config
	cs := connect(t, NewServer(&stubGenerator{}, func(cfg *chatbot.Config) *chatbot.Architecture {
		got = cfg
		return &chatbot.Architecture{Type: chatbot.ArchitectureMultiAgent}
	}))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "preview_architecture",
		Arguments: map[string]any{"config": map[string]any{"name": "Team", "is_multi_agent": true}},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if got == nil || !got.IsMultiAgent {
		t.Fatalf("preview received %+v", got)
	}

	var arch chatbot.Architecture
	if err := json.Unmarshal([]byte(text(t, res)), &arch); err != nil {
		t.Fatalf("decode architecture: %v", err)
	}
	if arch.Type != chatbot.ArchitectureMultiAgent {
		t.Errorf("Type = %q", arch.Type)
	}
}

func TestDecodeConfigDefaults(t *testing.T) {
	cfg, err := decodeConfig(nil)
	if err != nil {
		t.Fatalf("decodeConfig: %v", err)
	}
	if cfg.ChatbotType != chatbot.TypeCustomerSupport || !cfg.EnableDocker {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}
