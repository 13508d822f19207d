package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sweetpotato0/chatbot-factory/message"
)

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-latest",
			"content": [{"type": "text", "text": "coordinator plus "}, {"type": "text", "text": "specialists"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 4}
		}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig("sk-ant-test", srv.URL)
	cfg.MaxRetries = 0
	reply, err := New(cfg).Generate(context.Background(), []*message.Message{
		message.System("You are an architect."),
		message.User("Design a bot."),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply.Content != "coordinator plus specialists" {
		t.Errorf("reply = %q", reply.Content)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 1 {
		t.Errorf("system prompt should not be sent as a message, got %v", body["messages"])
	}
	if body["system"] == nil {
		t.Error("expected system prompt in request")
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"m","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig("sk-ant-test", srv.URL)
	cfg.MaxRetries = 0
	if _, err := New(cfg).Generate(context.Background(), []*message.Message{message.User("hi")}); err == nil {
		t.Error("expected error for empty content")
	}
}
