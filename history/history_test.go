package history

import (
	"testing"
	"time"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

func TestNewRecord(t *testing.T) {
	cfg := chatbot.DefaultConfig()
	cfg.Name = "Help Bot"
	req := chatbot.NewRequest(cfg, "help")
	resp := &chatbot.GenerationResponse{
		Success:        true,
		OutputPath:     "/tmp/out/help",
		Message:        "ok",
		FilesGenerated: []string{"a", "b"},
		DockerImage:    "localhost:5000/help-bot-chatbot:latest",
	}

	rec := NewRecord(req, resp, "run-1", 2*time.Second)
	if rec.ID == "" {
		t.Error("expected generated ID")
	}
	if rec.Name != "Help Bot" || rec.Type != "customer_support" {
		t.Errorf("unexpected identity %q/%q", rec.Name, rec.Type)
	}
	if rec.FilesGenerated != 2 || !rec.Success || rec.RunID != "run-1" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.DockerImage != resp.DockerImage || rec.OutputPath != resp.OutputPath {
		t.Errorf("unexpected outputs %+v", rec)
	}
}

func TestNewRecordNilInputs(t *testing.T) {
	rec := NewRecord(nil, nil, "", 0)
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Errorf("expected ID and timestamp, got %+v", rec)
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Now()
	recs := []*Record{
		{ID: "old", CreatedAt: base.Add(-time.Hour)},
		{ID: "new", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(-time.Minute)},
	}
	got := SortNewestFirst(recs, 2)
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "mid" {
		t.Errorf("unexpected order %v, %v", got[0].ID, got[1].ID)
	}
}
