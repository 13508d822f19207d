package codegen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"https://example.com/docs", true},
		{"http://example.com", true},
		{"ftp://example.com/file", false},
		{"./docs/guide.md", false},
		{"https://", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.source); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.source, got, tt.want)
		}
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	title, content, err := htmlToMarkdown(`<title> Guide </title><h2>Setup</h2><p>Run   it.</p><p>Run   it.</p><pre>make build</pre>`)
	if err != nil {
		t.Fatalf("htmlToMarkdown failed: %v", err)
	}
	if title != "Guide" {
		t.Errorf("title = %q", title)
	}
	want := "### Setup\n\nRun it.\n\n```\nmake build\n```"
	if content != want {
		t.Errorf("content = %q, want %q", content, want)
	}
}

type wordTruncator struct{}

func (wordTruncator) Truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	if len(words) > maxTokens {
		words = words[:maxTokens]
	}
	return strings.Join(words, " ")
}

func TestFetchTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("one two three four five"))
	}))
	defer srv.Close()

	f := NewKnowledgeFetcher(WithHTTPClient(srv.Client()), WithTruncation(wordTruncator{}, 2), WithFetcherLogger(logging.Discard()))
	doc, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if doc.Content != "one two" {
		t.Errorf("Content = %q", doc.Content)
	}
	if !strings.HasPrefix(doc.Markdown(), "# "+srv.URL) {
		t.Errorf("Markdown should fall back to the source as title: %q", doc.Markdown())
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewKnowledgeFetcher(WithHTTPClient(srv.Client()), WithFetcherLogger(logging.Discard()))
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 500 response")
	}
}
