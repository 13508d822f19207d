package codegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
)

func testConfig() *chatbot.Config {
	cfg := chatbot.DefaultConfig()
	cfg.Name = "Help Bot"
	cfg.Description = "Answers billing questions"
	cfg.PersonalityTraits = []chatbot.PersonalityTrait{chatbot.TraitFriendly}
	return &cfg
}

func testArchitecture() *chatbot.Architecture {
	return &chatbot.Architecture{
		Type:            chatbot.ArchitectureSingleAgent,
		Agents:          []chatbot.AgentDesign{{Name: "Help Bot_agent", Role: "primary", Description: "helps"}},
		Tools:           []string{"vector_search"},
		TechStack:       map[string]string{"framework": "langgraph"},
		Recommendations: "Keep it simple.",
	}
}

func newGenerator(t *testing.T, opts Options) *TemplateGenerator {
	t.Helper()
	opts.Logger = logging.Discard()
	g, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func relative(t *testing.T, dir string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestGenerateFilesWithDocker(t *testing.T) {
	dir := t.TempDir()
	g := newGenerator(t, Options{Provider: "groq", Model: "llama-3.1-70b-versatile", Temperature: 0.7, CredentialName: "GROQ_API_KEY"})

	files, err := g.GenerateFiles(context.Background(), testConfig(), testArchitecture(), dir)
	if err != nil {
		t.Fatalf("GenerateFiles failed: %v", err)
	}

	want := []string{
		"main.py", "requirements.txt", "config.yaml", "architecture.json",
		"README.md", ".env.example", "ui/index.html", "Dockerfile", "docker-compose.yml",
	}
	if diff := cmp.Diff(want, relative(t, dir, files)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	mainPy := readFile(t, filepath.Join(dir, "main.py"))
	for _, s := range []string{"class HelpBotBot:", "from langchain_groq import ChatGroq", `os.getenv("GROQ_API_KEY")`, "port=7860"} {
		if !strings.Contains(mainPy, s) {
			t.Errorf("main.py missing %q", s)
		}
	}

	var arch chatbot.Architecture
	if err := json.Unmarshal([]byte(readFile(t, filepath.Join(dir, "architecture.json"))), &arch); err != nil {
		t.Fatalf("architecture.json: %v", err)
	}
	if diff := cmp.Diff(testArchitecture(), &arch); diff != "" {
		t.Errorf("architecture mismatch (-want +got):\n%s", diff)
	}

	var rc map[string]any
	if err := yaml.Unmarshal([]byte(readFile(t, filepath.Join(dir, "config.yaml"))), &rc); err != nil {
		t.Fatalf("config.yaml: %v", err)
	}
	if llm, _ := rc["llm"].(map[string]any); llm["model"] != "llama-3.1-70b-versatile" {
		t.Errorf("config.yaml llm = %v", rc["llm"])
	}

	compose := readFile(t, filepath.Join(dir, "docker-compose.yml"))
	if !strings.Contains(compose, "help-bot-chatbot:") || !strings.Contains(compose, "7860:7860") {
		t.Errorf("unexpected compose file:\n%s", compose)
	}

	readme := readFile(t, filepath.Join(dir, "README.md"))
	if !strings.Contains(readme, "## Docker") || !strings.Contains(readme, "Keep it simple.") {
		t.Errorf("unexpected README:\n%s", readme)
	}
}

func TestGenerateFilesWithoutDocker(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.EnableDocker = false

	files, err := newGenerator(t, Options{}).GenerateFiles(context.Background(), cfg, nil, dir)
	if err != nil {
		t.Fatalf("GenerateFiles failed: %v", err)
	}
	for _, f := range relative(t, dir, files) {
		if f == "Dockerfile" || f == "docker-compose.yml" {
			t.Errorf("unexpected %s when docker is disabled", f)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); !os.IsNotExist(err) {
		t.Error("Dockerfile should not exist")
	}
}

func TestGenerateFilesProviderVariants(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{provider: "openai", want: "from langchain_openai import ChatOpenAI"},
		{provider: "claude", want: "from langchain_anthropic import ChatAnthropic"},
		{provider: "gemini", want: "from langchain_google_genai import ChatGoogleGenerativeAI"},
		{provider: "cohere", want: "from langchain_cohere import ChatCohere"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			dir := t.TempDir()
			g := newGenerator(t, Options{Provider: tt.provider, Model: "m", CredentialName: "KEY"})
			if _, err := g.GenerateFiles(context.Background(), testConfig(), testArchitecture(), dir); err != nil {
				t.Fatalf("GenerateFiles failed: %v", err)
			}
			if mainPy := readFile(t, filepath.Join(dir, "main.py")); !strings.Contains(mainPy, tt.want) {
				t.Errorf("main.py missing %q", tt.want)
			}
		})
	}
}

func TestIndexHTMLSanitizesInput(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Name = `Evil <script>alert(1)</script>`
	cfg.Description = `<b onclick="x()">bold</b>`
	cfg.CustomCSS = `h1 > span { color: red; }</style><script>bad()</script>`
	cfg.LogoURL = "javascript:alert(1)"

	if _, err := newGenerator(t, Options{}).GenerateFiles(context.Background(), cfg, nil, dir); err != nil {
		t.Fatalf("GenerateFiles failed: %v", err)
	}
	html := readFile(t, filepath.Join(dir, "ui", "index.html"))
	if strings.Contains(html, "<script") || strings.Contains(html, "onclick") || strings.Contains(html, "</style><") {
		t.Errorf("markup leaked into index.html:\n%s", html)
	}
	if strings.Contains(html, "javascript:") {
		t.Errorf("unsafe logo url kept:\n%s", html)
	}
	if !strings.Contains(html, "h1 > span") {
		t.Errorf("css selector should survive:\n%s", html)
	}
}

func TestIndexHTMLKeepsHTTPSLogo(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.LogoURL = "https://example.com/logo.png"

	if _, err := newGenerator(t, Options{}).GenerateFiles(context.Background(), cfg, nil, dir); err != nil {
		t.Fatalf("GenerateFiles failed: %v", err)
	}
	if html := readFile(t, filepath.Join(dir, "ui", "index.html")); !strings.Contains(html, "https://example.com/logo.png") {
		t.Errorf("logo missing:\n%s", html)
	}
}

func TestGenerateFilesErrors(t *testing.T) {
	g := newGenerator(t, Options{})

	if _, err := g.GenerateFiles(context.Background(), nil, nil, t.TempDir()); !errors.Is(err, fterrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := g.GenerateFiles(context.Background(), testConfig(), nil, ""); !errors.Is(err, fterrors.ErrOutputPathMissing) {
		t.Errorf("expected ErrOutputPathMissing, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	files, err := g.GenerateFiles(ctx, testConfig(), nil, t.TempDir())
	if !errors.Is(err, context.Canceled) || len(files) != 0 {
		t.Errorf("expected cancellation before any file, got %v %v", files, err)
	}
}

func TestGenerateFilesWritesKnowledge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/faq":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><head><title>FAQ</title></head><body><h1>Billing</h1><p>Invoices are monthly.</p><li>Refunds in 5 days</li></body></html>`))
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("plain   notes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := testConfig()
	cfg.EnableDocker = false
	cfg.KnowledgeSources = []string{srv.URL + "/faq", "local/file.pdf", srv.URL + "/missing", srv.URL + "/notes.txt"}

	fetcher := NewKnowledgeFetcher(WithHTTPClient(srv.Client()), WithFetcherLogger(logging.Discard()))
	g := newGenerator(t, Options{Knowledge: fetcher})

	files, err := g.GenerateFiles(context.Background(), cfg, nil, dir)
	if err != nil {
		t.Fatalf("GenerateFiles failed: %v", err)
	}
	rel := relative(t, dir, files)
	if rel[len(rel)-2] != "knowledge/source_01.md" || rel[len(rel)-1] != "knowledge/source_02.md" {
		t.Fatalf("unexpected knowledge files %v", rel)
	}

	faq := readFile(t, filepath.Join(dir, "knowledge", "source_01.md"))
	for _, s := range []string{"# FAQ", "## Billing", "Invoices are monthly.", "- Refunds in 5 days"} {
		if !strings.Contains(faq, s) {
			t.Errorf("knowledge doc missing %q:\n%s", s, faq)
		}
	}
	if notes := readFile(t, filepath.Join(dir, "knowledge", "source_02.md")); !strings.Contains(notes, "plain notes") {
		t.Errorf("unexpected notes doc:\n%s", notes)
	}
}
