// Package codegen writes the runnable project for a designed chatbot.
package codegen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
	"github.com/sweetpotato0/chatbot-factory/prompt"
)

// Options configures a TemplateGenerator
type Options struct {
	// Provider, Model and CredentialName describe the LLM the generated bot talks to.
	Provider       string
	Model          string
	Temperature    float64
	CredentialName string

	// Templates must hold every Template* name. Nil uses the built-in templates.
	Templates *prompt.Manager
	// Knowledge, when set, writes knowledge/*.md for http(s) knowledge sources.
	Knowledge *KnowledgeFetcher
	Logger    *slog.Logger
}

// TemplateGenerator renders the project files from templates
type TemplateGenerator struct {
	opts      Options
	templates *prompt.Manager
	logger    *slog.Logger
}

// New creates a TemplateGenerator
func New(opts Options) (*TemplateGenerator, error) {
	templates := opts.Templates
	if templates == nil {
		templates = prompt.NewManager()
		if err := RegisterTemplates(templates); err != nil {
			return nil, err
		}
	}
	if opts.CredentialName == "" {
		opts.CredentialName = "GROQ_API_KEY"
	}
	if opts.Provider == "" {
		opts.Provider = "groq"
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("codegen")
	}
	return &TemplateGenerator{opts: opts, templates: templates, logger: logger}, nil
}

type projectFile struct {
	name   string
	render func() (string, error)
}

// GenerateFiles writes the project under dir and returns the written paths in order.
// On error the paths written so far are returned with it.
func (g *TemplateGenerator) GenerateFiles(ctx context.Context, cfg *chatbot.Config, arch *chatbot.Architecture, dir string) ([]string, error) {
	if cfg == nil {
		return nil, fmt.Errorf("codegen: nil config: %w", fterrors.ErrInvalidInput)
	}
	if dir == "" {
		return nil, fmt.Errorf("codegen: %w", fterrors.ErrOutputPathMissing)
	}
	if arch == nil {
		arch = &chatbot.Architecture{Type: chatbot.ArchitectureSingleAgent}
	}

	data := g.templateData(cfg, arch)
	files := []projectFile{
		{"main.py", g.renderer(TemplateMainPy, data)},
		{"requirements.txt", g.renderer(TemplateRequirements, data)},
		{"config.yaml", func() (string, error) { return g.configYAML(cfg, arch) }},
		{"architecture.json", func() (string, error) { return architectureJSON(arch) }},
		{"README.md", g.renderer(TemplateReadme, data)},
		{".env.example", g.renderer(TemplateEnvExample, data)},
		{filepath.Join("ui", "index.html"), func() (string, error) { return g.indexHTML(cfg) }},
	}
	if cfg.EnableDocker {
		files = append(files,
			projectFile{"Dockerfile", g.renderer(TemplateDockerfile, data)},
			projectFile{"docker-compose.yml", func() (string, error) { return composeYAML(cfg) }},
		)
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		content, err := f.render()
		if err != nil {
			return written, fmt.Errorf("render %s: %w", f.name, err)
		}
		path, err := writeFile(dir, f.name, content)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if g.opts.Knowledge != nil && len(cfg.KnowledgeSources) > 0 {
		written = append(written, g.writeKnowledge(ctx, cfg, dir)...)
	}

	g.logger.Debug("project files written", "chatbot", cfg.Name, "files", len(written))
	return written, nil
}

func (g *TemplateGenerator) renderer(name string, data map[string]any) func() (string, error) {
	return func() (string, error) {
		return g.templates.Render(name, data)
	}
}

func (g *TemplateGenerator) templateData(cfg *chatbot.Config, arch *chatbot.Architecture) map[string]any {
	return map[string]any{
		"Name":                  cfg.Name,
		"Description":           cfg.Description,
		"Type":                  string(cfg.ChatbotType),
		"ClassName":             chatbot.ClassName(cfg.Name),
		"Personality":           cfg.TraitNames(),
		"Tone":                  cfg.Tone,
		"Language":              cfg.Language,
		"DomainExpertise":       append([]string{}, cfg.DomainExpertise...),
		"SystemPrompt":          systemPrompt(cfg),
		"EnableRAG":             cfg.EnableRAG,
		"EnableMemory":          cfg.EnableMemory,
		"EnableDocker":          cfg.EnableDocker,
		"IsMultiAgent":          cfg.IsMultiAgent,
		"Port":                  cfg.Port,
		"MaxConversationLength": cfg.MaxConversationLength,
		"ResponseTimeout":       cfg.ResponseTimeout,
		"ArchitectureType":      arch.Type,
		"Agents":                arch.Agents,
		"Recommendations":       arch.Recommendations,
		"Provider":              g.opts.Provider,
		"Model":                 g.opts.Model,
		"Temperature":           g.opts.Temperature,
		"CredentialName":        g.opts.CredentialName,
	}
}

func systemPrompt(cfg *chatbot.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\n", cfg.Name, cfg.Description)
	if traits := cfg.TraitNames(); len(traits) > 0 {
		fmt.Fprintf(&b, "Personality: %s.\n", strings.Join(traits, ", "))
	}
	fmt.Fprintf(&b, "Tone: %s. Answer in language: %s.\n", cfg.Tone, cfg.Language)
	if len(cfg.DomainExpertise) > 0 {
		fmt.Fprintf(&b, "Domain expertise: %s.\n", strings.Join(cfg.DomainExpertise, ", "))
	}
	return b.String()
}

type runtimeConfig struct {
	Chatbot      *chatbot.Config       `yaml:"chatbot"`
	Architecture *chatbot.Architecture `yaml:"architecture"`
	LLM          struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"llm"`
}

func (g *TemplateGenerator) configYAML(cfg *chatbot.Config, arch *chatbot.Architecture) (string, error) {
	rc := runtimeConfig{Chatbot: cfg, Architecture: arch}
	rc.LLM.Provider = g.opts.Provider
	rc.LLM.Model = g.opts.Model
	rc.LLM.Temperature = g.opts.Temperature

	out, err := yaml.Marshal(rc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func architectureJSON(arch *chatbot.Architecture) (string, error) {
	out, err := json.MarshalIndent(arch, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

type composeService struct {
	Build       string   `yaml:"build"`
	Ports       []string `yaml:"ports"`
	EnvFile     []string `yaml:"env_file"`
	Restart     string   `yaml:"restart"`
	Environment []string `yaml:"environment,omitempty"`
}

func composeYAML(cfg *chatbot.Config) (string, error) {
	compose := map[string]any{
		"services": map[string]composeService{
			chatbot.ImageName(cfg.Name): {
				Build:       ".",
				Ports:       []string{fmt.Sprintf("%d:%d", cfg.Port, cfg.Port)},
				EnvFile:     []string{".env"},
				Restart:     "unless-stopped",
				Environment: []string{fmt.Sprintf("PORT=%d", cfg.Port)},
			},
		},
	}
	out, err := yaml.Marshal(compose)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
	logoPolicyOnce sync.Once
	logoPolicy     *bluemonday.Policy
)

// strictText escapes markup in user supplied text
func strictText() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// logoImage allows a single <img> with an http(s) source
func logoImage() *bluemonday.Policy {
	logoPolicyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowStandardURLs()
		p.AllowElements("img")
		p.AllowAttrs("src", "alt", "class").OnElements("img")
		logoPolicy = p
	})
	return logoPolicy
}

func (g *TemplateGenerator) indexHTML(cfg *chatbot.Config) (string, error) {
	logo := ""
	if u := strings.TrimSpace(cfg.LogoURL); u != "" {
		raw := fmt.Sprintf(`<img class="logo" alt="logo" src="%s">`, strings.ReplaceAll(u, `"`, "%22"))
		logo = strings.TrimSpace(logoImage().Sanitize(raw))
		if !strings.Contains(logo, "src=") {
			logo = ""
		}
	}
	// a stylesheet cannot contain markup, so any '<' could only close the style element
	css := strings.ReplaceAll(cfg.CustomCSS, "<", "")

	return g.templates.Render(TemplateIndexHTML, map[string]any{
		"Language":    strictText().Sanitize(cfg.Language),
		"Title":       strictText().Sanitize(cfg.Name),
		"Description": strictText().Sanitize(cfg.Description),
		"Theme":       strictText().Sanitize(cfg.UITheme),
		"CSS":         css,
		"Logo":        logo,
	})
}

func (g *TemplateGenerator) writeKnowledge(ctx context.Context, cfg *chatbot.Config, dir string) []string {
	var written []string
	for i, doc := range g.opts.Knowledge.FetchAll(ctx, cfg.KnowledgeSources) {
		path, err := writeFile(dir, filepath.Join("knowledge", fmt.Sprintf("source_%02d.md", i+1)), doc.Markdown())
		if err != nil {
			g.logger.Warn("knowledge file not written", "source", doc.Source, "error", err)
			continue
		}
		written = append(written, path)
	}
	return written
}

func writeFile(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
