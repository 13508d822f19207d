package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported LLM providers
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderCohere = "cohere"
)

// Supported history backends
const (
	HistoryMemory   = "memory"
	HistoryRedis    = "redis"
	HistoryMongo    = "mongo"
	HistoryPostgres = "postgres"
)

var credentialKeys = map[string]string{
	ProviderGroq:   "GROQ_API_KEY",
	ProviderOpenAI: "OPENAI_API_KEY",
	ProviderClaude: "ANTHROPIC_API_KEY",
	ProviderGemini: "GEMINI_API_KEY",
	ProviderCohere: "COHERE_API_KEY",
}

var defaultModels = map[string]string{
	ProviderGroq:   "llama-3.1-70b-versatile",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderClaude: "claude-3-5-sonnet-latest",
	ProviderGemini: "gemini-1.5-pro",
	ProviderCohere: "command-r-plus",
}

// ArtifactSettings configures the S3-compatible bucket generated projects are published to.
type ArtifactSettings struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Settings is the process-wide, read-only factory configuration.
type Settings struct {
	LLMProvider string
	APIKeys     map[string]string // env key -> value
	Model       string
	Temperature float64
	MaxTokens   int

	OutputPath     string
	TemplatesPath  string
	DockerRegistry string

	HTTPAddr           string
	AuthSecret         string // HMAC secret for API bearer tokens; empty disables auth
	MaxConcurrency     int
	HistoryBackend     string
	ArchitectCacheSize int

	Artifact ArtifactSettings
}

// Load reads an optional .env file and then the process environment.
func Load() (*Settings, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds settings from a lookup function. Unset keys fall back to defaults.
func FromEnv(getenv func(string) string) (*Settings, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	provider := strings.ToLower(firstNonEmpty(get("LLM_PROVIDER"), ProviderGroq))

	s := &Settings{
		LLMProvider:    provider,
		APIKeys:        make(map[string]string, len(credentialKeys)),
		Model:          firstNonEmpty(get("DEFAULT_MODEL"), defaultModels[provider]),
		OutputPath:     firstNonEmpty(get("OUTPUT_PATH"), "./Output_Chatbot"),
		TemplatesPath:  firstNonEmpty(get("TEMPLATES_PATH"), "./templates"),
		DockerRegistry: firstNonEmpty(get("DOCKER_REGISTRY"), "localhost:5000"),
		HTTPAddr:       firstNonEmpty(get("HTTP_ADDR"), ":7860"),
		AuthSecret:     get("JWT_SECRET"),
		HistoryBackend: strings.ToLower(firstNonEmpty(get("HISTORY_BACKEND"), HistoryMemory)),
		Artifact:       artifactFromEnv(get),
	}
	for _, key := range credentialKeys {
		if v := get(key); v != "" {
			s.APIKeys[key] = v
		}
	}

	var err error
	if s.Temperature, err = parseFloat(get("TEMPERATURE"), 0.7); err != nil {
		return nil, fmt.Errorf("TEMPERATURE: %w", err)
	}
	if s.MaxTokens, err = parseInt(get("MAX_TOKENS"), 4096); err != nil {
		return nil, fmt.Errorf("MAX_TOKENS: %w", err)
	}
	if s.MaxConcurrency, err = parseInt(get("MAX_CONCURRENCY"), 10); err != nil {
		return nil, fmt.Errorf("MAX_CONCURRENCY: %w", err)
	}
	if s.ArchitectCacheSize, err = parseInt(get("ARCHITECT_CACHE_SIZE"), 0); err != nil {
		return nil, fmt.Errorf("ARCHITECT_CACHE_SIZE: %w", err)
	}

	return s, nil
}

func artifactFromEnv(get func(string) string) ArtifactSettings {
	endpoint := get("ARTIFACT_S3_ENDPOINT")
	useSSL := true
	if raw := get("ARTIFACT_S3_USE_SSL"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			useSSL = v
		}
	}
	return ArtifactSettings{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(get("ARTIFACT_S3_REGION"), "us-east-1"),
		AccessKey: firstNonEmpty(get("ARTIFACT_S3_ACCESS_KEY"), get("MINIO_ROOT_USER")),
		SecretKey: firstNonEmpty(get("ARTIFACT_S3_SECRET_KEY"), get("MINIO_ROOT_PASSWORD")),
		Bucket:    firstNonEmpty(get("ARTIFACT_S3_BUCKET"), "chatbot-factory-artifacts"),
		UseSSL:    useSSL,
	}
}

// CredentialName returns the environment key holding the active provider's API key.
func (s *Settings) CredentialName() string {
	if key, ok := credentialKeys[s.LLMProvider]; ok {
		return key
	}
	return credentialKeys[ProviderGroq]
}

// HasCredential reports whether the active provider's API key is configured.
func (s *Settings) HasCredential() bool {
	return s.APIKey() != ""
}

// APIKey returns the active provider's API key, or "" when unset.
func (s *Settings) APIKey() string {
	return s.APIKeys[s.CredentialName()]
}

// Validate checks the settings and reports every problem at once.
func (s *Settings) Validate() error {
	v := NewValidator()

	v.ValidateOneOf("LLM_PROVIDER", s.LLMProvider, ProviderGroq, ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderCohere)
	v.RequireNonEmpty("DEFAULT_MODEL", s.Model)
	v.ValidateFloatRange("TEMPERATURE", s.Temperature, 0, 2)
	v.RequirePositive("MAX_TOKENS", s.MaxTokens)
	v.RequireNonEmpty("OUTPUT_PATH", s.OutputPath)
	v.RequireNonEmpty("HTTP_ADDR", s.HTTPAddr)
	v.RequirePositive("MAX_CONCURRENCY", s.MaxConcurrency)
	v.ValidateOneOf("HISTORY_BACKEND", s.HistoryBackend, HistoryMemory, HistoryRedis, HistoryMongo, HistoryPostgres)
	v.Check(s.ArchitectCacheSize >= 0, "ARCHITECT_CACHE_SIZE", "value cannot be negative")

	if s.Artifact.Enabled {
		v.RequireNonEmpty("ARTIFACT_S3_BUCKET", s.Artifact.Bucket)
		v.RequireNonEmpty("ARTIFACT_S3_ACCESS_KEY", s.Artifact.AccessKey)
		v.RequireNonEmpty("ARTIFACT_S3_SECRET_KEY", s.Artifact.SecretKey)
	}

	return v.Error()
}

func parseInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func parseFloat(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
