package chatbot

import (
	"strings"
)

// Type identifies the kind of chatbot to generate
type Type string

const (
	TypeCustomerSupport   Type = "customer_support"
	TypeSalesAssistant    Type = "sales_assistant"
	TypeKnowledgeBase     Type = "knowledge_base"
	TypeCreativeAssistant Type = "creative_assistant"
	TypeTechnicalSupport  Type = "technical_support"
	TypeMultiAgentTeam    Type = "multi_agent_team"
)

// Types lists every supported chatbot type
func Types() []Type {
	return []Type{
		TypeCustomerSupport,
		TypeSalesAssistant,
		TypeKnowledgeBase,
		TypeCreativeAssistant,
		TypeTechnicalSupport,
		TypeMultiAgentTeam,
	}
}

// PersonalityTrait describes how the generated chatbot behaves
type PersonalityTrait string

const (
	TraitProfessional PersonalityTrait = "professional"
	TraitFriendly     PersonalityTrait = "friendly"
	TraitCasual       PersonalityTrait = "casual"
	TraitFormal       PersonalityTrait = "formal"
	TraitHumorous     PersonalityTrait = "humorous"
	TraitEmpathetic   PersonalityTrait = "empathetic"
	TraitDirect       PersonalityTrait = "direct"
)

// IntegrationType names an external system the chatbot talks to
type IntegrationType string

const (
	IntegrationRESTAPI      IntegrationType = "rest_api"
	IntegrationDatabase     IntegrationType = "database"
	IntegrationEmail        IntegrationType = "email"
	IntegrationSlack        IntegrationType = "slack"
	IntegrationDiscord      IntegrationType = "discord"
	IntegrationWebhook      IntegrationType = "webhook"
	IntegrationFileSystem   IntegrationType = "file_system"
	IntegrationSearchEngine IntegrationType = "search_engine"
)

// AgentRole is the role of an agent inside a multi-agent system
type AgentRole string

const (
	RoleCoordinator AgentRole = "coordinator"
	RoleResearcher  AgentRole = "researcher"
	RoleAnalyst     AgentRole = "analyst"
	RoleWriter      AgentRole = "writer"
	RoleReviewer    AgentRole = "reviewer"
	RoleSpecialist  AgentRole = "specialist"
)

// Integration is a free-form integration entry. Only "type" is interpreted.
type Integration map[string]any

// HasType reports whether a type is declared. Missing, nil, empty strings,
// false, zero numbers and empty collections count as undeclared; anything
// else, including a whitespace-only string, counts as declared.
func (i Integration) HasType() bool {
	raw, ok := i["type"]
	if !ok || raw == nil {
		return false
	}
	switch v := raw.(type) {
	case string:
		return v != ""
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	return true
}

// Type returns the declared integration type, or "" when none is declared
// as a string.
func (i Integration) Type() IntegrationType {
	raw, ok := i["type"]
	if !ok || raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return IntegrationType(strings.TrimSpace(s))
}

// AgentConfig declares one agent of a multi-agent system
type AgentConfig struct {
	Name         string    `json:"name" yaml:"name" toml:"name"`
	Role         AgentRole `json:"role" yaml:"role" toml:"role"`
	Description  string    `json:"description" yaml:"description" toml:"description"`
	SystemPrompt string    `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`
	Tools        []string  `json:"tools,omitempty" yaml:"tools,omitempty" toml:"tools,omitempty"`
	Model        string    `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`
	Temperature  float64   `json:"temperature,omitempty" yaml:"temperature,omitempty" toml:"temperature,omitempty"`
}

// Config is the declarative description of a chatbot to generate.
// Use DefaultConfig as the base before decoding so omitted fields keep their defaults.
type Config struct {
	// Basic information
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description" yaml:"description" toml:"description"`
	ChatbotType Type   `json:"chatbot_type" yaml:"chatbot_type" toml:"chatbot_type"`

	// Personality and behaviour
	PersonalityTraits []PersonalityTrait `json:"personality_traits" yaml:"personality_traits" toml:"personality_traits"`
	Tone              string             `json:"tone" yaml:"tone" toml:"tone"`
	Language          string             `json:"language" yaml:"language" toml:"language"`

	// Knowledge and context
	DomainExpertise  []string `json:"domain_expertise" yaml:"domain_expertise" toml:"domain_expertise"`
	KnowledgeSources []string `json:"knowledge_sources" yaml:"knowledge_sources" toml:"knowledge_sources"`
	ContextWindow    int      `json:"context_window" yaml:"context_window" toml:"context_window"`

	// Capabilities
	EnableRAG             bool `json:"enable_rag" yaml:"enable_rag" toml:"enable_rag"`
	EnableFunctionCalling bool `json:"enable_function_calling" yaml:"enable_function_calling" toml:"enable_function_calling"`
	EnableMemory          bool `json:"enable_memory" yaml:"enable_memory" toml:"enable_memory"`
	EnableWebSearch       bool `json:"enable_web_search" yaml:"enable_web_search" toml:"enable_web_search"`

	// Integrations
	Integrations []Integration      `json:"integrations" yaml:"integrations" toml:"integrations"`
	APIEndpoints []map[string]string `json:"api_endpoints" yaml:"api_endpoints" toml:"api_endpoints"`

	// Multi-agent configuration
	IsMultiAgent bool          `json:"is_multi_agent" yaml:"is_multi_agent" toml:"is_multi_agent"`
	Agents       []AgentConfig `json:"agents" yaml:"agents" toml:"agents"`

	// UI configuration
	UITheme   string `json:"ui_theme" yaml:"ui_theme" toml:"ui_theme"`
	CustomCSS string `json:"custom_css,omitempty" yaml:"custom_css,omitempty" toml:"custom_css,omitempty"`
	LogoURL   string `json:"logo_url,omitempty" yaml:"logo_url,omitempty" toml:"logo_url,omitempty"`

	// Deployment
	EnableDocker bool `json:"enable_docker" yaml:"enable_docker" toml:"enable_docker"`
	Port         int  `json:"port" yaml:"port" toml:"port"`

	// Advanced settings
	MaxConversationLength int `json:"max_conversation_length" yaml:"max_conversation_length" toml:"max_conversation_length"`
	ResponseTimeout       int `json:"response_timeout" yaml:"response_timeout" toml:"response_timeout"`
	RateLimit             int `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty" toml:"rate_limit,omitempty"`
}

// DefaultConfig returns a Config populated with the factory defaults
func DefaultConfig() Config {
	return Config{
		ChatbotType:           TypeCustomerSupport,
		Tone:                  "professional",
		Language:              "en",
		ContextWindow:         4096,
		EnableRAG:             true,
		EnableFunctionCalling: true,
		EnableMemory:          true,
		UITheme:               "default",
		EnableDocker:          true,
		Port:                  7860,
		MaxConversationLength: 50,
		ResponseTimeout:       30,
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cloned := *c
	cloned.PersonalityTraits = append([]PersonalityTrait(nil), c.PersonalityTraits...)
	cloned.DomainExpertise = append([]string(nil), c.DomainExpertise...)
	cloned.KnowledgeSources = append([]string(nil), c.KnowledgeSources...)
	cloned.Agents = append([]AgentConfig(nil), c.Agents...)
	if c.Integrations != nil {
		cloned.Integrations = make([]Integration, len(c.Integrations))
		for i, in := range c.Integrations {
			cp := make(Integration, len(in))
			for k, v := range in {
				cp[k] = v
			}
			cloned.Integrations[i] = cp
		}
	}
	if c.APIEndpoints != nil {
		cloned.APIEndpoints = make([]map[string]string, len(c.APIEndpoints))
		for i, ep := range c.APIEndpoints {
			cp := make(map[string]string, len(ep))
			for k, v := range ep {
				cp[k] = v
			}
			cloned.APIEndpoints[i] = cp
		}
	}
	return &cloned
}

// TraitNames returns the personality traits as plain strings
func (c *Config) TraitNames() []string {
	out := make([]string, 0, len(c.PersonalityTraits))
	for _, t := range c.PersonalityTraits {
		out = append(out, string(t))
	}
	return out
}
