package architect

import "github.com/sweetpotato0/chatbot-factory/prompt"

// Template names used by the architect
const (
	TemplateSystem = "architect_system"
	TemplateUser   = "architect_user"
)

const systemTemplate = `You are an expert chatbot architect. Your job is to design the optimal architecture for a chatbot based on the given requirements.

Consider:
1. Single-agent vs multi-agent approach
2. Required tools and integrations
3. Data flow and processing pipeline
4. Scalability and performance requirements
5. Security considerations

Provide a detailed architecture plan in JSON format.`

const userTemplate = `
Design architecture for a chatbot with these requirements:

Name: {{.Name}}
Type: {{.Type}}
Description: {{.Description}}
Personality: [{{join .Personality ", "}}]
Domain Expertise: [{{join .DomainExpertise ", "}}]
Capabilities:
- RAG: {{pybool .EnableRAG}}
- Function Calling: {{pybool .EnableFunctionCalling}}
- Memory: {{pybool .EnableMemory}}
- Web Search: {{pybool .EnableWebSearch}}
Integrations: {{.Integrations}}
Multi-agent: {{pybool .IsMultiAgent}}

Provide architecture recommendations including:
1. Agent structure (single or multi-agent)
2. Required tools and capabilities
3. Data storage requirements
4. API integrations needed
5. Recommended tech stack components
`

// RegisterTemplates adds the architect prompts to m
func RegisterTemplates(m *prompt.Manager) error {
	if err := m.RegisterString(TemplateSystem, systemTemplate); err != nil {
		return err
	}
	return m.RegisterString(TemplateUser, userTemplate)
}
