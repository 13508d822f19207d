package chatbot

// Architecture types
const (
	ArchitectureSingleAgent = "single_agent"
	ArchitectureMultiAgent  = "multi_agent"
)

// Architecture is the design produced for a chatbot. The pipeline passes it
// from the designer to the code generator without interpreting it.
type Architecture struct {
	Type         string              `json:"type" yaml:"type"`
	Agents       []AgentDesign       `json:"agents" yaml:"agents"`
	Tools        []string            `json:"tools" yaml:"tools"`
	Integrations []Integration       `json:"integrations" yaml:"integrations"`
	DataStores   []string            `json:"data_stores" yaml:"data_stores"`
	APIEndpoints []map[string]string `json:"api_endpoints" yaml:"api_endpoints"`
	TechStack    map[string]string   `json:"tech_stack" yaml:"tech_stack"`
	// Recommendations holds the free-form advice returned by the LLM, if any.
	Recommendations string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// AgentDesign describes one agent of the designed system
type AgentDesign struct {
	Name         string   `json:"name" yaml:"name"`
	Role         string   `json:"role" yaml:"role"`
	Description  string   `json:"description" yaml:"description"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
	Tools        []string `json:"tools" yaml:"tools"`
	Model        string   `json:"model" yaml:"model"`
	Temperature  float64  `json:"temperature" yaml:"temperature"`
}

// HasTool reports whether the architecture lists the tool.
func (a *Architecture) HasTool(name string) bool {
	if a == nil {
		return false
	}
	for _, t := range a.Tools {
		if t == name {
			return true
		}
	}
	return false
}
