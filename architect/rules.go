package architect

import (
	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// Defaults are the model settings written into every designed agent
type Defaults struct {
	Provider    string
	Model       string
	Temperature float64
}

// Preview builds the rule-based architecture for cfg without calling a model.
func Preview(cfg *chatbot.Config, d Defaults) *chatbot.Architecture {
	arch := &chatbot.Architecture{
		Type:         chatbot.ArchitectureSingleAgent,
		Agents:       []chatbot.AgentDesign{},
		Tools:        []string{},
		Integrations: []chatbot.Integration{},
		DataStores:   []string{},
		APIEndpoints: []map[string]string{},
		TechStack: map[string]string{
			"framework":     "langgraph",
			"llm":           d.Provider,
			"ui":            "gradio",
			"api":           "fastapi",
			"observability": "opik",
		},
	}

	if cfg.IsMultiAgent {
		arch.Type = chatbot.ArchitectureMultiAgent
		arch.Agents = multiAgentSystem(cfg, d)
	} else {
		arch.Agents = []chatbot.AgentDesign{singleAgent(cfg, d)}
	}

	if cfg.EnableRAG {
		arch.Tools = append(arch.Tools, "vector_search")
		arch.DataStores = append(arch.DataStores, "vector_db")
	}
	if cfg.EnableFunctionCalling {
		arch.Tools = append(arch.Tools, "function_calling")
	}
	if cfg.EnableMemory {
		arch.DataStores = append(arch.DataStores, "conversation_memory")
	}
	if cfg.EnableWebSearch {
		arch.Tools = append(arch.Tools, "web_search")
	}

	cloned := cfg.Clone()
	arch.Integrations = append(arch.Integrations, cloned.Integrations...)
	arch.APIEndpoints = append(arch.APIEndpoints, cloned.APIEndpoints...)
	return arch
}

func singleAgent(cfg *chatbot.Config, d Defaults) chatbot.AgentDesign {
	capabilities := []string{"conversation", "task_execution"}
	if cfg.EnableRAG {
		capabilities = append(capabilities, "information_retrieval")
	}
	if cfg.EnableFunctionCalling {
		capabilities = append(capabilities, "function_calling")
	}
	return chatbot.AgentDesign{
		Name:         cfg.Name + "_agent",
		Role:         "primary",
		Description:  cfg.Description,
		Capabilities: capabilities,
		Tools:        agentTools(cfg),
		Model:        d.Model,
		Temperature:  d.Temperature,
	}
}

func multiAgentSystem(cfg *chatbot.Config, d Defaults) []chatbot.AgentDesign {
	agents := []chatbot.AgentDesign{{
		Name:         "coordinator",
		Role:         string(chatbot.RoleCoordinator),
		Description:  "Coordinates tasks between specialized agents",
		Capabilities: []string{"task_routing", "response_synthesis"},
		Tools:        []string{"agent_communication"},
		Model:        d.Model,
		Temperature:  0.3,
	}}

	switch cfg.ChatbotType {
	case chatbot.TypeCustomerSupport:
		agents = append(agents,
			chatbot.AgentDesign{
				Name:         "support_specialist",
				Role:         string(chatbot.RoleSpecialist),
				Description:  "Handles customer support queries",
				Capabilities: []string{"problem_solving", "escalation"},
				Tools:        []string{"knowledge_base", "ticket_system"},
				Model:        d.Model,
				Temperature:  0.5,
			},
			chatbot.AgentDesign{
				Name:         "researcher",
				Role:         string(chatbot.RoleResearcher),
				Description:  "Researches complex issues",
				Capabilities: []string{"information_gathering", "analysis"},
				Tools:        []string{"web_search", "documentation_search"},
				Model:        d.Model,
				Temperature:  0.7,
			},
		)
	case chatbot.TypeTechnicalSupport:
		agents = append(agents,
			chatbot.AgentDesign{
				Name:         "technical_analyst",
				Role:         string(chatbot.RoleAnalyst),
				Description:  "Analyzes technical issues",
				Capabilities: []string{"technical_analysis", "debugging"},
				Tools:        []string{"code_analysis", "log_analysis"},
				Model:        d.Model,
				Temperature:  0.3,
			},
			chatbot.AgentDesign{
				Name:         "solution_provider",
				Role:         string(chatbot.RoleSpecialist),
				Description:  "Provides technical solutions",
				Capabilities: []string{"solution_generation", "code_generation"},
				Tools:        []string{"code_generator", "documentation"},
				Model:        d.Model,
				Temperature:  0.6,
			},
		)
	}

	// agents declared in the config follow the built-in team
	for _, a := range cfg.Agents {
		model := a.Model
		if model == "" {
			model = d.Model
		}
		temperature := a.Temperature
		if temperature == 0 {
			temperature = d.Temperature
		}
		agents = append(agents, chatbot.AgentDesign{
			Name:         a.Name,
			Role:         string(a.Role),
			Description:  a.Description,
			Capabilities: []string{"conversation"},
			Tools:        append([]string{}, a.Tools...),
			Model:        model,
			Temperature:  temperature,
		})
	}
	return agents
}

func agentTools(cfg *chatbot.Config) []string {
	tools := []string{"conversation"}
	if cfg.EnableRAG {
		tools = append(tools, "vector_search")
	}
	if cfg.EnableFunctionCalling {
		tools = append(tools, "function_calling")
	}
	if cfg.EnableWebSearch {
		tools = append(tools, "web_search")
	}
	for _, in := range cfg.Integrations {
		switch in.Type() {
		case chatbot.IntegrationRESTAPI:
			tools = append(tools, "api_client")
		case chatbot.IntegrationDatabase:
			tools = append(tools, "database_query")
		case chatbot.IntegrationEmail:
			tools = append(tools, "email_client")
		}
	}
	return tools
}
