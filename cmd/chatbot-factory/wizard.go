package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"gopkg.in/yaml.v3"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// prompter asks the questions of the config wizard
type prompter interface {
	Input(message, def string, required bool) (string, error)
	Select(message string, options []string, def string) (string, error)
	MultiSelect(message string, options []string) ([]string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(message, def string, required bool) (string, error) {
	var out string
	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out, opts...)
	return out, err
}

func (surveyPrompter) Select(message string, options []string, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Select{Message: message, Options: options, Default: def}, &out)
	return out, err
}

func (surveyPrompter) MultiSelect(message string, options []string) ([]string, error) {
	var out []string
	err := survey.AskOne(&survey.MultiSelect{Message: message, Options: options}, &out)
	return out, err
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, err
}

func initConfig(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	out := fs.String("out", "chatbot.yaml", "file to write")
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := os.Stat(*out); err == nil && !*force {
		return fmt.Errorf("init: %s exists (use -force to overwrite)", *out)
	}

	cfg, err := runWizard(ctx, surveyPrompter{})
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s; run: chatbot-factory generate -config %s\n", *out, *out)
	return nil
}

// runWizard builds a config from the answers, starting from the defaults.
func runWizard(ctx context.Context, p prompter) (*chatbot.Config, error) {
	cfg := chatbot.DefaultConfig()
	var err error

	ask := func(fn func() error) {
		if err != nil {
			return
		}
		if err = ctx.Err(); err != nil {
			return
		}
		err = fn()
	}

	ask(func() (e error) {
		cfg.Name, e = p.Input("Chatbot name:", "", true)
		return
	})
	ask(func() (e error) {
		cfg.Description, e = p.Input("What should it do?", "", true)
		return
	})
	ask(func() error {
		t, e := p.Select("Chatbot type:", typeNames(), string(cfg.ChatbotType))
		cfg.ChatbotType = chatbot.Type(t)
		return e
	})
	ask(func() error {
		traits, e := p.MultiSelect("Personality traits:", traitNames())
		for _, t := range traits {
			cfg.PersonalityTraits = append(cfg.PersonalityTraits, chatbot.PersonalityTrait(t))
		}
		return e
	})
	ask(func() error {
		raw, e := p.Input("Domain expertise (comma separated):", "", false)
		cfg.DomainExpertise = splitList(raw)
		return e
	})
	ask(func() error {
		raw, e := p.Input("Knowledge sources, files or URLs (comma separated):", "", false)
		cfg.KnowledgeSources = splitList(raw)
		return e
	})
	ask(func() (e error) {
		cfg.EnableRAG, e = p.Confirm("Enable retrieval over the knowledge sources?", cfg.EnableRAG)
		return
	})
	ask(func() (e error) {
		cfg.EnableWebSearch, e = p.Confirm("Enable web search?", cfg.EnableWebSearch)
		return
	})
	ask(func() (e error) {
		cfg.IsMultiAgent, e = p.Confirm("Multi-agent system?", cfg.ChatbotType == chatbot.TypeMultiAgentTeam)
		return
	})
	if cfg.IsMultiAgent {
		ask(func() error {
			raw, e := p.Input("Agent names (comma separated):", "", true)
			if e != nil {
				return e
			}
			for _, name := range splitList(raw) {
				role, e := p.Select("Role of "+name+":", roleNames(), string(chatbot.RoleSpecialist))
				if e != nil {
					return e
				}
				cfg.Agents = append(cfg.Agents, chatbot.AgentConfig{Name: name, Role: chatbot.AgentRole(role)})
			}
			return nil
		})
	}
	ask(func() (e error) {
		cfg.EnableDocker, e = p.Confirm("Generate Docker assets?", cfg.EnableDocker)
		return
	})
	if err != nil {
		return nil, err
	}
	if cfg.IsMultiAgent && len(cfg.Agents) == 0 {
		return nil, errors.New("a multi-agent system needs at least one agent")
	}
	return &cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func typeNames() []string {
	var out []string
	for _, t := range chatbot.Types() {
		out = append(out, string(t))
	}
	return out
}

func traitNames() []string {
	return []string{
		string(chatbot.TraitProfessional),
		string(chatbot.TraitFriendly),
		string(chatbot.TraitCasual),
		string(chatbot.TraitFormal),
		string(chatbot.TraitHumorous),
		string(chatbot.TraitEmpathetic),
		string(chatbot.TraitDirect),
	}
}

func roleNames() []string {
	return []string{
		string(chatbot.RoleCoordinator),
		string(chatbot.RoleResearcher),
		string(chatbot.RoleAnalyst),
		string(chatbot.RoleWriter),
		string(chatbot.RoleReviewer),
		string(chatbot.RoleSpecialist),
	}
}
