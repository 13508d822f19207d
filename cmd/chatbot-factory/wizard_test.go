package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// scripted answers prompts in order by message
type scripted struct {
	inputs   map[string]string
	selects  map[string]string
	multi    map[string][]string
	confirms map[string]bool
	asked    []string
}

func (s *scripted) Input(message, def string, required bool) (string, error) {
	s.asked = append(s.asked, message)
	if v, ok := s.inputs[message]; ok {
		return v, nil
	}
	if required {
		return "", errors.New("no answer for " + message)
	}
	return def, nil
}

func (s *scripted) Select(message string, options []string, def string) (string, error) {
	s.asked = append(s.asked, message)
	if v, ok := s.selects[message]; ok {
		return v, nil
	}
	return def, nil
}

func (s *scripted) MultiSelect(message string, options []string) ([]string, error) {
	s.asked = append(s.asked, message)
	return s.multi[message], nil
}

func (s *scripted) Confirm(message string, def bool) (bool, error) {
	s.asked = append(s.asked, message)
	if v, ok := s.confirms[message]; ok {
		return v, nil
	}
	return def, nil
}

func TestRunWizardSingleAgent(t *testing.T) {
	p := &scripted{
		inputs: map[string]string{
			"Chatbot name:":                       "Help Bot",
			"What should it do?":                  "answers billing questions",
			"Domain expertise (comma separated):": "billing, , refunds",
		},
		multi: map[string][]string{"Personality traits:": {"friendly", "direct"}},
		confirms: map[string]bool{
			"Generate Docker assets?": false,
		},
	}

	cfg, err := runWizard(context.Background(), p)
	if err != nil {
		t.Fatalf("runWizard: %v", err)
	}

	want := chatbot.DefaultConfig()
	want.Name = "Help Bot"
	want.Description = "answers billing questions"
	want.PersonalityTraits = []chatbot.PersonalityTrait{chatbot.TraitFriendly, chatbot.TraitDirect}
	want.DomainExpertise = []string{"billing", "refunds"}
	want.EnableDocker = false
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWizardMultiAgent(t *testing.T) {
	p := &scripted{
		inputs: map[string]string{
			"Chatbot name:":                  "Team",
			"What should it do?":             "research",
			"Agent names (comma separated):": "scout, editor",
		},
		selects: map[string]string{
			"Chatbot type:":   string(chatbot.TypeMultiAgentTeam),
			"Role of scout:":  string(chatbot.RoleResearcher),
			"Role of editor:": string(chatbot.RoleWriter),
		},
	}

	cfg, err := runWizard(context.Background(), p)
	if err != nil {
		t.Fatalf("runWizard: %v", err)
	}
	if !cfg.IsMultiAgent {
		t.Fatal("multi-agent should default on for a multi_agent_team")
	}
	want := []chatbot.AgentConfig{
		{Name: "scout", Role: chatbot.RoleResearcher},
		{Name: "editor", Role: chatbot.RoleWriter},
	}
	if diff := cmp.Diff(want, cfg.Agents); diff != "" {
		t.Errorf("agents mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWizardStopsOnError(t *testing.T) {
	p := &scripted{}
	if _, err := runWizard(context.Background(), p); err == nil {
		t.Fatal("expected error when the name is not answered")
	}
	if len(p.asked) != 1 {
		t.Errorf("wizard kept asking after an error: %v", p.asked)
	}
}

func TestRunWizardCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runWizard(ctx, &scripted{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSplitList(t *testing.T) {
	if diff := cmp.Diff([]string{"a", "b"}, splitList(" a ,,b, ")); diff != "" {
		t.Error(diff)
	}
	if splitList("") != nil {
		t.Error("empty input should give nil")
	}
}
