package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	"github.com/sweetpotato0/chatbot-factory/prompt"
)

// Template names for the ancillary files
const (
	TemplateTestScaffold = "test_scaffold"
	TemplateAPIDoc       = "api_doc"
)

const testScaffoldTemplate = `"""
Tests for {{.Name}}
"""
import pytest
import asyncio
from main import {{.ClassName}}

@pytest.fixture
def chatbot():
    """Create chatbot instance for testing"""
    return {{.ClassName}}()

@pytest.mark.asyncio
async def test_basic_chat(chatbot):
    """Test basic chat functionality"""
    response = await chatbot.chat("Hello", [], "test_user")
    assert isinstance(response, str)
    assert len(response) > 0

@pytest.mark.asyncio
async def test_empty_message(chatbot):
    """Test handling of empty messages"""
    response = await chatbot.chat("", [], "test_user")
    assert isinstance(response, str)

# Add more tests based on configuration
`

const apiDocTemplate = "# {{.Name}} API Documentation\n" +
	"\n" +
	"## Overview\n" +
	"{{.Description}}\n" +
	"\n" +
	"## Endpoints\n" +
	"\n" +
	"### POST /chat\n" +
	"Chat with the bot\n" +
	"\n" +
	"**Request:**\n" +
	"```json\n" +
	"{\n" +
	"  \"message\": \"Hello!\",\n" +
	"  \"user_id\": \"user123\"\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"**Response:**\n" +
	"```json\n" +
	"{\n" +
	"  \"response\": \"Hello! How can I help you today?\"\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"## Configuration\n" +
	"\n" +
	"The chatbot supports the following configuration options:\n" +
	"\n" +
	"- **Type**: {{.Type}}\n" +
	"- **Personality**: {{join .Personality \", \"}}\n" +
	"- **Domain Expertise**: {{join .DomainExpertise \", \"}}\n" +
	"\n" +
	"## Deployment\n" +
	"\n" +
	"See README.md for deployment instructions.\n"

// RegisterAncillaryTemplates adds the built-in test scaffold and API doc templates.
func RegisterAncillaryTemplates(m *prompt.Manager) error {
	if err := m.RegisterString(TemplateTestScaffold, testScaffoldTemplate); err != nil {
		return err
	}
	return m.RegisterString(TemplateAPIDoc, apiDocTemplate)
}

type ancillaryWriter struct {
	templates *prompt.Manager
}

func (w ancillaryWriter) writeTestScaffold(outputPath string, cfg *chatbot.Config) (string, error) {
	content, err := w.templates.Render(TemplateTestScaffold, map[string]any{
		"Name":      cfg.Name,
		"ClassName": chatbot.ClassName(cfg.Name),
	})
	if err != nil {
		return "", err
	}
	return writeFile(filepath.Join(outputPath, "tests"), "test_chatbot.py", content)
}

func (w ancillaryWriter) writeAPIDoc(outputPath string, cfg *chatbot.Config) (string, error) {
	content, err := w.templates.Render(TemplateAPIDoc, map[string]any{
		"Name":            cfg.Name,
		"Description":     cfg.Description,
		"Type":            string(cfg.ChatbotType),
		"Personality":     cfg.TraitNames(),
		"DomainExpertise": append([]string{}, cfg.DomainExpertise...),
	})
	if err != nil {
		return "", err
	}
	return writeFile(filepath.Join(outputPath, "docs"), "api.md", content)
}

func writeFile(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
