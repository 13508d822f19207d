package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
	"github.com/sweetpotato0/chatbot-factory/config"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
)

// StageFunc is the body of a stage. A returned error is recorded into the
// state by the stage's failure policy and never leaves the stage.
type StageFunc func(ctx context.Context, s *State) error

// failure describes how a stage error is written into the state.
type failure struct {
	prefix string
	// suffix appends to the current message instead of replacing it
	suffix bool
}

func (f failure) record(s *State, err error) string {
	text := fmt.Sprintf("%s: %v", f.prefix, err)
	s.Errors = append(s.Errors, text)
	if f.suffix {
		s.Message += " " + text
	} else {
		s.Message = text
	}
	return text
}

type stage struct {
	name string
	run  StageFunc
	fail failure
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{name: StageValidateConfig, run: p.validateConfig, fail: failure{prefix: "Validation failed"}},
		{name: StageDesignArchitecture, run: p.designArchitecture, fail: failure{prefix: "Architecture design failed"}},
		{name: StageGenerateCode, run: p.generateCode, fail: failure{prefix: "Code generation failed"}},
		{name: StageCreateDocker, run: p.createDocker, fail: failure{prefix: "Docker creation failed", suffix: true}},
		{name: StageFinalizeOutput, run: p.finalizeOutput, fail: failure{prefix: "Finalization failed"}},
	}
}

func (p *Pipeline) validateConfig(_ context.Context, s *State) error {
	cfg := s.Config
	v := config.NewValidator()

	v.RequireNonBlank("name", cfg.Name, "Chatbot name is required")
	v.RequireNonBlank("description", cfg.Description, "Chatbot description is required")
	for i, integration := range cfg.Integrations {
		v.Check(integration.HasType(), fmt.Sprintf("integrations[%d].type", i), "Integration type is required")
	}
	v.Check(!cfg.IsMultiAgent || len(cfg.Agents) > 0, "agents",
		"Multi-agent system requires at least one agent configuration")
	v.Check(p.credentials.HasCredential(), p.credentials.CredentialName(),
		p.credentials.CredentialName()+" is required")

	s.Errors = append(s.Errors, v.Messages()...)
	s.ValidationPassed = len(s.Errors) == 0
	if s.ValidationPassed {
		s.Message = "Configuration validated successfully"
	} else {
		s.Message = "Validation failed: " + strings.Join(s.Errors, "; ")
	}
	return nil
}

func (p *Pipeline) designArchitecture(ctx context.Context, s *State) error {
	arch, err := offload(ctx, func(ctx context.Context) (*chatbot.Architecture, error) {
		return p.designer.Design(ctx, s.Config)
	})
	if err != nil {
		return err
	}

	s.Architecture = arch
	s.Message = "Architecture designed successfully"
	return nil
}

func (p *Pipeline) generateCode(ctx context.Context, s *State) error {
	dir, err := p.outputDir(s.OutputName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files, err := offload(ctx, func(ctx context.Context) ([]string, error) {
		return p.generator.GenerateFiles(ctx, s.Config, s.Architecture, dir)
	})
	if err != nil {
		return err
	}

	s.GeneratedFiles = append(s.GeneratedFiles, files...)
	s.OutputPath = dir
	s.Message = fmt.Sprintf("Code generated successfully. %d files created.", len(files))
	return nil
}

// outputDir joins the base output path with name, refusing names that are
// blank, absolute, or climb out of the base path.
func (p *Pipeline) outputDir(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: output name is blank", fterrors.ErrInvalidOutputName)
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q is an absolute path", fterrors.ErrInvalidOutputName, name)
	}

	base := filepath.Clean(p.outputPath)
	dir := filepath.Join(base, name)
	rel, err := filepath.Rel(base, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes the output directory", fterrors.ErrInvalidOutputName, name)
	}
	return dir, nil
}

// createDocker only computes identifiers; no image is built.
func (p *Pipeline) createDocker(_ context.Context, s *State) error {
	if s.OutputPath == "" {
		return fterrors.ErrOutputPathMissing
	}
	if strings.TrimSpace(p.registry) == "" {
		return fterrors.ErrRegistryNotConfigured
	}

	s.DockerImage = chatbot.ImageReference(p.registry, chatbot.ImageName(s.Config.Name), "latest")
	s.Message += " Docker configuration created."
	return nil
}

func (p *Pipeline) finalizeOutput(_ context.Context, s *State) error {
	// Without an output path the earlier failure is already recorded and
	// there is nowhere to put ancillary files.
	if s.OutputPath != "" {
		if s.IncludeTests {
			path, err := p.ancillary.writeTestScaffold(s.OutputPath, s.Config)
			if err != nil {
				s.Errors = append(s.Errors, fmt.Sprintf("Test generation failed: %v", err))
			} else {
				s.GeneratedFiles = append(s.GeneratedFiles, path)
			}
		}
		if s.IncludeDocs {
			path, err := p.ancillary.writeAPIDoc(s.OutputPath, s.Config)
			if err != nil {
				s.Errors = append(s.Errors, fmt.Sprintf("Documentation generation failed: %v", err))
			} else {
				s.GeneratedFiles = append(s.GeneratedFiles, path)
			}
		}
	}

	s.Success = len(s.Errors) == 0
	if s.Success {
		s.Message = fmt.Sprintf("Chatbot '%s' generated successfully!", s.Config.Name)
	} else {
		s.Message = "Chatbot generation completed with errors: " + strings.Join(s.Errors, "; ")
	}
	return nil
}
