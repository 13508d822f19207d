package pipeline

import (
	"github.com/google/uuid"

	"github.com/sweetpotato0/chatbot-factory/chatbot"
)

// Stage names. They double as graph node names.
const (
	StageValidateConfig     = "validate_config"
	StageDesignArchitecture = "design_architecture"
	StageGenerateCode       = "generate_code"
	StageCreateDocker       = "create_docker"
	StageFinalizeOutput     = "finalize_output"
)

// State is the run-scoped record threaded through every stage.
// Errors and GeneratedFiles are append-only.
type State struct {
	RunID string

	// Request fields. Config is shared with the caller and must not be modified.
	Config       *chatbot.Config
	OutputName   string
	IncludeTests bool
	IncludeDocs  bool

	OutputPath       string
	Errors           []string
	GeneratedFiles   []string
	Architecture     *chatbot.Architecture
	Message          string
	ValidationPassed bool
	DockerImage      string
	Success          bool

	// Visited lists the stages that actually ran, in order.
	Visited []string
}

// NewState builds the initial state for a request. It has no side effects.
func NewState(req *chatbot.GenerationRequest) *State {
	return &State{
		RunID:          uuid.NewString(),
		Config:         &req.Config,
		OutputName:     req.OutputName,
		IncludeTests:   req.IncludeTests,
		IncludeDocs:    req.IncludeDocs,
		Errors:         []string{},
		GeneratedFiles: []string{},
		Visited:        []string{},
	}
}

// Response maps the final state onto the public response.
func (s *State) Response() *chatbot.GenerationResponse {
	return &chatbot.GenerationResponse{
		Success:        s.Success,
		OutputPath:     s.OutputPath,
		Message:        s.Message,
		FilesGenerated: append([]string{}, s.GeneratedFiles...),
		DockerImage:    s.DockerImage,
		Errors:         append([]string{}, s.Errors...),
	}
}
