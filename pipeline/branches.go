package pipeline

import "context"

// Branch labels
const (
	BranchContinue     = "continue"
	BranchError        = "error"
	BranchCreateDocker = "create_docker"
	BranchFinalize     = "finalize"
)

// shouldContinueAfterValidation is the pipeline's one early exit.
func shouldContinueAfterValidation(_ context.Context, s *State) (string, error) {
	if s.ValidationPassed {
		return BranchContinue, nil
	}
	return BranchError, nil
}

func shouldCreateDocker(_ context.Context, s *State) (string, error) {
	if s.Config.EnableDocker {
		return BranchCreateDocker, nil
	}
	return BranchFinalize, nil
}
