package middleware

import "errors"

var (
	// ErrStagePanicked indicates a stage panicked and was recovered
	ErrStagePanicked = errors.New("stage panicked")
)
