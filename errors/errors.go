package errors

import "errors"

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrEmptyResponse indicates that an LLM returned no usable content
	ErrEmptyResponse = errors.New("empty response from language model")

	// ErrInvalidOutputName indicates an output name that is blank or escapes the output directory
	ErrInvalidOutputName = errors.New("invalid output name")

	// ErrRegistryNotConfigured indicates that no container registry host is configured
	ErrRegistryNotConfigured = errors.New("docker registry is not configured")

	// ErrCredentialMissing indicates a provider call made without an API key
	ErrCredentialMissing = errors.New("API key not configured")

	// ErrOutputPathMissing indicates that a stage needed an output path that was never set
	ErrOutputPathMissing = errors.New("output path not set")
)
