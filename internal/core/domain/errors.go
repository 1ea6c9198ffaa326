package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a guardrail file with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrGenerationFailed indicates the LLM call returned an error.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrEmptyResponse indicates the LLM returned no candidate text.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrRateLimited indicates a client exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")
)
