package domain

import "time"

// DefaultPrompt is the request pre-filled in interactive front ends.
const DefaultPrompt = "Create a basic firewall policy for a web server."

// PolicyRequest is a single request submitted to the shield.
type PolicyRequest struct {
	// Prompt is the free-text policy request.
	Prompt string

	// Authorization is the phrase the user typed. It is never persisted.
	Authorization string
}

// Outcome is the terminal state of an evaluation.
type Outcome string

// Evaluation outcomes, one per layer that can stop the pipeline.
const (
	OutcomeAuthorizationFailed Outcome = "authorization_failed"
	OutcomePromptRejected      Outcome = "prompt_rejected"
	OutcomeGenerationFailed    Outcome = "generation_failed"
	OutcomeCompleted           Outcome = "completed"
)

// IsValid returns true if the outcome is recognised.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeAuthorizationFailed, OutcomePromptRejected, OutcomeGenerationFailed, OutcomeCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (o Outcome) String() string {
	return string(o)
}

// Description returns a human-readable description of the outcome.
func (o Outcome) Description() string {
	switch o {
	case OutcomeAuthorizationFailed:
		return "Authorization failed"
	case OutcomePromptRejected:
		return "Prompt rejected by guardrail"
	case OutcomeGenerationFailed:
		return "Generation failed"
	case OutcomeCompleted:
		return "Policy generated"
	default:
		return unknownDescription
	}
}

// EventLevel classifies a process log entry.
type EventLevel string

// Event levels.
const (
	EventInfo    EventLevel = "info"
	EventSuccess EventLevel = "success"
	EventWarning EventLevel = "warning"
	EventError   EventLevel = "error"
)

// Event is one line of the process log shown to the user.
type Event struct {
	Level   EventLevel `json:"level"`
	Message string     `json:"message"`
}

// Evaluation records everything that happened to one PolicyRequest.
type Evaluation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Prompt is the request as submitted.
	Prompt string `json:"prompt"`

	// Model is the name of the model that served the request, if reached.
	Model string `json:"model,omitempty"`

	Outcome Outcome `json:"outcome"`

	// BlockedTerm is the prompt deny-list entry that rejected the request.
	BlockedTerm string `json:"blocked_term,omitempty"`

	// RawOutput is the unfiltered model output.
	RawOutput string `json:"raw_output,omitempty"`

	// Output is the filtered policy text returned to the user.
	Output string `json:"output,omitempty"`

	// RemovedLines are the output lines dropped by the output filter.
	RemovedLines []string `json:"removed_lines,omitempty"`

	// OutputFiltered is true when at least one line was removed.
	OutputFiltered bool `json:"output_filtered"`

	// Error is the generation error message for OutcomeGenerationFailed.
	Error string `json:"error,omitempty"`

	Events   []Event       `json:"events"`
	Duration time.Duration `json:"duration"`
}

// Log appends a process log entry.
func (e *Evaluation) Log(level EventLevel, message string) {
	e.Events = append(e.Events, Event{Level: level, Message: message})
}

// Succeeded returns true if a policy was produced.
func (e *Evaluation) Succeeded() bool {
	return e.Outcome == OutcomeCompleted
}

// HistoryOptions configures evaluation listing.
type HistoryOptions struct {
	// Limit caps the number of evaluations returned. Zero means the default.
	Limit int

	// Outcome restricts results to a single outcome when set.
	Outcome Outcome
}

// DefaultHistoryLimit is used when HistoryOptions.Limit is not positive.
const DefaultHistoryLimit = 20
