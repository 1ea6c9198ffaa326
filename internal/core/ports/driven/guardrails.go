package driven

import "github.com/custodia-labs/policyshield/internal/core/domain"

// GuardrailSource loads deny lists from outside the main configuration.
type GuardrailSource interface {
	// Load reads and validates the guardrail set.
	Load() (domain.GuardrailSet, error)

	// Path returns where the guardrails are read from.
	Path() string
}
