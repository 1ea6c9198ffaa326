package driving

import (
	"context"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// ShieldService runs policy requests through the guardrail pipeline.
type ShieldService interface {
	// Evaluate authorizes, validates, generates and filters a policy request.
	// Guardrail rejections are reported through the returned Evaluation's Outcome,
	// not as errors. An error is returned only for unusable input.
	Evaluate(ctx context.Context, req domain.PolicyRequest) (*domain.Evaluation, error)

	// Guardrails returns a copy of the active deny lists.
	Guardrails() domain.GuardrailSet

	// ModelName returns the model serving requests.
	ModelName() string
}

// HistoryService exposes recorded evaluations.
type HistoryService interface {
	// List returns recent evaluations, newest first.
	List(ctx context.Context, opts domain.HistoryOptions) ([]domain.Evaluation, error)

	// Get returns a single evaluation by ID.
	Get(ctx context.Context, id string) (*domain.Evaluation, error)
}
