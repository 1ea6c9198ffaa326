package driven

import (
	"context"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// EvaluationStore persists evaluation history.
type EvaluationStore interface {
	// Save stores an evaluation. Saving an existing ID replaces it.
	Save(ctx context.Context, eval *domain.Evaluation) error

	// Get retrieves an evaluation by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Evaluation, error)

	// List returns evaluations newest first.
	List(ctx context.Context, opts domain.HistoryOptions) ([]domain.Evaluation, error)
}
