package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// maxHistoryLimit caps a single listing.
const maxHistoryLimit = 500

// HistoryService reads recorded evaluations.
type HistoryService struct {
	store driven.EvaluationStore
}

// NewHistoryService creates a history service. A nil store yields empty history.
func NewHistoryService(store driven.EvaluationStore) *HistoryService {
	return &HistoryService{store: store}
}

// List returns recent evaluations, newest first.
func (s *HistoryService) List(ctx context.Context, opts domain.HistoryOptions) ([]domain.Evaluation, error) {
	if opts.Outcome != "" && !opts.Outcome.IsValid() {
		return nil, fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidInput, opts.Outcome)
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if s.store == nil {
		return []domain.Evaluation{}, nil
	}

	evals, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evals, nil
}

// Get returns a single evaluation by ID.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.Evaluation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: evaluation id is required", domain.ErrInvalidInput)
	}
	if s.store == nil {
		return nil, domain.ErrNotFound
	}
	return s.store.Get(ctx, id)
}
