package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// Ensure EvaluationStore implements the interface.
var _ driven.EvaluationStore = (*EvaluationStore)(nil)

// EvaluationStore is an in-memory implementation of driven.EvaluationStore.
type EvaluationStore struct {
	mu          sync.RWMutex
	evaluations map[string]domain.Evaluation
}

// NewEvaluationStore creates a new in-memory evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{
		evaluations: make(map[string]domain.Evaluation),
	}
}

// Save stores or replaces an evaluation.
func (s *EvaluationStore) Save(_ context.Context, eval *domain.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations[eval.ID] = copyEvaluation(*eval)
	return nil
}

// Get retrieves an evaluation by ID.
func (s *EvaluationStore) Get(_ context.Context, id string) (*domain.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	eval, ok := s.evaluations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	eval = copyEvaluation(eval)
	return &eval, nil
}

// List returns evaluations newest first, ties broken by ID.
func (s *EvaluationStore) List(_ context.Context, opts domain.HistoryOptions) ([]domain.Evaluation, error) {
	s.mu.RLock()
	result := make([]domain.Evaluation, 0, len(s.evaluations))
	for _, eval := range s.evaluations {
		if opts.Outcome != "" && eval.Outcome != opts.Outcome {
			continue
		}
		result = append(result, copyEvaluation(eval))
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

func copyEvaluation(e domain.Evaluation) domain.Evaluation {
	e.RemovedLines = append([]string(nil), e.RemovedLines...)
	e.Events = append([]domain.Event(nil), e.Events...)
	return e
}
