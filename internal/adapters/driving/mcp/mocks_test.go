package mcp

import (
	"context"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// mockShieldService is a mock implementation of driving.ShieldService.
type mockShieldService struct {
	eval       *domain.Evaluation
	err        error
	guardrails domain.GuardrailSet
	lastReq    domain.PolicyRequest
}

func (m *mockShieldService) Evaluate(_ context.Context, req domain.PolicyRequest) (*domain.Evaluation, error) {
	m.lastReq = req
	return m.eval, m.err
}

func (m *mockShieldService) Guardrails() domain.GuardrailSet {
	return m.guardrails
}

func (m *mockShieldService) ModelName() string {
	return "mock-model"
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	evals    []domain.Evaluation
	eval     *domain.Evaluation
	err      error
	lastOpts domain.HistoryOptions
}

func (m *mockHistoryService) List(_ context.Context, opts domain.HistoryOptions) ([]domain.Evaluation, error) {
	m.lastOpts = opts
	return m.evals, m.err
}

func (m *mockHistoryService) Get(_ context.Context, id string) (*domain.Evaluation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.eval == nil || m.eval.ID != id {
		return nil, domain.ErrNotFound
	}
	return m.eval, nil
}
