package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// mockLLMService is a scripted driven.LLMService.
type mockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	model    string
	prompts  []string
	systems  []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, opts.System)
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string {
	if m.model == "" {
		return "test-model"
	}
	return m.model
}

func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// failingEvaluationStore rejects every write.
type failingEvaluationStore struct{}

func (failingEvaluationStore) Save(_ context.Context, _ *domain.Evaluation) error {
	return errors.New("disk full")
}

func (failingEvaluationStore) Get(_ context.Context, _ string) (*domain.Evaluation, error) {
	return nil, errors.New("disk full")
}

func (failingEvaluationStore) List(_ context.Context, _ domain.HistoryOptions) ([]domain.Evaluation, error) {
	return nil, errors.New("disk full")
}
