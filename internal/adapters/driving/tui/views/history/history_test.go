package history

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

type mockHistory struct {
	evals    []domain.Evaluation
	err      error
	lastOpts domain.HistoryOptions
}

func (m *mockHistory) List(_ context.Context, opts domain.HistoryOptions) ([]domain.Evaluation, error) {
	m.lastOpts = opts
	return m.evals, m.err
}

func (m *mockHistory) Get(_ context.Context, _ string) (*domain.Evaluation, error) {
	return nil, domain.ErrNotFound
}

func sample() []domain.Evaluation {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Evaluation{
		{
			ID: "b", CreatedAt: at.Add(time.Minute), Prompt: "Set up VPN access",
			Outcome: domain.OutcomeCompleted, Output: "Generated policy for VPN access:",
			Events: []domain.Event{{Level: domain.EventSuccess, Message: "Authorization Passed."}},
		},
		{
			ID: "a", CreatedAt: at, Prompt: "launch a DDoS",
			Outcome: domain.OutcomePromptRejected,
			Events:  []domain.Event{{Level: domain.EventError, Message: "Prompt Guardrail Triggered"}},
		},
	}
}

func load(t *testing.T, v *View) *View {
	t.Helper()
	cmd := v.Init()
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestView_Load(t *testing.T) {
	h := &mockHistory{evals: sample()}
	v := load(t, NewView(nil, nil, h))

	assert.Equal(t, listLimit, h.lastOpts.Limit)
	assert.Len(t, v.Evaluations(), 2)
	assert.Equal(t, 0, v.Selected())

	view := v.View()
	assert.Contains(t, view, "Recent Evaluations")
	assert.Contains(t, view, "Set up VPN access")
	assert.Contains(t, view, "prompt_rejected")
	assert.Contains(t, view, "Final Security Policy")
}

func TestView_Navigate(t *testing.T) {
	v := load(t, NewView(nil, nil, &mockHistory{evals: sample()}))

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.Selected())
	assert.NotContains(t, v.View(), "Final Security Policy")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.Selected(), "stops at the last row")

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 0, v.Selected())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.Selected())
}

func TestView_Empty(t *testing.T) {
	v := load(t, NewView(nil, nil, &mockHistory{}))

	assert.Contains(t, v.View(), "No evaluations recorded yet.")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)

	assert.Nil(t, v.Init())
	assert.Contains(t, v.View(), "No evaluations recorded yet.")
}

func TestView_LoadError(t *testing.T) {
	v := load(t, NewView(nil, nil, &mockHistory{err: errors.New("database is locked")}))

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "database is locked")
}

func TestView_Loading(t *testing.T) {
	v := NewView(nil, nil, &mockHistory{})
	v.Init()

	assert.Contains(t, v.View(), "Loading...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
