package form

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policyshield/internal/core/domain"
)

type mockShield struct {
	eval    *domain.Evaluation
	err     error
	lastReq domain.PolicyRequest
}

func (m *mockShield) Evaluate(_ context.Context, req domain.PolicyRequest) (*domain.Evaluation, error) {
	m.lastReq = req
	return m.eval, m.err
}

func (m *mockShield) Guardrails() domain.GuardrailSet { return domain.DefaultGuardrails() }

func (m *mockShield) ModelName() string { return "mock-model" }

func completed() *domain.Evaluation {
	return &domain.Evaluation{
		ID:      "eval-1",
		Outcome: domain.OutcomeCompleted,
		Output:  "Generated policy for firewall:\n- Allow 443.",
		Events: []domain.Event{
			{Level: domain.EventSuccess, Message: "Authorization Passed."},
			{Level: domain.EventSuccess, Message: "Output Filters Passed."},
		},
	}
}

func typeText(v *View, s string) *View {
	for _, r := range s {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return v
}

// run executes cmd and returns the EvaluationCompleted it produces.
func run(t *testing.T, cmd tea.Cmd) messages.EvaluationCompleted {
	t.Helper()
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(messages.EvaluationCompleted); ok {
			return done
		}
	}
	t.Fatal("no EvaluationCompleted message")
	return messages.EvaluationCompleted{}
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockShield{})

	require.NotNil(t, v)
	assert.Equal(t, domain.DefaultPrompt, v.Request())
	assert.False(t, v.Generating())
	assert.Nil(t, v.Evaluation())
	assert.NotNil(t, v.Init())
}

func TestView_SubmitCompleted(t *testing.T) {
	shield := &mockShield{eval: completed()}
	v := NewView(nil, nil, shield)
	v.Init()

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	v = typeText(v, "I am an authorized admin")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, v.Generating())
	assert.Contains(t, v.View(), "Generating policy...")

	done := run(t, cmd)
	assert.Equal(t, domain.DefaultPrompt, shield.lastReq.Prompt)
	assert.Equal(t, "I am an authorized admin", shield.lastReq.Authorization)

	v, _ = v.Update(done)
	assert.False(t, v.Generating())
	require.NotNil(t, v.Evaluation())

	view := v.View()
	assert.Contains(t, view, "Process Log")
	assert.Contains(t, view, "Authorization Passed.")
	assert.Contains(t, view, "Final Security Policy")
	assert.Contains(t, view, "- Allow 443.")
	assert.NotContains(t, view, "I am an authorized admin", "phrase is cleared after submission")
}

func TestView_RejectedHidesPolicy(t *testing.T) {
	shield := &mockShield{eval: &domain.Evaluation{
		Outcome: domain.OutcomeAuthorizationFailed,
		Events: []domain.Event{{
			Level:   domain.EventError,
			Message: "Authorization Failed: Please enter the correct authorization phrase.",
		}},
	}}
	v := NewView(nil, nil, shield)

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	v, _ = v.Update(run(t, cmd))

	view := v.View()
	assert.Contains(t, view, "Authorization Failed")
	assert.NotContains(t, view, "Final Security Policy")
}

func TestView_EmptyRequest(t *testing.T) {
	v := NewView(nil, nil, &mockShield{})
	v.request.SetValue("   ")

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.False(t, v.Generating())
	assert.ErrorIs(t, v.Err(), ErrEmptyRequest)
	assert.Contains(t, v.View(), "please enter a policy request")
}

func TestView_ServiceError(t *testing.T) {
	v := NewView(nil, nil, &mockShield{err: errors.New("invalid input: prompt is empty")})

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	v, _ = v.Update(run(t, cmd))

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "invalid input")
}

func TestView_KeysIgnoredWhileGenerating(t *testing.T) {
	v := NewView(nil, nil, &mockShield{eval: completed()})
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	before := v.Request()
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.Nil(t, cmd)
	assert.Equal(t, before, v.Request())
}

func TestView_FocusToggle(t *testing.T) {
	v := NewView(nil, nil, &mockShield{})
	v.Init()
	assert.Equal(t, fieldRequest, v.focus)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldAuth, v.focus)
	assert.True(t, v.auth.Focused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldRequest, v.focus)
	assert.False(t, v.auth.Focused())
}

func TestView_NewRequestResets(t *testing.T) {
	v := NewView(nil, nil, &mockShield{eval: completed()})
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	v, _ = v.Update(run(t, cmd))
	require.NotNil(t, v.Evaluation())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})

	assert.Nil(t, v.Evaluation())
	assert.Equal(t, fieldRequest, v.focus)
}

func TestView_SetDimensions(t *testing.T) {
	v := NewView(nil, nil, &mockShield{})

	v.SetDimensions(120, 40)

	assert.Equal(t, 120, v.width)
	assert.Equal(t, 40, v.height)
	assert.Equal(t, 120, v.auth.Width())
}
