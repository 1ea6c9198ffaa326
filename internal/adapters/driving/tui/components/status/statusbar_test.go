package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policyshield/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_InitAndUpdate(t *testing.T) {
	bar := NewBar(nil, nil)

	assert.Nil(t, bar.Init())
	updated, cmd := bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "ready shows model",
			setup:    func(b *Bar) { b.SetModel("gemini-2.0-flash-lite") },
			contains: []string{"Ready", "gemini-2.0-flash-lite", "ctrl+s: generate"},
		},
		{
			name: "generating",
			setup: func(b *Bar) {
				b.SetModel("llama3.2")
				b.SetState(StateGenerating)
			},
			contains: []string{"Connecting to model: llama3.2..."},
		},
		{
			name:     "completed",
			setup:    func(b *Bar) { b.SetOutcome(domain.OutcomeCompleted) },
			contains: []string{"Policy generated"},
		},
		{
			name:     "rejected",
			setup:    func(b *Bar) { b.SetOutcome(domain.OutcomePromptRejected) },
			contains: []string{"Prompt rejected by guardrail"},
		},
		{
			name: "error",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("boom")
			},
			contains: []string{"Error: boom"},
		},
		{
			name:     "history hints",
			setup:    func(b *Bar) { b.SetState(StateHistory) },
			contains: []string{"History", "esc: back"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestStatusBar_SetOutcome(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetOutcome(domain.OutcomeAuthorizationFailed)

	assert.Equal(t, StateDone, bar.State())
	assert.Equal(t, domain.OutcomeAuthorizationFailed, bar.Outcome())
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("x")
	bar.SetOutcome(domain.OutcomeCompleted)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Empty(t, bar.Outcome())
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}
