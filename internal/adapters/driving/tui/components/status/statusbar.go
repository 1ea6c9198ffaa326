// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady      State = "ready"
	StateGenerating State = "generating"
	StateDone       State = "done"
	StateError      State = "error"
	StateHistory    State = "history"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	outcome domain.Outcome
	model   string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the left side of the status bar.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateGenerating:
		return s.styles.Muted.Render(fmt.Sprintf("Connecting to model: %s...", s.model))
	case StateDone:
		if s.outcome == domain.OutcomeCompleted {
			return s.styles.Success.Render(s.outcome.Description())
		}
		return s.styles.Error.Render(s.outcome.Description())
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateHistory:
		return s.styles.Normal.Render("History")
	case StateReady:
	}
	if s.model != "" {
		return s.styles.Muted.Render("Ready · " + s.model)
	}
	return s.styles.Muted.Render("Ready")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.bindings()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Help.Render(strings.Join(hints, " | "))
}

// bindings returns the hints for the current state.
func (s *Bar) bindings() []key.Binding {
	if s.state == StateHistory {
		return s.keymap.HistoryHelp()
	}
	return s.keymap.FormHelp()
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetOutcome records the last evaluation's outcome and switches to StateDone.
func (s *Bar) SetOutcome(o domain.Outcome) {
	s.outcome = o
	s.state = StateDone
}

// Outcome returns the last recorded outcome.
func (s *Bar) Outcome() domain.Outcome {
	return s.outcome
}

// SetModel sets the model name shown while idle or generating.
func (s *Bar) SetModel(model string) {
	s.model = model
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to default state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.outcome = ""
}
