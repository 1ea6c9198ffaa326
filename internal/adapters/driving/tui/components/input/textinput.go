// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/styles"
)

// maskChar replaces every typed character of the phrase.
const maskChar = '•'

// AuthInput wraps a bubbles textinput that never echoes the authorization phrase.
type AuthInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewAuthInput creates a new masked authorization input.
func NewAuthInput(s *styles.Styles) *AuthInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "authorization phrase"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = maskChar
	ti.CharLimit = 256
	ti.Width = 50

	return &AuthInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (a *AuthInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (a *AuthInput) Update(msg tea.Msg) (*AuthInput, tea.Cmd) {
	var cmd tea.Cmd
	a.textinput, cmd = a.textinput.Update(msg)
	return a, cmd
}

// View renders the input inside a bordered field.
func (a *AuthInput) View() string {
	field := a.styles.InputField
	if a.textinput.Focused() {
		field = a.styles.FocusedField
	}
	label := a.styles.Label.Render("Authorization phrase")
	return lipgloss.JoinVertical(lipgloss.Left, label, field.Render(a.textinput.View()))
}

// Value returns the typed phrase.
func (a *AuthInput) Value() string {
	return a.textinput.Value()
}

// SetValue sets the input value.
func (a *AuthInput) SetValue(value string) {
	a.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (a *AuthInput) Focus() tea.Cmd {
	return a.textinput.Focus()
}

// Blur removes focus from the input.
func (a *AuthInput) Blur() {
	a.textinput.Blur()
}

// Focused returns whether the input is focused.
func (a *AuthInput) Focused() bool {
	return a.textinput.Focused()
}

// SetWidth sets the width of the input.
func (a *AuthInput) SetWidth(width int) {
	a.width = width
	// Account for border and padding
	inputWidth := width - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	a.textinput.Width = inputWidth
}

// Width returns the current width.
func (a *AuthInput) Width() int {
	return a.width
}

// Reset clears the input.
func (a *AuthInput) Reset() {
	a.textinput.Reset()
}
