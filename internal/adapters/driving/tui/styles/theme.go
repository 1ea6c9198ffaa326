// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Background is the background colour.
	Background lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates a passed layer.
	Success lipgloss.Color

	// Warning indicates a filtered line or a request to rephrase.
	Warning lipgloss.Color

	// Error indicates a rejected request.
	Error lipgloss.Color

	// Info is used for neutral process log entries.
	Info lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#2563EB"), // Shield blue
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Background: lipgloss.Color("#1E1E2E"), // Dark gray
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Info:       lipgloss.Color("#89B4FA"), // Blue
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Subtitle style for secondary headers.
	Subtitle lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for highlighted items.
	Selected lipgloss.Style

	// Error, Success, Warning and Info colour process log entries.
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	// Label style for form field labels.
	Label lipgloss.Style

	// InputField style for unfocused input areas.
	InputField lipgloss.Style

	// FocusedField style for the input that has focus.
	FocusedField lipgloss.Style

	// Policy style for the final policy block.
	Policy lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	field := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		Info:    lipgloss.NewStyle().Foreground(theme.Info),

		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground),

		InputField:   field,
		FocusedField: field.BorderForeground(theme.Primary),

		Policy: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Success).
			PaddingLeft(1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Event returns the style and marker for a process log level.
func (s *Styles) Event(level domain.EventLevel) (lipgloss.Style, string) {
	switch level {
	case domain.EventSuccess:
		return s.Success, "✔"
	case domain.EventError:
		return s.Error, "✘"
	case domain.EventWarning:
		return s.Warning, "!"
	default:
		return s.Info, "i"
	}
}

// RenderEvent renders a single process log entry.
func (s *Styles) RenderEvent(e domain.Event) string {
	style, marker := s.Event(e.Level)
	return style.Render(marker + " " + e.Message)
}
