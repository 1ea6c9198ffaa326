// Package history provides the recent evaluations view.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/views/form"
	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
)

// listLimit is how many evaluations are loaded.
const listLimit = 50

// promptWidth truncates prompts in the list.
const promptWidth = 48

// View lists recent evaluations and shows the selected one.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	history driving.HistoryService
	ctx     context.Context

	evaluations []domain.Evaluation
	selected    int
	loading     bool
	err         error

	width  int
	height int
}

// NewView creates the history view. A nil service shows an empty history.
func NewView(s *styles.Styles, km *keymap.KeyMap, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		history: history,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// SetContext sets the context used for loading.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init loads the evaluations.
func (v *View) Init() tea.Cmd {
	if v.history == nil {
		return nil
	}
	v.loading = true
	history, ctx := v.history, v.ctx
	return func() tea.Msg {
		evals, err := history.List(ctx, domain.HistoryOptions{Limit: listLimit})
		return messages.HistoryLoaded{Evaluations: evals, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.HistoryLoaded:
		v.loading = false
		v.evaluations = msg.Evaluations
		v.err = msg.Err
		v.selected = 0

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case keymap.Matches(msg.String(), v.keymap.Down):
			if v.selected < len(v.evaluations)-1 {
				v.selected++
			}
		}
	}
	return v, nil
}

// View renders the list and the selected evaluation.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Recent Evaluations"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("✘ " + v.err.Error()))
	case len(v.evaluations) == 0:
		b.WriteString(v.styles.Muted.Render("No evaluations recorded yet."))
	default:
		for i := range v.evaluations {
			line := v.row(&v.evaluations[i])
			if i == v.selected {
				line = v.styles.Selected.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(form.RenderEvaluation(v.styles, &v.evaluations[v.selected]))
	}

	return lipgloss.NewStyle().MaxWidth(v.width).Render(b.String())
}

func (v *View) row(e *domain.Evaluation) string {
	return fmt.Sprintf("%s  %-20s  %s",
		e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		e.Outcome,
		truncate(strings.Join(strings.Fields(e.Prompt), " "), promptWidth))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// SetDimensions sets the available size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Evaluations returns the loaded evaluations.
func (v *View) Evaluations() []domain.Evaluation {
	return v.evaluations
}

// Selected returns the index of the highlighted evaluation.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
