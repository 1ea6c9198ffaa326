// Package form provides the request form view: the policy request, the
// masked authorization phrase, and the process log of the last submission.
package form

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
)

// ErrEmptyRequest is shown when the request is submitted blank.
var ErrEmptyRequest = errors.New("please enter a policy request")

type field int

const (
	fieldRequest field = iota
	fieldAuth
)

// View is the request form.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	shield driving.ShieldService
	ctx    context.Context

	request textarea.Model
	auth    *input.AuthInput
	spinner spinner.Model
	focus   field

	generating bool
	evaluation *domain.Evaluation
	err        error

	width  int
	height int
}

// NewView creates the form with the default request pre-filled.
func NewView(s *styles.Styles, km *keymap.KeyMap, shield driving.ShieldService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ta := textarea.New()
	ta.Placeholder = "Describe the network security policy you need..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(4)
	ta.SetWidth(60)
	ta.SetValue(domain.DefaultPrompt)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(s.Subtitle),
	)

	return &View{
		styles:  s,
		keymap:  km,
		shield:  shield,
		ctx:     context.Background(),
		request: ta,
		auth:    input.NewAuthInput(s),
		spinner: sp,
		width:   80,
		height:  24,
	}
}

// SetContext sets the context used for evaluations.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// Init focuses the request and starts the cursor blinking.
func (v *View) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, v.focusField(fieldRequest))
}

// Update handles messages for the form.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if !v.generating {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.EvaluationCompleted:
		v.generating = false
		v.evaluation = msg.Evaluation
		v.err = msg.Err
		// The phrase is only kept for a single submission.
		v.auth.Reset()
		return v, nil
	}

	return v.forward(msg)
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.generating {
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Submit):
		return v, v.submit()
	case keymap.Matches(msg.String(), v.keymap.NextField),
		keymap.Matches(msg.String(), v.keymap.PrevField):
		if v.focus == fieldRequest {
			return v, v.focusField(fieldAuth)
		}
		return v, v.focusField(fieldRequest)
	case keymap.Matches(msg.String(), v.keymap.NewRequest):
		v.Reset()
		return v, v.focusField(fieldRequest)
	}

	return v.forward(msg)
}

func (v *View) forward(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	if v.focus == fieldAuth {
		v.auth, cmd = v.auth.Update(msg)
		return v, cmd
	}
	v.request, cmd = v.request.Update(msg)
	return v, cmd
}

func (v *View) focusField(f field) tea.Cmd {
	v.focus = f
	if f == fieldAuth {
		v.request.Blur()
		return v.auth.Focus()
	}
	v.auth.Blur()
	return v.request.Focus()
}

// submit starts an evaluation in the background.
func (v *View) submit() tea.Cmd {
	prompt := v.request.Value()
	if strings.TrimSpace(prompt) == "" {
		v.err = ErrEmptyRequest
		return nil
	}

	v.generating = true
	v.evaluation = nil
	v.err = nil

	req := domain.PolicyRequest{Prompt: prompt, Authorization: v.auth.Value()}
	shield, ctx := v.shield, v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		eval, err := shield.Evaluate(ctx, req)
		return messages.EvaluationCompleted{Evaluation: eval, Err: err}
	})
}

// View renders the form.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("🛡  Secure Network Policy Assistant"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("A multi-layered defense tool with simple prompt-based guardrails."))
	b.WriteString("\n\n")

	field := v.styles.InputField
	if v.focus == fieldRequest {
		field = v.styles.FocusedField
	}
	b.WriteString(v.styles.Label.Render("Enter your network security policy request:"))
	b.WriteString("\n")
	b.WriteString(field.Render(v.request.View()))
	b.WriteString("\n")
	b.WriteString(v.auth.View())
	b.WriteString("\n\n")

	switch {
	case v.generating:
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Generating policy..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("✘ " + v.err.Error()))
	case v.evaluation != nil:
		b.WriteString(RenderEvaluation(v.styles, v.evaluation))
	}

	return lipgloss.NewStyle().MaxWidth(v.width).Render(b.String())
}

// RenderEvaluation renders a process log followed by the final policy, if any.
func RenderEvaluation(s *styles.Styles, eval *domain.Evaluation) string {
	var b strings.Builder

	b.WriteString(s.Subtitle.Render("Process Log"))
	b.WriteString("\n")
	for _, e := range eval.Events {
		b.WriteString(s.RenderEvent(e))
		b.WriteString("\n")
	}

	if eval.Succeeded() {
		b.WriteString("\n")
		b.WriteString(s.Subtitle.Render("Final Security Policy"))
		b.WriteString("\n")
		b.WriteString(s.Policy.Render(eval.Output))
		b.WriteString("\n")
	}
	return b.String()
}

// SetDimensions sets the available size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	v.request.SetWidth(inner)
	v.auth.SetWidth(width)
}

// Reset clears the result and the phrase, keeping the request text.
func (v *View) Reset() {
	v.evaluation = nil
	v.err = nil
	v.auth.Reset()
}

// Evaluation returns the last completed evaluation.
func (v *View) Evaluation() *domain.Evaluation {
	return v.evaluation
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Generating reports whether a request is in flight.
func (v *View) Generating() bool {
	return v.generating
}

// Request returns the current request text.
func (v *View) Request() string {
	return v.request.Value()
}
