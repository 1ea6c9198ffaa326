package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/views/form"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/tui/views/history"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	formView    *form.View
	historyView *history.View
	statusBar   *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	bar := status.NewBar(s, km)
	bar.SetModel(ports.Shield.ModelName())

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		formView:    form.NewView(s, km, ports.Shield),
		historyView: history.NewView(s, km, ports.History),
		statusBar:   bar,
		currentView: messages.ViewForm,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.formView.SetContext(ctx)
	a.historyView.SetContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("policyshield - Secure Network Policy Assistant"),
		a.formView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.EvaluationCompleted:
		a.formView, cmd = a.formView.Update(msg)
		switch {
		case msg.Err != nil:
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		case msg.Evaluation != nil:
			a.statusBar.SetOutcome(msg.Evaluation.Outcome)
		default:
			a.statusBar.Clear()
		}
		return a, cmd

	case messages.HistoryLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.Quit:
		return a, tea.Quit
	}

	// Spinner ticks and cursor blinks belong to the form even while history is shown.
	a.formView, cmd = a.formView.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if keymap.Matches(msg.String(), a.keymap.Quit) {
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewHistory:
		if keymap.Matches(msg.String(), a.keymap.Back) {
			return a, a.switchTo(messages.ViewForm)
		}
		if keymap.Matches(msg.String(), a.keymap.History) {
			return a, a.historyView.Init()
		}
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.ViewForm:
		if keymap.Matches(msg.String(), a.keymap.History) && !a.formView.Generating() {
			return a, a.switchTo(messages.ViewHistory)
		}
		a.formView, cmd = a.formView.Update(msg)
		switch {
		case a.formView.Generating():
			a.statusBar.SetState(status.StateGenerating)
		case a.formView.Err() != nil:
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(a.formView.Err().Error())
		case a.formView.Evaluation() == nil && a.statusBar.State() != status.StateReady:
			a.statusBar.Clear()
		}
		return a, cmd
	}
	return a, nil
}

// switchTo activates a view, initialising it when needed.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewHistory:
		a.statusBar.SetState(status.StateHistory)
		return a.historyView.Init()
	case messages.ViewForm:
		a.restoreStatus()
	}
	return nil
}

// restoreStatus puts the status bar back in line with the form.
func (a *App) restoreStatus() {
	switch {
	case a.formView.Generating():
		a.statusBar.SetState(status.StateGenerating)
	case a.formView.Err() != nil:
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(a.formView.Err().Error())
	case a.formView.Evaluation() != nil:
		a.statusBar.SetOutcome(a.formView.Evaluation().Outcome)
	default:
		a.statusBar.Clear()
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewHistory:
		body = a.historyView.View()
	default:
		body = a.formView.View()
	}

	bodyHeight := a.height - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusBar.View())
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// Form returns the request form view.
func (a *App) Form() *form.View {
	return a.formView
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.formView.SetDimensions(width, height-1)
	a.historyView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
