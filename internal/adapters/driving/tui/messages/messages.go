// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// EvaluationCompleted carries the result of a submitted request.
type EvaluationCompleted struct {
	Evaluation *domain.Evaluation
	Err        error
}

// HistoryLoaded carries recent evaluations.
type HistoryLoaded struct {
	Evaluations []domain.Evaluation
	Err         error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewForm is the request form with its process log.
	ViewForm ViewType = iota
	// ViewHistory lists recent evaluations.
	ViewHistory
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewForm:
		return "form"
	case ViewHistory:
		return "history"
	default:
		return "unknown"
	}
}

// Quit signals the application should exit.
type Quit struct{}
