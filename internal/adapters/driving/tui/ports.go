// Package tui provides an interactive terminal user interface for policyshield.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Shield evaluates policy requests.
	Shield driving.ShieldService

	// History lists recorded evaluations. Optional.
	History driving.HistoryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(shield driving.ShieldService, history driving.HistoryService) *Ports {
	return &Ports{
		Shield:  shield,
		History: history,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Shield == nil {
		return ErrMissingShieldService
	}
	return nil
}
