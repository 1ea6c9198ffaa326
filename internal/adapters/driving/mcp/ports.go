package mcp

import (
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Shield runs policy requests through the guardrails.
	Shield driving.ShieldService

	// History exposes recorded evaluations.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Shield == nil {
		return ErrMissingShieldService
	}
	// History is optional; list_evaluations reports an empty history without it.
	return nil
}
