package web

import (
	"errors"

	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
)

// ErrMissingShieldService is returned when the shield service is not provided.
var ErrMissingShieldService = errors.New("web: shield service is required")

// Ports aggregates the driving ports used by the web server.
type Ports struct {
	// Shield runs policy requests through the guardrails.
	Shield driving.ShieldService

	// History lists recorded evaluations. Optional; history routes answer 404 without it.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Shield == nil {
		return ErrMissingShieldService
	}
	return nil
}
