// Package mcp provides an MCP (Model Context Protocol) server adapter for policyshield.
// It lets AI assistants request guarded policies and inspect the active guardrails.
package mcp

import "errors"

// ErrMissingShieldService is returned when the shield service is not provided.
var ErrMissingShieldService = errors.New("mcp: shield service is required")
