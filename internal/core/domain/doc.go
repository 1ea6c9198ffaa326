// Package domain defines the core business entities for policyshield.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PolicyRequest: A user's policy request plus authorization phrase
//   - GuardrailSet: The prompt and output deny lists
//   - Evaluation: The outcome and process log of one request
//   - AppSettings: Shield, LLM, server and history configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
