// Package mock provides a deterministic, offline LLM service.
// It answers with one of three canned policies chosen by keyword, after a
// simulated network delay.
package mock

import (
	"context"
	"strings"
	"time"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultLatency is the simulated round trip.
const DefaultLatency = 2 * time.Second

// Canned policies.
const (
	FirewallPolicy = "Generated policy for firewall: \n" +
		"- Block all incoming traffic on port 22 (SSH) from external networks. \n" +
		"- Allow web traffic on ports 80 and 443. \n" +
		"- Log all dropped packets to the security information and event management (SIEM) system. \n" +
		"- Please note: This is a basic policy. Always review and customize for your specific needs."

	VPNPolicy = "Generated policy for VPN access: \n" +
		"- Enforce two-factor authentication for all VPN users. \n" +
		"- Require a minimum password length of 16 characters. \n" +
		"- Implement an idle timeout of 30 minutes. \n" +
		"- Ensure all user traffic is encrypted using AES-256. \n" +
		"- All VPN access should be logged and monitored for suspicious activity."

	GenericPolicy = "Generated generic security policy: \n" +
		"- Implement strong password policies. \n" +
		"- Use endpoint protection software. \n" +
		"- Regularly patch all systems. \n" +
		"- Conduct routine security audits."
)

// Config holds configuration for the mock LLM service.
type Config struct {
	// Model is the name reported by ModelName (default: gemini-2.0-flash-lite).
	Model string

	// Latency is the simulated delay. Zero responds immediately; negative uses DefaultLatency.
	Latency time.Duration
}

// LLMService is a keyword-driven stand-in for a hosted model.
type LLMService struct {
	model   string
	latency time.Duration
}

// NewLLMService creates a mock LLM service.
func NewLLMService(cfg Config) *LLMService {
	if cfg.Model == "" {
		cfg.Model = domain.DefaultModel
	}
	if cfg.Latency < 0 {
		cfg.Latency = DefaultLatency
	}
	return &LLMService{model: cfg.Model, latency: cfg.Latency}
}

// Generate waits for the simulated latency, then picks a policy.
// "firewall" wins over "vpn"; matching is case-insensitive.
func (s *LLMService) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	return Respond(prompt), nil
}

// Respond returns the canned policy for prompt.
func Respond(prompt string) string {
	lowered := strings.ToLower(prompt)
	switch {
	case strings.Contains(lowered, "firewall"):
		return FirewallPolicy
	case strings.Contains(lowered, "vpn"):
		return VPNPolicy
	default:
		return GenericPolicy
	}
}

// ModelName returns the reported model name.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *LLMService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
