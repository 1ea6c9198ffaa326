package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"firewall", "Create a basic firewall policy for a web server.", FirewallPolicy},
		{"firewall any case", "FIREWALL rules please", FirewallPolicy},
		{"vpn lower", "set up vpn access", VPNPolicy},
		{"vpn upper", "Remote VPN policy", VPNPolicy},
		{"firewall beats vpn", "vpn behind a firewall", FirewallPolicy},
		{"generic", "password rotation", GenericPolicy},
		{"empty", "", GenericPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Respond(tt.prompt))
		})
	}
}

func TestCannedPolicies_PassDefaultOutputFilter(t *testing.T) {
	g := domain.DefaultGuardrails()
	for _, p := range []string{FirewallPolicy, VPNPolicy, GenericPolicy} {
		_, removed := g.FilterOutput(p)
		assert.Empty(t, removed)
	}
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(Config{Latency: -1})

	assert.Equal(t, domain.DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultLatency, svc.latency)
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}

func TestLLMService_Generate(t *testing.T) {
	svc := NewLLMService(Config{Model: "m", Latency: 5 * time.Millisecond})

	text, err := svc.Generate(context.Background(), "firewall", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, FirewallPolicy, text)
}

func TestLLMService_Generate_HonoursCancellation(t *testing.T) {
	svc := NewLLMService(Config{Latency: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := svc.Generate(ctx, "firewall", driven.GenerateOptions{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLLMService_Generate_NoLatencyCancelled(t *testing.T) {
	svc := NewLLMService(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, "vpn", driven.GenerateOptions{})

	assert.ErrorIs(t, err, context.Canceled)
}
