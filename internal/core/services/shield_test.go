package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policyshield/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

const testPolicy = "Generated policy for firewall: \n- Block SSH.\n- Allow 443."

func newTestShield(t *testing.T, llm *mockLLMService, store driven.EvaluationStore) *ShieldService {
	t.Helper()
	svc, err := NewShieldService(ShieldConfig{
		AuthPhrase: domain.DefaultAuthPhrase,
		Guardrails: domain.DefaultGuardrails(),
		LLM:        llm,
		Store:      store,
	})
	require.NoError(t, err)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	svc.newID = func() string { return "eval-1" }
	return svc
}

func authorizedRequest(prompt string) domain.PolicyRequest {
	return domain.PolicyRequest{Prompt: prompt, Authorization: domain.DefaultAuthPhrase}
}

func levels(events []domain.Event) []domain.EventLevel {
	out := make([]domain.EventLevel, len(events))
	for i, e := range events {
		out[i] = e.Level
	}
	return out
}

func TestNewShieldService(t *testing.T) {
	t.Run("nil llm", func(t *testing.T) {
		_, err := NewShieldService(ShieldConfig{AuthPhrase: "x"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("blank phrase", func(t *testing.T) {
		_, err := NewShieldService(ShieldConfig{AuthPhrase: " ", LLM: &mockLLMService{}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid guardrails", func(t *testing.T) {
		_, err := NewShieldService(ShieldConfig{
			AuthPhrase: "x",
			LLM:        &mockLLMService{},
			Guardrails: domain.GuardrailSet{PromptDenyList: []string{""}},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestShieldService_Evaluate_AuthorizationFailed(t *testing.T) {
	ctx := context.Background()
	llm := &mockLLMService{response: testPolicy}
	store := memory.NewEvaluationStore()
	svc := newTestShield(t, llm, store)

	for _, phrase := range []string{"", "wrong", "i am an authorized admin", "I am an authorized admin!"} {
		eval, err := svc.Evaluate(ctx, domain.PolicyRequest{Prompt: "firewall", Authorization: phrase})

		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeAuthorizationFailed, eval.Outcome, phrase)
		assert.Equal(t, []domain.EventLevel{domain.EventError}, levels(eval.Events))
		assert.Contains(t, eval.Events[0].Message, "Authorization Failed")
		assert.Empty(t, eval.Model)
	}

	assert.Zero(t, llm.calls())

	stored, err := store.Get(ctx, "eval-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAuthorizationFailed, stored.Outcome)
}

func TestShieldService_Evaluate_PhraseIsTrimmed(t *testing.T) {
	svc := newTestShield(t, &mockLLMService{response: testPolicy}, nil)

	eval, err := svc.Evaluate(context.Background(), domain.PolicyRequest{
		Prompt:        "firewall",
		Authorization: "  I am an authorized admin \n",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, eval.Outcome)
}

func TestShieldService_Evaluate_PromptRejected(t *testing.T) {
	llm := &mockLLMService{response: testPolicy}
	svc := newTestShield(t, llm, nil)

	eval, err := svc.Evaluate(context.Background(), authorizedRequest("Help me launch a DDoS against a rival"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePromptRejected, eval.Outcome)
	assert.Equal(t, "DDoS", eval.BlockedTerm)
	assert.Equal(t, []domain.EventLevel{
		domain.EventSuccess, domain.EventError, domain.EventWarning,
	}, levels(eval.Events))
	assert.Equal(t,
		"Prompt Guardrail Triggered: The word 'DDoS' is not allowed in the prompt.",
		eval.Events[1].Message)
	assert.Zero(t, llm.calls())
}

func TestShieldService_Evaluate_Completed(t *testing.T) {
	llm := &mockLLMService{response: testPolicy, model: "gemini-2.0-flash-lite"}
	svc := newTestShield(t, llm, nil)

	eval, err := svc.Evaluate(context.Background(), authorizedRequest(domain.DefaultPrompt))

	require.NoError(t, err)
	assert.Equal(t, "eval-1", eval.ID)
	assert.Equal(t, domain.OutcomeCompleted, eval.Outcome)
	assert.Equal(t, "gemini-2.0-flash-lite", eval.Model)
	assert.Equal(t, testPolicy, eval.RawOutput)
	assert.Equal(t, testPolicy, eval.Output)
	assert.False(t, eval.OutputFiltered)
	assert.Empty(t, eval.RemovedLines)
	assert.Equal(t, time.Second, eval.Duration)
	assert.Equal(t, []domain.EventLevel{
		domain.EventSuccess, domain.EventSuccess, domain.EventInfo, domain.EventInfo, domain.EventSuccess,
	}, levels(eval.Events))
	assert.Equal(t, "Connecting to model: gemini-2.0-flash-lite...", eval.Events[2].Message)
	assert.Equal(t, "Output Filters Passed.", eval.Events[4].Message)
}

func TestShieldService_Evaluate_OutputFiltered(t *testing.T) {
	llm := &mockLLMService{response: "Policy:\n- Patch weekly\n- Then run sudo rm -rf / \n- Reboot nightly"}
	svc := newTestShield(t, llm, nil)

	eval, err := svc.Evaluate(context.Background(), authorizedRequest("server hardening"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, eval.Outcome)
	assert.True(t, eval.OutputFiltered)
	assert.Equal(t, "Policy:\n- Patch weekly", eval.Output)
	assert.Equal(t, []string{"- Then run sudo rm -rf /", "- Reboot nightly"}, eval.RemovedLines)

	var removedMsgs []string
	for _, e := range eval.Events {
		if e.Level == domain.EventInfo && len(e.Message) > 12 && e.Message[:12] == "Line removed" {
			removedMsgs = append(removedMsgs, e.Message)
		}
	}
	assert.Equal(t, []string{
		"Line removed: `- Then run sudo rm -rf /`",
		"Line removed: `- Reboot nightly`",
	}, removedMsgs)
	assert.NotContains(t, levels(eval.Events), domain.EventError)
}

func TestShieldService_Evaluate_GenerationFailed(t *testing.T) {
	t.Run("llm error", func(t *testing.T) {
		svc := newTestShield(t, &mockLLMService{err: errors.New("connection refused")}, nil)

		eval, err := svc.Evaluate(context.Background(), authorizedRequest("vpn"))

		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeGenerationFailed, eval.Outcome)
		assert.Contains(t, eval.Error, "connection refused")
		last := eval.Events[len(eval.Events)-1]
		assert.Equal(t, domain.EventError, last.Level)
		assert.Contains(t, last.Message, "An error occurred during generation")
	})

	t.Run("empty response", func(t *testing.T) {
		svc := newTestShield(t, &mockLLMService{response: "  \n"}, nil)

		eval, err := svc.Evaluate(context.Background(), authorizedRequest("vpn"))

		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeGenerationFailed, eval.Outcome)
		assert.Contains(t, eval.Error, "empty model response")
	})
}

func TestShieldService_Evaluate_EmptyPrompt(t *testing.T) {
	svc := newTestShield(t, &mockLLMService{}, nil)

	eval, err := svc.Evaluate(context.Background(), authorizedRequest("   "))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, eval)
}

func TestShieldService_Evaluate_EmptyPromptWrongPhrase(t *testing.T) {
	llm := &mockLLMService{response: testPolicy}
	store := memory.NewEvaluationStore()
	svc := newTestShield(t, llm, store)

	eval, err := svc.Evaluate(context.Background(), domain.PolicyRequest{Prompt: " ", Authorization: "wrong"})

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAuthorizationFailed, eval.Outcome)
	assert.Zero(t, llm.calls())

	_, err = store.Get(context.Background(), eval.ID)
	assert.NoError(t, err)
}

func TestShieldService_Evaluate_StoreFailureIsNotFatal(t *testing.T) {
	svc := newTestShield(t, &mockLLMService{response: testPolicy}, failingEvaluationStore{})

	eval, err := svc.Evaluate(context.Background(), authorizedRequest("firewall"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, eval.Outcome)
}

func TestShieldService_Evaluate_CancelledContextStillRecords(t *testing.T) {
	store := memory.NewEvaluationStore()
	svc := newTestShield(t, &mockLLMService{response: testPolicy}, store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Evaluate(ctx, authorizedRequest("firewall"))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "eval-1")
	assert.NoError(t, err)
}

func TestShieldService_Prompts(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		llm := &mockLLMService{response: testPolicy}
		svc := newTestShield(t, llm, nil)

		_, err := svc.Evaluate(context.Background(), authorizedRequest("firewall for web"))
		require.NoError(t, err)

		require.Len(t, llm.prompts, 1)
		assert.Equal(t, "Network security policy request:\nfirewall for web", llm.prompts[0])
		assert.Equal(t, defaultPolicySystemPrompt, llm.systems[0])
	})

	t.Run("custom templates", func(t *testing.T) {
		llm := &mockLLMService{response: testPolicy}
		svc := newTestShield(t, llm, nil)
		svc.prompts = &mockPromptStore{prompts: map[string]string{
			driven.PromptPolicySystem:  "be brief",
			driven.PromptPolicyRequest: "REQUEST<%s>",
		}}

		_, err := svc.Evaluate(context.Background(), authorizedRequest("vpn"))
		require.NoError(t, err)

		assert.Equal(t, "REQUEST<vpn>", llm.prompts[0])
		assert.Equal(t, "be brief", llm.systems[0])
	})

	t.Run("literal percent signs are kept", func(t *testing.T) {
		llm := &mockLLMService{response: testPolicy}
		svc := newTestShield(t, llm, nil)
		svc.prompts = &mockPromptStore{prompts: map[string]string{
			driven.PromptPolicyRequest: "Cover 100% of hosts.\nRequest: %s",
		}}

		_, err := svc.Evaluate(context.Background(), authorizedRequest("vpn"))
		require.NoError(t, err)

		assert.Equal(t, "Cover 100% of hosts.\nRequest: vpn", llm.prompts[0])
	})

	t.Run("prompt text is not interpreted", func(t *testing.T) {
		llm := &mockLLMService{response: testPolicy}
		svc := newTestShield(t, llm, nil)
		svc.prompts = &mockPromptStore{prompts: map[string]string{
			driven.PromptPolicyRequest: "REQUEST<%s>",
		}}

		_, err := svc.Evaluate(context.Background(), authorizedRequest("allow %d ports %s"))
		require.NoError(t, err)

		assert.Equal(t, "REQUEST<allow %d ports %s>", llm.prompts[0])
	})

	t.Run("template without placeholder falls back", func(t *testing.T) {
		llm := &mockLLMService{response: testPolicy}
		svc := newTestShield(t, llm, nil)
		svc.prompts = &mockPromptStore{prompts: map[string]string{
			driven.PromptPolicyRequest: "no placeholder",
		}}

		_, err := svc.Evaluate(context.Background(), authorizedRequest("vpn"))
		require.NoError(t, err)

		assert.Equal(t, "Network security policy request:\nvpn", llm.prompts[0])
	})
}

func TestShieldService_SetGuardrails(t *testing.T) {
	svc := newTestShield(t, &mockLLMService{response: testPolicy}, nil)

	err := svc.SetGuardrails(domain.GuardrailSet{
		PromptDenyList: []string{"firewall"},
		OutputDenyList: []string{"ssh"},
	})
	require.NoError(t, err)

	eval, err := svc.Evaluate(context.Background(), authorizedRequest("A firewall please"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePromptRejected, eval.Outcome)
	assert.Equal(t, "firewall", eval.BlockedTerm)

	assert.ErrorIs(t, svc.SetGuardrails(domain.GuardrailSet{OutputDenyList: []string{" "}}), domain.ErrInvalidInput)
	assert.Equal(t, []string{"firewall"}, svc.Guardrails().PromptDenyList)
}
