package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
	"github.com/custodia-labs/policyshield/internal/logger"
)

// Ensure ShieldService implements the interface.
var _ driving.ShieldService = (*ShieldService)(nil)

// defaultPolicySystemPrompt is the fallback system instruction when no PromptStore is configured.
const defaultPolicySystemPrompt = `You are a network security assistant. Produce concise, reviewable policies
as a short title line followed by one "- " bullet per rule. Never include shell commands
that reboot, unmount, kill processes or delete files.`

// defaultPolicyRequestPrompt is the fallback request template when no PromptStore is configured.
const defaultPolicyRequestPrompt = `Network security policy request:
%s`

// generateMaxTokens bounds policy length for remote providers.
const generateMaxTokens = 1024

// ShieldConfig holds the dependencies of a ShieldService.
type ShieldConfig struct {
	// AuthPhrase is the required authorization phrase (required).
	AuthPhrase string

	// Guardrails are the initial deny lists.
	Guardrails domain.GuardrailSet

	// LLM generates policy text (required).
	LLM driven.LLMService

	// Store records evaluations. Optional.
	Store driven.EvaluationStore

	// Prompts supplies prompt templates. Optional.
	Prompts driven.PromptStore
}

// ShieldService wraps an LLM with authorization, prompt guardrails and output filtering.
type ShieldService struct {
	mu         sync.RWMutex
	guardrails domain.GuardrailSet

	authPhrase string
	llm        driven.LLMService
	store      driven.EvaluationStore
	prompts    driven.PromptStore

	now   func() time.Time
	newID func() string
}

// NewShieldService creates a new shield service.
func NewShieldService(cfg ShieldConfig) (*ShieldService, error) {
	if cfg.LLM == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(cfg.AuthPhrase) == "" {
		return nil, fmt.Errorf("%w: authorization phrase is required", domain.ErrInvalidInput)
	}
	if err := cfg.Guardrails.Validate(); err != nil {
		return nil, err
	}

	return &ShieldService{
		guardrails: cfg.Guardrails.Clone(),
		authPhrase: cfg.AuthPhrase,
		llm:        cfg.LLM,
		store:      cfg.Store,
		prompts:    cfg.Prompts,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}, nil
}

// SetGuardrails atomically replaces the active deny lists.
// In-flight evaluations keep the lists they started with.
func (s *ShieldService) SetGuardrails(g domain.GuardrailSet) error {
	if err := g.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.guardrails = g.Clone()
	s.mu.Unlock()

	logger.Info("guardrails updated: %d prompt terms, %d output terms",
		len(g.PromptDenyList), len(g.OutputDenyList))
	return nil
}

// Guardrails returns a copy of the active deny lists.
func (s *ShieldService) Guardrails() domain.GuardrailSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guardrails.Clone()
}

// ModelName returns the model serving requests.
func (s *ShieldService) ModelName() string {
	return s.llm.ModelName()
}

// Evaluate runs a request through every layer and records the result.
// An empty prompt is only reported as invalid input once the phrase is accepted.
func (s *ShieldService) Evaluate(ctx context.Context, req domain.PolicyRequest) (*domain.Evaluation, error) {
	if strings.TrimSpace(req.Prompt) == "" && s.authorized(req.Authorization) {
		return nil, fmt.Errorf("%w: prompt is empty", domain.ErrInvalidInput)
	}

	guardrails := s.Guardrails()
	start := s.now()
	eval := &domain.Evaluation{
		ID:        s.newID(),
		CreatedAt: start.UTC(),
		Prompt:    req.Prompt,
	}

	logger.Section("Evaluate " + eval.ID)
	s.run(ctx, guardrails, req, eval)
	eval.Duration = s.now().Sub(start)
	logger.Debug("evaluation %s finished: %s in %s", eval.ID, eval.Outcome, eval.Duration)

	s.record(ctx, eval)
	return eval, nil
}

// run executes the layers in order, stopping at the first rejection.
func (s *ShieldService) run(
	ctx context.Context,
	guardrails domain.GuardrailSet,
	req domain.PolicyRequest,
	eval *domain.Evaluation,
) {
	// Layer 1: authorization.
	if !s.authorized(req.Authorization) {
		eval.Outcome = domain.OutcomeAuthorizationFailed
		eval.Log(domain.EventError, "Authorization Failed: Please enter the correct authorization phrase.")
		return
	}
	eval.Log(domain.EventSuccess, "Authorization Passed.")

	// Layer 2: prompt guardrails.
	if term, hit := guardrails.MatchPrompt(req.Prompt); hit {
		eval.Outcome = domain.OutcomePromptRejected
		eval.BlockedTerm = term
		eval.Log(domain.EventError,
			fmt.Sprintf("Prompt Guardrail Triggered: The word '%s' is not allowed in the prompt.", term))
		eval.Log(domain.EventWarning, "Please modify your request to proceed.")
		return
	}
	eval.Log(domain.EventSuccess, "Input Validation Passed. Your prompt is safe.")

	// Generation.
	eval.Model = s.llm.ModelName()
	eval.Log(domain.EventInfo, fmt.Sprintf("Connecting to model: %s...", eval.Model))

	raw, err := s.generate(ctx, req.Prompt)
	if err != nil {
		eval.Outcome = domain.OutcomeGenerationFailed
		eval.Error = err.Error()
		eval.Log(domain.EventError, fmt.Sprintf("An error occurred during generation: %v", err))
		return
	}
	eval.RawOutput = raw
	eval.Log(domain.EventInfo, "Policy Generated. Applying output filters...")

	// Layer 3: output filtering.
	output, removed := guardrails.FilterOutput(raw)
	for _, line := range removed {
		eval.Log(domain.EventWarning,
			"Output Filter Triggered: A potentially dangerous command was detected and will be removed.")
		eval.Log(domain.EventInfo, fmt.Sprintf("Line removed: `%s`", line))
	}
	if len(removed) == 0 {
		eval.Log(domain.EventSuccess, "Output Filters Passed.")
	}

	eval.Output = output
	eval.RemovedLines = removed
	eval.OutputFiltered = len(removed) > 0
	eval.Outcome = domain.OutcomeCompleted
}

// authorized compares the trimmed phrase in constant time.
func (s *ShieldService) authorized(phrase string) bool {
	got := []byte(strings.TrimSpace(phrase))
	want := []byte(s.authPhrase)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func (s *ShieldService) generate(ctx context.Context, prompt string) (string, error) {
	text, err := s.llm.Generate(ctx, s.renderPrompt(prompt), driven.GenerateOptions{
		MaxTokens: generateMaxTokens,
		System:    s.loadPrompt(driven.PromptPolicySystem, defaultPolicySystemPrompt),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, domain.ErrEmptyResponse)
	}
	return text, nil
}

func (s *ShieldService) renderPrompt(prompt string) string {
	tmpl := s.loadPrompt(driven.PromptPolicyRequest, defaultPolicyRequestPrompt)
	if strings.Count(tmpl, "%s") != 1 {
		logger.Warn("prompt template %q must contain exactly one %%s, using default", driven.PromptPolicyRequest)
		tmpl = defaultPolicyRequestPrompt
	}
	return strings.Replace(tmpl, "%s", prompt, 1)
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *ShieldService) loadPrompt(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	prompt, err := s.prompts.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}

// record persists the evaluation. Failures are logged, never returned.
func (s *ShieldService) record(ctx context.Context, eval *domain.Evaluation) {
	if s.store == nil {
		return
	}
	// The caller may already be gone (e.g. a cancelled HTTP request); history is still written.
	if err := s.store.Save(context.WithoutCancel(ctx), eval); err != nil {
		logger.Warn("failed to record evaluation %s: %v", eval.ID, err)
	}
}
