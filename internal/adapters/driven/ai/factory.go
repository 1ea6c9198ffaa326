// Package ai provides factory functions for creating LLM service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/policyshield/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/policyshield/internal/adapters/driven/llm/gemini"
	mockllm "github.com/custodia-labs/policyshield/internal/adapters/driven/llm/mock"
	ollamallm "github.com/custodia-labs/policyshield/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/policyshield/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// The returned error carries guidance for fixing the configuration.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'policyshield settings show' to check",
			domain.ErrLLMUnavailable, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'policyshield settings show' to check",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// CreateLLMService creates the LLM service for settings.Provider.
func CreateLLMService(_ context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("no LLM settings")
	}
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%s requires an API key (set llm.api_key or POLICYSHIELD_LLM_API_KEY)",
			settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderMock:
		return createMockLLM(settings), nil

	case domain.AIProviderGemini:
		return createGeminiLLM(settings)

	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createMockLLM(settings *domain.LLMSettings) driven.LLMService {
	return mockllm.NewLLMService(mockllm.Config{
		Model:   settings.Model,
		Latency: settings.MockLatency,
	})
}

func createGeminiLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return geminillm.NewLLMService(geminillm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: settings.Timeout,
	})
}
