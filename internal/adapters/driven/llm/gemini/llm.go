// Package gemini provides an LLM service adapter using the Gemini generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = domain.DefaultModel
	DefaultTimeout = 120 * time.Second
)

// apiKeyHeader carries the key so it never appears in request URLs or their errors.
const apiKeyHeader = "x-goog-api-key"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is the Google AI Studio API key (required).
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for a proxy.
	BaseURL string

	// Model is the model to use (default: gemini-2.0-flash-lite).
	Model string

	// Timeout bounds each call (default: 120s).
	Timeout time.Duration
}

// LLMService calls models/{model}:generateContent.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

// generateContentRequest is the generateContent request format.
type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

// generateContentResponse is the generateContent response format.
type generateContentResponse struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// resourceName returns the model as an API resource path.
func (s *LLMService) resourceName() string {
	if strings.HasPrefix(s.model, "models/") {
		return s.model
	}
	return "models/" + s.model
}

// Generate returns the first candidate's text parts, concatenated.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if opts.System != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: opts.System}}}
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		reqBody.GenerationConfig = &generationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := s.baseURL + "/" + s.resourceName() + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var genResp generateContentResponse
	if err := s.do(req, &genResp); err != nil {
		return "", err
	}

	if len(genResp.Candidates) == 0 {
		if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", genResp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	candidate := genResp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini: empty candidate (finish reason %s)", candidate.FinishReason)
	}

	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model's metadata, which validates the key and the model name.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+s.resourceName(), http.NoBody)
	if err != nil {
		return fmt.Errorf("gemini: failed to create ping request: %w", err)
	}
	return s.do(req, nil)
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}

// do sends req with the API key and decodes a successful body into out, if set.
func (s *LLMService) do(req *http.Request, out any) error {
	req.Header.Set(apiKeyHeader, s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini: send request: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return wrapError(err)
	}
	if out == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gemini: read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("gemini: decode response: %w", err)
	}
	return nil
}

// wrapError maps API status codes onto domain errors where one fits.
func wrapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("gemini: %w: %s", domain.ErrRateLimited, gerr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("gemini: invalid API key or permission denied (status %d): %s", gerr.Code, gerr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("gemini: %w: %s", domain.ErrNotFound, gerr.Message)
		default:
			return fmt.Errorf("gemini: API returned status %d: %s", gerr.Code, gerr.Message)
		}
	}
	return fmt.Errorf("gemini: %w", err)
}
