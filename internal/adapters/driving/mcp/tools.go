package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

// GeneratePolicyInput is the input schema for the generate_policy tool.
type GeneratePolicyInput struct {
	Prompt        string `json:"prompt" jsonschema:"the network security policy request"`
	Authorization string `json:"authorization" jsonschema:"the authorization phrase"`
}

// EvaluationOutput is one evaluation as returned by the tools.
type EvaluationOutput struct {
	ID           string         `json:"id"`
	CreatedAt    string         `json:"created_at"`
	Prompt       string         `json:"prompt"`
	Model        string         `json:"model,omitempty"`
	Outcome      string         `json:"outcome"`
	BlockedTerm  string         `json:"blocked_term,omitempty"`
	Policy       string         `json:"policy,omitempty"`
	RemovedLines []string       `json:"removed_lines,omitempty"`
	Error        string         `json:"error,omitempty"`
	Events       []domain.Event `json:"events,omitempty"`
	DurationMS   int64          `json:"duration_ms"`
}

// ListEvaluationsInput is the input schema for the list_evaluations tool.
type ListEvaluationsInput struct {
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of evaluations to return (default 20)"`
	Outcome string `json:"outcome,omitempty" jsonschema:"only return evaluations with this outcome"`
}

// ListEvaluationsOutput is the output schema for the list_evaluations tool.
type ListEvaluationsOutput struct {
	Evaluations []EvaluationOutput `json:"evaluations"`
	Count       int                `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_policy",
		Description: "Generate a network security policy behind authorization, prompt and output guardrails",
	}, s.handleGeneratePolicy)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_evaluations",
		Description: "List recent policy requests and how the guardrails handled them",
	}, s.handleListEvaluations)
}

// handleGeneratePolicy runs a request through the shield.
// Requests stopped by a guardrail are reported as tool errors carrying the evaluation.
func (s *Server) handleGeneratePolicy(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GeneratePolicyInput,
) (*mcp.CallToolResult, EvaluationOutput, error) {
	eval, err := s.ports.Shield.Evaluate(ctx, domain.PolicyRequest{
		Prompt:        input.Prompt,
		Authorization: input.Authorization,
	})
	if err != nil {
		return nil, EvaluationOutput{}, err
	}

	output := toOutput(eval)
	if !eval.Succeeded() {
		return &mcp.CallToolResult{IsError: true}, output, nil
	}
	return nil, output, nil
}

// handleListEvaluations lists recorded evaluations, newest first.
func (s *Server) handleListEvaluations(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListEvaluationsInput,
) (*mcp.CallToolResult, ListEvaluationsOutput, error) {
	output := ListEvaluationsOutput{Evaluations: []EvaluationOutput{}}
	if s.ports.History == nil {
		return nil, output, nil
	}

	evals, err := s.ports.History.List(ctx, domain.HistoryOptions{
		Limit:   input.Limit,
		Outcome: domain.Outcome(input.Outcome),
	})
	if err != nil {
		return nil, ListEvaluationsOutput{}, err
	}

	for i := range evals {
		output.Evaluations = append(output.Evaluations, toOutput(&evals[i]))
	}
	output.Count = len(output.Evaluations)
	return nil, output, nil
}

func toOutput(eval *domain.Evaluation) EvaluationOutput {
	return EvaluationOutput{
		ID:           eval.ID,
		CreatedAt:    eval.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Prompt:       eval.Prompt,
		Model:        eval.Model,
		Outcome:      eval.Outcome.String(),
		BlockedTerm:  eval.BlockedTerm,
		Policy:       eval.Output,
		RemovedLines: eval.RemovedLines,
		Error:        eval.Error,
		Events:       eval.Events,
		DurationMS:   eval.Duration.Milliseconds(),
	}
}
