package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/policyshield/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for policyshield resources.
	uriScheme = "policyshield://"

	guardrailsURI     = uriScheme + "guardrails"
	evaluationsPrefix = uriScheme + "evaluations/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         guardrailsURI,
		Name:        "guardrails",
		Description: "Active prompt and output deny lists",
		MIMEType:    "application/json",
	}, s.handleGuardrailsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: evaluationsPrefix + "{evaluationId}",
		Name:        "evaluation",
		Description: "A recorded evaluation with its process log",
		MIMEType:    "application/json",
	}, s.handleEvaluationResource)
}

// handleGuardrailsResource returns the active deny lists.
func (s *Server) handleGuardrailsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Shield.Guardrails())
}

// handleEvaluationResource returns a single evaluation.
func (s *Server) handleEvaluationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractEvaluationID(req.Params.URI)
	if id == "" || s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	eval, err := s.ports.History.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting evaluation: %w", err)
	}
	return jsonResource(req.Params.URI, toOutput(eval))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractEvaluationID extracts the ID from policyshield://evaluations/{id}.
func extractEvaluationID(uri string) string {
	id, ok := strings.CutPrefix(uri, evaluationsPrefix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
