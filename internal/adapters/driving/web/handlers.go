package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/logger"
)

// policyRequest is the JSON body of POST /api/v1/policies.
type policyRequest struct {
	Prompt        string `json:"prompt"`
	Authorization string `json:"authorization"`
}

// evaluationList is the JSON body of GET /api/v1/evaluations.
type evaluationList struct {
	Evaluations []domain.Evaluation `json:"evaluations"`
	Count       int                 `json:"count"`
}

// pageData feeds templates/index.html.
type pageData struct {
	Prompt     string
	Model      string
	Evaluation *domain.Evaluation
	Error      string
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, pageData{
		Prompt: domain.DefaultPrompt,
		Model:  s.ports.Shield.ModelName(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{
			Model: s.ports.Shield.ModelName(),
			Error: "Could not read the form.",
		})
		return
	}

	data := pageData{
		Prompt: r.PostForm.Get("prompt"),
		Model:  s.ports.Shield.ModelName(),
	}

	eval, err := s.ports.Shield.Evaluate(r.Context(), domain.PolicyRequest{
		Prompt:        data.Prompt,
		Authorization: r.PostForm.Get("authorization"),
	})
	if err != nil {
		data.Error = "Please enter a policy request."
		if !errors.Is(err, domain.ErrInvalidInput) {
			logger.Error("evaluating request: %v", err)
			data.Error = "The request could not be processed."
		}
		s.render(w, statusForError(err), data)
		return
	}

	data.Evaluation = eval
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	eval, err := s.ports.Shield.Evaluate(r.Context(), domain.PolicyRequest{
		Prompt:        req.Prompt,
		Authorization: req.Authorization,
	})
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, statusForOutcome(eval.Outcome), eval)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if s.ports.History == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	opts := domain.HistoryOptions{
		Outcome: domain.Outcome(r.URL.Query().Get("outcome")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		opts.Limit = limit
	}

	evals, err := s.ports.History.List(r.Context(), opts)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, evaluationList{Evaluations: evals, Count: len(evals)})
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.ports.History == nil {
		writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}

	eval, err := s.ports.History.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eval)
}

func (s *Server) handleGuardrails(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ports.Shield.Guardrails())
}

// statusForOutcome maps a pipeline outcome to an HTTP status.
func statusForOutcome(o domain.Outcome) int {
	switch o {
	case domain.OutcomeAuthorizationFailed:
		return http.StatusForbidden
	case domain.OutcomePromptRejected:
		return http.StatusUnprocessableEntity
	case domain.OutcomeGenerationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// statusForError maps domain errors to an HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf strings.Builder
	if err := s.page.Execute(&buf, data); err != nil {
		logger.Error("rendering page: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
