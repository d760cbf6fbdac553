package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/topicflow/pkg/adapters/render"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/schema"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	// Issues is set when a save is blocked.
	Issues []domain.Issue `json:"issues,omitempty"`
	// Upstream is set when the renderer failed.
	Upstream *UpstreamError `json:"upstream,omitempty"`
}

// UpstreamError mirrors render.Error.
type UpstreamError struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func statusFor(err error) int {
	var (
		nameErr   *schema.NameError
		aggr      *schema.AggregateError
		renderErr *render.Error
	)
	switch {
	case errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrValueNotFound),
		errors.Is(err, domain.ErrUnknownVocabulary):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateInstrument),
		errors.Is(err, domain.ErrDuplicateValue):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBlockingIssues):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nameErr), errors.As(err, &aggr):
		return http.StatusBadRequest
	case errors.As(err, &renderErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error(), Issues: editor.IssuesOf(err)}

	var renderErr *render.Error
	if errors.As(err, &renderErr) {
		resp.Upstream = &UpstreamError{StatusCode: renderErr.StatusCode, Body: renderErr.Body}
	}

	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		s.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.Logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, resp)
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}
