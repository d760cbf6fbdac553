package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aretw0/topicflow/internal/presentation/diagram"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 4 << 20

// Report is the validation summary returned by /validate and /projects/{id}/issues.
type Report struct {
	Issues   []domain.Issue `json:"issues"`
	Blocking bool           `json:"blocking"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
}

// SaveResponse is returned by a successful save.
type SaveResponse struct {
	Project domain.Project `json:"project"`
	Report
}

func newReport(issues []domain.Issue) Report {
	errs, warns := validation.Count(issues)
	return Report{
		Issues:   issues,
		Blocking: validation.HasBlockingErrors(issues),
		Errors:   errs,
		Warnings: warns,
	}
}

func decodeJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var project domain.Project
	if err := decodeJSON(r, &project); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newReport(s.Projects.Check(project)))
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.Projects.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in editor.CreateProjectInput
	if err := decodeJSON(r, &in); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	project, err := s.Projects.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/projects/"+project.ID)
	writeJSON(w, http.StatusCreated, project)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// decodeProject reads a project body; the path ID is authoritative.
func (s *Server) decodeProject(w http.ResponseWriter, r *http.Request) (domain.Project, bool) {
	var project domain.Project
	if err := decodeJSON(r, &project); err != nil {
		s.badRequest(w, err.Error())
		return domain.Project{}, false
	}
	project.ID = chi.URLParam(r, "id")
	return project, true
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	project, ok := s.decodeProject(w, r)
	if !ok {
		return
	}
	updated, err := s.Projects.Update(r.Context(), project)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveProject(w http.ResponseWriter, r *http.Request) {
	project, ok := s.decodeProject(w, r)
	if !ok {
		return
	}
	issues, err := s.Projects.Save(r.Context(), project)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.Projects.Get(r.Context(), project.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{Project: saved, Report: newReport(issues)})
}

func (s *Server) projectIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.Projects.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReport(issues))
}

// topicDiagram serves Mermaid source (default) or, with ?format=svg, the rendered image.
func (s *Server) topicDiagram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project, err := s.Projects.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	topicID := chi.URLParam(r, "topicID")
	topic, ok := project.Topic(topicID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("topic %q not found", topicID)})
		return
	}

	fields, err := s.Fields.Get(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	source := diagram.GenerateMermaid(topic, &diagram.Overlay{
		Issues:         s.Projects.Check(project),
		FlowTypeColors: fields.FlowTypeColors,
	})

	switch format := r.URL.Query().Get("format"); format {
	case "", "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, source)
	case "svg":
		if s.Renderer == nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no diagram renderer configured"})
			return
		}
		svg, err := s.Renderer.Render(ctx, source)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = io.WriteString(w, svg)
	default:
		s.badRequest(w, fmt.Sprintf("unsupported format %q", format))
	}
}

func (s *Server) getFields(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.Fields.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func vocabularyParam(r *http.Request) domain.Vocabulary {
	return domain.Vocabulary(chi.URLParam(r, "vocabulary"))
}

func (s *Server) addFieldValue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	cfg, err := s.Fields.AddValue(r.Context(), vocabularyParam(r), body.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) removeFieldValue(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.Fields.RemoveValue(r.Context(), vocabularyParam(r), chi.URLParam(r, "value"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) setFlowTypeColor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Color string `json:"color"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	cfg, err := s.Fields.SetFlowTypeColor(r.Context(), chi.URLParam(r, "flowType"), body.Color)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
