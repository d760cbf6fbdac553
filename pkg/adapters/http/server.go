package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/topicflow/internal/logging"
	"github.com/aretw0/topicflow/internal/metrics"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes the editor services over JSON/HTTP.
type Server struct {
	Projects *editor.Projects
	Fields   *editor.Fields
	// Renderer is optional; without it only Mermaid source can be served.
	Renderer ports.Renderer
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// NewHandler builds the router.
func NewHandler(s *Server) http.Handler {
	if s.Logger == nil {
		s.Logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	r.Post("/validate", s.validate)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getProject)
			r.Put("/", s.updateProject)
			r.Delete("/", s.deleteProject)
			r.Post("/save", s.saveProject)
			r.Get("/issues", s.projectIssues)
			r.Get("/topics/{topicID}/diagram", s.topicDiagram)
		})
	})

	r.Route("/fields", func(r chi.Router) {
		r.Get("/", s.getFields)
		r.Put("/colors/{flowType}", s.setFlowTypeColor)
		r.Post("/{vocabulary}", s.addFieldValue)
		r.Delete("/{vocabulary}/{value}", s.removeFieldValue)
	})

	return enableCORS(r)
}

// instrument counts requests by route pattern so IDs do not explode label cardinality.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.Metrics.HTTPRequest(r.Method, route, strconv.Itoa(status))
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
