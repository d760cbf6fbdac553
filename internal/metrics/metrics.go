// Package metrics owns the Prometheus collectors exported by topicflow.
// Collectors live on a private registry so tests and embedders never collide
// with prometheus.DefaultRegisterer. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "topicflow"

// Validation outcomes.
const (
	OutcomeClean    = "clean"
	OutcomeWarnings = "warnings"
	OutcomeBlocked  = "blocked"
)

// Render cache results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics groups the collectors and the registry that serves them.
type Metrics struct {
	registry *prometheus.Registry

	validations        *prometheus.CounterVec
	issues             *prometheus.CounterVec
	validationDuration prometheus.Histogram
	projectOps         *prometheus.CounterVec
	fieldOps           *prometheus.CounterVec
	renderCache        *prometheus.CounterVec
	renderDuration     *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, including Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "runs_total",
				Help:      "Validation runs by outcome",
			},
			[]string{"outcome"},
		),
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "issues_total",
				Help:      "Issues reported by level and rule",
			},
			[]string{"level", "rule"},
		),
		validationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Time spent validating a project",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
		),
		projectOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "projects",
				Name:      "operations_total",
				Help:      "Project service operations by result",
			},
			[]string{"op", "result"},
		),
		fieldOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fields",
				Name:      "operations_total",
				Help:      "Field configuration operations by vocabulary and result",
			},
			[]string{"op", "vocabulary", "result"},
		),
		renderCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "cache_total",
				Help:      "Renderer cache lookups by result",
			},
			[]string{"result"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "render",
				Name:      "request_duration_seconds",
				Help:      "Duration of renderer HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route pattern and status code",
			},
			[]string{"method", "route", "code"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.validations,
		m.issues,
		m.validationDuration,
		m.projectOps,
		m.fieldOps,
		m.renderCache,
		m.renderDuration,
		m.httpRequests,
	)
	return m
}

// Registry exposes the underlying registry (for tests and embedding).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveValidation records one validation run.
func (m *Metrics) ObserveValidation(issues []domain.Issue, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeClean
	for _, issue := range issues {
		m.issues.WithLabelValues(string(issue.Level), issue.Rule).Inc()
		switch {
		case issue.IsError():
			outcome = OutcomeBlocked
		case outcome == OutcomeClean:
			outcome = OutcomeWarnings
		}
	}
	m.validations.WithLabelValues(outcome).Inc()
	m.validationDuration.Observe(elapsed.Seconds())
}

// ProjectOp records a project service operation.
func (m *Metrics) ProjectOp(op string, err error) {
	if m == nil {
		return
	}
	m.projectOps.WithLabelValues(op, result(err)).Inc()
}

// FieldOp records a field configuration operation.
func (m *Metrics) FieldOp(op string, vocabulary domain.Vocabulary, err error) {
	if m == nil {
		return
	}
	m.fieldOps.WithLabelValues(op, string(vocabulary), result(err)).Inc()
}

// RenderCache records a renderer cache lookup; result is CacheHit or CacheMiss.
func (m *Metrics) RenderCache(result string) {
	if m == nil {
		return
	}
	m.renderCache.WithLabelValues(result).Inc()
}

// ObserveRender records a renderer round trip. status is the HTTP status or "error".
func (m *Metrics) ObserveRender(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(method, route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, code).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
