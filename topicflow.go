package topicflow

import (
	"log/slog"
	"time"

	"github.com/aretw0/topicflow/internal/metrics"
	"github.com/aretw0/topicflow/pkg/adapters/file"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/ports"
	"github.com/aretw0/topicflow/pkg/validation"
)

// Version is the release version, overridable with
// -ldflags "-X github.com/aretw0/topicflow.Version=<v>".
var Version = "0.1.0"

// Editor is the high-level entry point: the project and field configuration
// services sharing one store and one validator.
type Editor struct {
	Projects  *editor.Projects
	Fields    *editor.Fields
	Validator *validation.Validator

	store ports.Store
}

type options struct {
	logger        *slog.Logger
	metrics       *metrics.Metrics
	locker        ports.DistributedLocker
	lockTTL       time.Duration
	disabledRules []string
}

// Option configures an Editor.
type Option func(*options)

// WithLogger sets the structured logger shared by the services.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records service activity on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLocker serializes instrument key checks across processes.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(o *options) {
		o.locker = locker
		o.lockTTL = ttl
	}
}

// WithDisabledRules turns off validation rules by ID.
func WithDisabledRules(ids ...string) Option {
	return func(o *options) {
		o.disabledRules = append(o.disabledRules, ids...)
	}
}

// New wires the editor services on top of store.
func New(store ports.Store, opts ...Option) *Editor {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	validator := validation.New(validation.WithDisabledRules(o.disabledRules...))

	projectOpts := []editor.ProjectsOption{
		editor.WithValidator(validator),
		editor.WithMetrics(o.metrics),
	}
	fieldOpts := []editor.FieldsOption{editor.WithFieldsMetrics(o.metrics)}
	if o.logger != nil {
		projectOpts = append(projectOpts, editor.WithLogger(o.logger))
		fieldOpts = append(fieldOpts, editor.WithFieldsLogger(o.logger))
	}
	if o.locker != nil {
		projectOpts = append(projectOpts, editor.WithLocker(o.locker))
		if o.lockTTL > 0 {
			projectOpts = append(projectOpts, editor.WithLockTTL(o.lockTTL))
		}
	}

	return &Editor{
		Projects:  editor.NewProjects(store, projectOpts...),
		Fields:    editor.NewFields(store, fieldOpts...),
		Validator: validator,
		store:     store,
	}
}

// Store returns the underlying store.
func (e *Editor) Store() ports.Store {
	return e.store
}

// Validate runs the built-in rule set over p.
func Validate(p domain.Project) []domain.Issue {
	return validation.Validate(p)
}

// LoadProject reads a project document from a YAML or JSON file.
func LoadProject(path string) (domain.Project, error) {
	return file.ReadProject(path)
}
