package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/topicflow/internal/logging"
	"github.com/aretw0/topicflow/internal/metrics"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/ports"
	"github.com/aretw0/topicflow/pkg/schema"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/google/uuid"
)

// Defaults for the topic seeded into new projects.
const (
	DefaultRootTopicID  = "lifecycle"
	DefaultEntryStateID = "new_instrument"
	defaultEntryLabel   = "New Instrument"
)

var createSchema = schema.Schema{
	"type":     schema.Required(),
	"revision": schema.Required(),
}

// CreateProjectInput is what the creation dialog collects.
type CreateProjectInput struct {
	Type        string `json:"type"`
	Revision    string `json:"revision"`
	RootTopicID string `json:"rootTopicId,omitempty"`
}

// Projects orchestrates project persistence around the validation engine.
type Projects struct {
	store     ports.ProjectStore
	validator *validation.Validator
	locks     *keyedLocks
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	newID     func() string
}

// ProjectsOption configures Projects.
type ProjectsOption func(*Projects)

// WithValidator replaces the default validator.
func WithValidator(v *validation.Validator) ProjectsOption {
	return func(p *Projects) {
		p.validator = v
	}
}

// WithLocker enables distributed locking of instrument keys.
func WithLocker(locker ports.DistributedLocker) ProjectsOption {
	return func(p *Projects) {
		p.locks.locker = locker
	}
}

// WithLockTTL overrides the distributed lock TTL.
func WithLockTTL(ttl time.Duration) ProjectsOption {
	return func(p *Projects) {
		if ttl > 0 {
			p.locks.ttl = ttl
		}
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) ProjectsOption {
	return func(p *Projects) {
		p.logger = logger
		p.locks.logger = logger
	}
}

// WithMetrics records operations on m.
func WithMetrics(m *metrics.Metrics) ProjectsOption {
	return func(p *Projects) {
		p.metrics = m
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) ProjectsOption {
	return func(p *Projects) {
		p.now = now
	}
}

// WithIDGenerator overrides uuid generation (tests).
func WithIDGenerator(newID func() string) ProjectsOption {
	return func(p *Projects) {
		p.newID = newID
	}
}

// NewProjects creates the project service.
func NewProjects(store ports.ProjectStore, opts ...ProjectsOption) *Projects {
	nop := logging.NewNop()
	p := &Projects{
		store:     store,
		validator: validation.New(),
		locks:     newKeyedLocks(nop),
		logger:    nop,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func lockKey(i domain.Instrument) string {
	return "instrument:" + i.Key()
}

// checkUnique returns a DuplicateInstrumentError if a project other than selfID owns the key.
func (p *Projects) checkUnique(ctx context.Context, instrument domain.Instrument, selfID string) error {
	existing, err := p.store.FindByInstrument(ctx, instrument)
	if errors.Is(err, domain.ErrProjectNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check instrument uniqueness: %w", err)
	}
	if existing.ID == selfID {
		return nil
	}
	return &DuplicateInstrumentError{
		Type:       strings.TrimSpace(instrument.Type),
		Revision:   strings.TrimSpace(instrument.Revision),
		ExistingID: existing.ID,
	}
}

// Create registers a new project for the instrument.
// A duplicate instrument is rejected before the store is asked to create anything.
func (p *Projects) Create(ctx context.Context, in CreateProjectInput) (project domain.Project, err error) {
	defer func() { p.metrics.ProjectOp("create", err) }()

	in.Type = strings.TrimSpace(in.Type)
	in.Revision = strings.TrimSpace(in.Revision)
	if err := schema.Validate(createSchema, map[string]any{"type": in.Type, "revision": in.Revision}); err != nil {
		return domain.Project{}, err
	}

	rootID := strings.TrimSpace(in.RootTopicID)
	if rootID == "" {
		rootID = DefaultRootTopicID
	}

	instrument := domain.Instrument{Type: in.Type, Revision: in.Revision}
	err = p.locks.withLock(ctx, lockKey(instrument), func(ctx context.Context) error {
		if err := p.checkUnique(ctx, instrument, ""); err != nil {
			return err
		}

		now := p.now().UTC()
		project = domain.Project{
			ID:         p.newID(),
			Instrument: instrument,
			Topics: []domain.Topic{{
				Topic: domain.TopicRef{ID: rootID, Kind: domain.TopicKindRoot},
				States: []domain.State{
					domain.NewSystemState(DefaultEntryStateID, defaultEntryLabel, domain.SystemNodeNewInstrument),
				},
				Transitions: []domain.Transition{},
			}},
			SelectedTopicID: &rootID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := p.store.Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
	if err != nil {
		p.logger.Info("Project creation rejected", "type", in.Type, "revision", in.Revision, "err", err)
		return domain.Project{}, err
	}

	p.logger.Info("Project created", "project_id", project.ID, "type", in.Type, "revision", in.Revision)
	return project, nil
}

// Get loads a project.
func (p *Projects) Get(ctx context.Context, id string) (domain.Project, error) {
	return p.store.Get(ctx, id)
}

// List returns every project ordered by ID.
func (p *Projects) List(ctx context.Context) ([]domain.Project, error) {
	return p.store.List(ctx)
}

// Delete removes a project.
func (p *Projects) Delete(ctx context.Context, id string) (err error) {
	defer func() { p.metrics.ProjectOp("delete", err) }()
	if err := p.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project %q: %w", id, err)
	}
	p.logger.Info("Project deleted", "project_id", id)
	return nil
}

// Update replaces a project without validating it, re-checking that its
// instrument key is not owned by another project. CreatedAt is preserved.
func (p *Projects) Update(ctx context.Context, project domain.Project) (updated domain.Project, err error) {
	defer func() { p.metrics.ProjectOp("update", err) }()
	return p.update(ctx, project)
}

func (p *Projects) update(ctx context.Context, project domain.Project) (domain.Project, error) {
	err := p.locks.withLock(ctx, lockKey(project.Instrument), func(ctx context.Context) error {
		current, err := p.store.Get(ctx, project.ID)
		if err != nil {
			return err
		}
		if err := p.checkUnique(ctx, project.Instrument, project.ID); err != nil {
			return err
		}

		project.CreatedAt = current.CreatedAt
		project.UpdatedAt = p.now().UTC()
		if err := p.store.Update(ctx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// Check validates a project snapshot and records the outcome.
func (p *Projects) Check(project domain.Project) []domain.Issue {
	start := time.Now()
	issues := p.validator.Validate(project)
	p.metrics.ObserveValidation(issues, time.Since(start))
	return issues
}

// Validate loads a stored project and returns its report.
func (p *Projects) Validate(ctx context.Context, id string) ([]domain.Issue, error) {
	project, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Check(project), nil
}

// Save validates the project and persists it unless the report blocks.
// Warnings never block; the full report is returned either way.
func (p *Projects) Save(ctx context.Context, project domain.Project) (issues []domain.Issue, err error) {
	defer func() { p.metrics.ProjectOp("save", err) }()

	issues = p.Check(project)
	if validation.HasBlockingErrors(issues) {
		errs, warns := validation.Count(issues)
		p.logger.Info("Project save blocked", "project_id", project.ID, "errors", errs, "warnings", warns)
		return issues, &BlockedError{Issues: issues}
	}

	if _, err := p.update(ctx, project); err != nil {
		return issues, err
	}
	p.logger.Debug("Project saved", "project_id", project.ID, "issues", len(issues))
	return issues, nil
}
