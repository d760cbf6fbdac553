package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/topicflow/pkg/domain"
)

// Store implements ports.Store in memory.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
	fields   domain.FieldConfig
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		projects: make(map[string]domain.Project),
	}
}

// Create persists a new project. An existing ID is overwritten.
func (s *Store) Create(ctx context.Context, project domain.Project) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := project.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = copied
	return nil
}

// Get retrieves a project from memory.
func (s *Store) Get(ctx context.Context, id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return p.Clone(), nil
}

// Update replaces an existing project.
func (s *Store) Update(ctx context.Context, project domain.Project) error {
	copied := project.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[project.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	s.projects[project.ID] = copied
	return nil
}

// Delete removes the project.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

// List returns every project ordered by ID.
func (s *Store) List(ctx context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByInstrument scans for the project owning the instrument key.
func (s *Store) FindByInstrument(ctx context.Context, instrument domain.Instrument) (domain.Project, error) {
	key := instrument.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Instrument.Key() == key {
			return p.Clone(), nil
		}
	}
	return domain.Project{}, domain.ErrProjectNotFound
}

// LoadFieldConfig returns a copy of the stored configuration.
func (s *Store) LoadFieldConfig(ctx context.Context) (domain.FieldConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields.Clone(), nil
}

// SaveFieldConfig replaces the stored configuration.
func (s *Store) SaveFieldConfig(ctx context.Context, cfg domain.FieldConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = cfg.Clone()
	return nil
}
