package ports

import (
	"context"

	"github.com/aretw0/topicflow/pkg/domain"
)

// ProjectStore defines the interface for persisting projects.
type ProjectStore interface {
	// Create persists a new project. The project ID must already be set.
	Create(ctx context.Context, project domain.Project) error

	// Get retrieves a project by ID.
	// Returns domain.ErrProjectNotFound if the project does not exist.
	Get(ctx context.Context, id string) (domain.Project, error)

	// Update replaces an existing project.
	// Returns domain.ErrProjectNotFound if the project does not exist.
	Update(ctx context.Context, project domain.Project) error

	// Delete removes a project. Deleting a missing project is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every project ordered by ID.
	List(ctx context.Context) ([]domain.Project, error)

	// FindByInstrument returns the project owning an instrument key.
	// Returns domain.ErrProjectNotFound if no project matches.
	FindByInstrument(ctx context.Context, instrument domain.Instrument) (domain.Project, error)
}

// FieldConfigStore defines the interface for persisting the field configuration.
type FieldConfigStore interface {
	// LoadFieldConfig returns the stored configuration, or a zero value if none was saved.
	LoadFieldConfig(ctx context.Context) (domain.FieldConfig, error)

	// SaveFieldConfig replaces the stored configuration.
	SaveFieldConfig(ctx context.Context, cfg domain.FieldConfig) error
}

// Store is implemented by adapters that persist both projects and field configuration.
type Store interface {
	ProjectStore
	FieldConfigStore
}
