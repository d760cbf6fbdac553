package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/topicflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

const (
	projectsDir = "projects"
	fieldsFile  = "fields.yaml"
	tempPrefix  = "tmp-"
)

// Store implements ports.Store using the local filesystem.
// Projects live as YAML documents under <BasePath>/projects/<id>.yaml and the
// field configuration under <BasePath>/fields.yaml.
type Store struct {
	BasePath string

	mu sync.RWMutex
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".topicflow".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = ".topicflow"
	}
	return &Store{BasePath: basePath}
}

func (s *Store) projectPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("project id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid project id %q", id)
	}
	// List skips in-flight temp files, so such IDs would never be listed.
	if strings.HasPrefix(id, tempPrefix) {
		return "", fmt.Errorf("invalid project id %q: prefix %q is reserved", id, tempPrefix)
	}
	return filepath.Join(s.BasePath, projectsDir, id+".yaml"), nil
}

// writeAtomic writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func writeAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory keeps us on the same filesystem, required for atomic rename.
	tmpFile, err := os.CreateTemp(dir, tempPrefix+"*-"+filepath.Base(destPath))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Store) writeProject(project domain.Project) error {
	path, err := s.projectPath(project.ID)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	return writeAtomic(path, data)
}

func (s *Store) readProject(id string) (domain.Project, error) {
	path, err := s.projectPath(id)
	if err != nil {
		return domain.Project{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Project{}, domain.ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("failed to read project file: %w", err)
	}

	var project domain.Project
	if err := yaml.Unmarshal(data, &project); err != nil {
		return domain.Project{}, fmt.Errorf("failed to unmarshal project %q: %w", id, err)
	}
	return project, nil
}

// Create persists a new project file.
func (s *Store) Create(ctx context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeProject(project)
}

// Get reads a project file.
func (s *Store) Get(ctx context.Context, id string) (domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readProject(id)
}

// Update overwrites an existing project file.
func (s *Store) Update(ctx context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.readProject(project.ID); err != nil {
		return err
	}
	return s.writeProject(project)
}

// Delete removes the project file.
func (s *Store) Delete(ctx context.Context, id string) error {
	path, err := s.projectPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete project file: %w", err)
	}
	return nil
}

// List reads every project file, ordered by ID.
func (s *Store) List(ctx context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(s.BasePath, projectsDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Project{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".yaml" || strings.HasPrefix(name, tempPrefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(ids)

	projects := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.readProject(id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// FindByInstrument scans the project files for the instrument key.
func (s *Store) FindByInstrument(ctx context.Context, instrument domain.Instrument) (domain.Project, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	key := instrument.Key()
	for _, p := range projects {
		if p.Instrument.Key() == key {
			return p, nil
		}
	}
	return domain.Project{}, domain.ErrProjectNotFound
}

// LoadFieldConfig reads fields.yaml. A missing file yields a zero value.
func (s *Store) LoadFieldConfig(ctx context.Context) (domain.FieldConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.BasePath, fieldsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.FieldConfig{}, nil
		}
		return domain.FieldConfig{}, fmt.Errorf("failed to read field config: %w", err)
	}

	var cfg domain.FieldConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.FieldConfig{}, fmt.Errorf("failed to unmarshal field config: %w", err)
	}
	return cfg, nil
}

// SaveFieldConfig writes fields.yaml atomically.
func (s *Store) SaveFieldConfig(ctx context.Context, cfg domain.FieldConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal field config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(filepath.Join(s.BasePath, fieldsFile), data)
}
