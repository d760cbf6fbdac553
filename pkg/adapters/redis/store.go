package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/topicflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score used for projects without expiration (2100-01-01).
const farFuture = 4102444800

// Store implements ports.Store using Redis.
//
// Projects are stored as JSON under <prefix>project:<id>. A sorted set
// (<prefix>index) tracks project IDs scored by expiry and a hash
// (<prefix>instruments) maps instrument keys to project IDs.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for projects.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "topicflow:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + "project:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) instrumentsKey() string {
	return s.prefix + "instruments"
}

func (s *Store) fieldsKey() string {
	return s.prefix + "fields"
}

func (s *Store) score() float64 {
	if s.ttl == 0 {
		return farFuture
	}
	return float64(time.Now().Add(s.ttl).Unix())
}

func (s *Store) write(ctx context.Context, project domain.Project, previous *domain.Project) error {
	data, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(project.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.score(), Member: project.ID})
	if previous != nil && previous.Instrument.Key() != project.Instrument.Key() {
		pipe.HDel(ctx, s.instrumentsKey(), previous.Instrument.Key())
	}
	pipe.HSet(ctx, s.instrumentsKey(), project.Instrument.Key(), project.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Create persists a new project.
func (s *Store) Create(ctx context.Context, project domain.Project) error {
	return s.write(ctx, project, nil)
}

// Get retrieves a project from Redis.
func (s *Store) Get(ctx context.Context, id string) (domain.Project, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Project{}, domain.ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var project domain.Project
	if err := json.Unmarshal(val, &project); err != nil {
		return domain.Project{}, fmt.Errorf("failed to unmarshal project %q: %w", id, err)
	}
	return project, nil
}

// Update replaces an existing project and moves its instrument index entry.
func (s *Store) Update(ctx context.Context, project domain.Project) error {
	previous, err := s.Get(ctx, project.ID)
	if err != nil {
		return err
	}
	return s.write(ctx, project, &previous)
}

// Delete removes the project and its index entries.
func (s *Store) Delete(ctx context.Context, id string) error {
	previous, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrProjectNotFound) {
		return s.client.ZRem(ctx, s.indexKey(), id).Err()
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	pipe.HDel(ctx, s.instrumentsKey(), previous.Instrument.Key())
	_, err = pipe.Exec(ctx)
	return err
}

// List returns live projects ordered by ID.
// Expired entries are pruned from the index lazily.
func (s *Store) List(ctx context.Context) ([]domain.Project, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired projects: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	sort.Strings(ids)

	projects := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrProjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// FindByInstrument resolves the instrument hash and loads the project.
// A stale hash entry whose project expired is removed.
func (s *Store) FindByInstrument(ctx context.Context, instrument domain.Instrument) (domain.Project, error) {
	key := instrument.Key()
	id, err := s.client.HGet(ctx, s.instrumentsKey(), key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Project{}, domain.ErrProjectNotFound
		}
		return domain.Project{}, fmt.Errorf("failed to resolve instrument: %w", err)
	}

	p, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrProjectNotFound) {
		_ = s.client.HDel(ctx, s.instrumentsKey(), key).Err()
	}
	return p, err
}

// LoadFieldConfig reads the field configuration. A missing key yields a zero value.
func (s *Store) LoadFieldConfig(ctx context.Context) (domain.FieldConfig, error) {
	val, err := s.client.Get(ctx, s.fieldsKey()).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.FieldConfig{}, nil
	}
	if err != nil {
		return domain.FieldConfig{}, fmt.Errorf("failed to get field config: %w", err)
	}

	var cfg domain.FieldConfig
	if err := json.Unmarshal(val, &cfg); err != nil {
		return domain.FieldConfig{}, fmt.Errorf("failed to unmarshal field config: %w", err)
	}
	return cfg, nil
}

// SaveFieldConfig writes the field configuration. It never expires.
func (s *Store) SaveFieldConfig(ctx context.Context, cfg domain.FieldConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal field config: %w", err)
	}
	return s.client.Set(ctx, s.fieldsKey(), data, 0).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
