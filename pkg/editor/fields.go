package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/topicflow/internal/logging"
	"github.com/aretw0/topicflow/internal/metrics"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/ports"
	"github.com/aretw0/topicflow/pkg/schema"
)

var colorSchema = schema.Schema{"color": schema.HexColor()}

// Fields manages the controlled vocabularies. Every mutation is a
// load-modify-save under one mutex; rejected mutations leave the store untouched.
type Fields struct {
	store   ports.FieldConfigStore
	mu      sync.Mutex
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// FieldsOption configures Fields.
type FieldsOption func(*Fields)

// WithFieldsLogger configures a logger.
func WithFieldsLogger(logger *slog.Logger) FieldsOption {
	return func(f *Fields) {
		f.logger = logger
	}
}

// WithFieldsMetrics records operations on m.
func WithFieldsMetrics(m *metrics.Metrics) FieldsOption {
	return func(f *Fields) {
		f.metrics = m
	}
}

// NewFields creates the field configuration service.
func NewFields(store ports.FieldConfigStore, opts ...FieldsOption) *Fields {
	f := &Fields{store: store, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get returns the current configuration.
func (f *Fields) Get(ctx context.Context) (domain.FieldConfig, error) {
	return f.store.LoadFieldConfig(ctx)
}

func knownVocabulary(v domain.Vocabulary) error {
	if _, ok := domain.ParseVocabulary(string(v)); !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownVocabulary, v)
	}
	return nil
}

func (f *Fields) mutate(ctx context.Context, fn func(domain.FieldConfig) (domain.FieldConfig, error)) (domain.FieldConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.store.LoadFieldConfig(ctx)
	if err != nil {
		return domain.FieldConfig{}, fmt.Errorf("failed to load field config: %w", err)
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := f.store.SaveFieldConfig(ctx, next); err != nil {
		return current, fmt.Errorf("failed to save field config: %w", err)
	}
	return next, nil
}

// AddValue appends value to a vocabulary. The value must follow the enum
// naming convention and must not already be present.
func (f *Fields) AddValue(ctx context.Context, vocab domain.Vocabulary, value string) (cfg domain.FieldConfig, err error) {
	defer func() { f.metrics.FieldOp("add", vocab, err) }()
	if err := knownVocabulary(vocab); err != nil {
		return domain.FieldConfig{}, err
	}
	if err := schema.ValidateEnumName(value); err != nil {
		f.logger.Info("Vocabulary value rejected", "vocabulary", vocab, "value", value, "err", err)
		return domain.FieldConfig{}, err
	}

	return f.mutate(ctx, func(current domain.FieldConfig) (domain.FieldConfig, error) {
		values := current.Values(vocab)
		if slices.Contains(values, value) {
			return current, &DuplicateValueError{Vocabulary: vocab, Value: value}
		}
		return current.WithValues(vocab, append(slices.Clone(values), value)), nil
	})
}

// RemoveValue deletes value from a vocabulary. Removing a flow type drops its colour.
func (f *Fields) RemoveValue(ctx context.Context, vocab domain.Vocabulary, value string) (cfg domain.FieldConfig, err error) {
	defer func() { f.metrics.FieldOp("remove", vocab, err) }()
	if err := knownVocabulary(vocab); err != nil {
		return domain.FieldConfig{}, err
	}

	return f.mutate(ctx, func(current domain.FieldConfig) (domain.FieldConfig, error) {
		values := current.Values(vocab)
		idx := slices.Index(values, value)
		if idx < 0 {
			return current, fmt.Errorf("%w: %q in %s", domain.ErrValueNotFound, value, vocab)
		}
		next := current.WithValues(vocab, slices.Delete(slices.Clone(values), idx, idx+1))
		if vocab == domain.VocabFlowTypes {
			delete(next.FlowTypeColors, value)
		}
		return next, nil
	})
}

// SetFlowTypeColor assigns a #RRGGBB colour to an existing flow type.
// An empty colour clears the mapping.
func (f *Fields) SetFlowTypeColor(ctx context.Context, flowType, color string) (cfg domain.FieldConfig, err error) {
	defer func() { f.metrics.FieldOp("color", domain.VocabFlowTypes, err) }()
	if color != "" {
		if err := schema.Validate(colorSchema, map[string]any{"color": color}); err != nil {
			return domain.FieldConfig{}, err
		}
	}

	return f.mutate(ctx, func(current domain.FieldConfig) (domain.FieldConfig, error) {
		if !slices.Contains(current.FlowTypes, flowType) {
			return current, fmt.Errorf("%w: %q in %s", domain.ErrValueNotFound, flowType, domain.VocabFlowTypes)
		}
		next := current.Clone()
		if color == "" {
			delete(next.FlowTypeColors, flowType)
			return next, nil
		}
		if next.FlowTypeColors == nil {
			next.FlowTypeColors = make(map[string]string)
		}
		next.FlowTypeColors[flowType] = color
		return next, nil
	})
}
