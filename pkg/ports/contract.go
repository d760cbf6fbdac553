package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractProject(id, typ, rev string) domain.Project {
	return domain.Project{
		ID:         id,
		Instrument: domain.Instrument{Type: typ, Revision: rev},
		Topics: []domain.Topic{{
			Topic: domain.TopicRef{ID: "lifecycle", Kind: domain.TopicKindRoot},
			States: []domain.State{
				domain.NewSystemState("new", "New Instrument", domain.SystemNodeNewInstrument),
				{ID: "idle", Label: "Idle", Position: domain.Position{X: 10, Y: 20}, Terminal: true},
			},
			Transitions: []domain.Transition{
				{ID: "t0", From: "new", To: "idle", Kind: domain.TransitionSystemStart, MessageType: "REGISTER", FlowType: "SYNC"},
			},
		}},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// RunProjectStoreContract runs a suite of tests to verify that a ProjectStore implementation
// adheres to the defined interface contract. The store must start empty.
func RunProjectStoreContract(t *testing.T, store ProjectStore) {
	ctx := context.Background()

	t.Run("Create and Get", func(t *testing.T) {
		p := contractProject("contract-1", "TypeA", "R1")
		require.NoError(t, store.Create(ctx, p), "Create should not return error")

		loaded, err := store.Get(ctx, p.ID)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, p.Instrument, loaded.Instrument)
		require.Len(t, loaded.Topics, 1)
		assert.Equal(t, p.Topics[0], loaded.Topics[0])
		assert.True(t, p.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "contract-missing")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("Returned Values Are Isolated", func(t *testing.T) {
		loaded, err := store.Get(ctx, "contract-1")
		require.NoError(t, err)
		loaded.Topics[0].States[0].Label = "mutated"

		again, err := store.Get(ctx, "contract-1")
		require.NoError(t, err)
		assert.Equal(t, "New Instrument", again.Topics[0].States[0].Label)
	})

	t.Run("Update", func(t *testing.T) {
		p := contractProject("contract-1", "TypeA", "R2")
		require.NoError(t, store.Update(ctx, p))

		loaded, err := store.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "R2", loaded.Instrument.Revision)
	})

	t.Run("Update Non-Existent", func(t *testing.T) {
		err := store.Update(ctx, contractProject("contract-missing", "X", "Y"))
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("FindByInstrument", func(t *testing.T) {
		found, err := store.FindByInstrument(ctx, domain.Instrument{Type: "TypeA", Revision: "R2"})
		require.NoError(t, err)
		assert.Equal(t, "contract-1", found.ID)

		_, err = store.FindByInstrument(ctx, domain.Instrument{Type: "TypeA", Revision: "R1"})
		assert.ErrorIs(t, err, domain.ErrProjectNotFound, "old key must be released after Update")
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, contractProject("contract-0", "TypeB", "R1")))

		projects, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "contract-0", projects[0].ID)
		assert.Equal(t, "contract-1", projects[1].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "contract-0"))
		_, err := store.Get(ctx, "contract-0")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound, "Get after Delete should return ErrProjectNotFound")

		_, err = store.FindByInstrument(ctx, domain.Instrument{Type: "TypeB", Revision: "R1"})
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)

		assert.NoError(t, store.Delete(ctx, "contract-0"), "Delete should be idempotent")
	})
}

// RunFieldConfigStoreContract verifies a FieldConfigStore implementation.
func RunFieldConfigStoreContract(t *testing.T, store FieldConfigStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		cfg, err := store.LoadFieldConfig(ctx)
		require.NoError(t, err)
		assert.Empty(t, cfg.FlowTypes)
		assert.Empty(t, cfg.FlowTypeColors)
	})

	t.Run("Save and Load", func(t *testing.T) {
		cfg := domain.FieldConfig{
			InstrumentTypes: []string{"TypeA"},
			MessageTypes:    []string{"REGISTER", "STOP"},
			FlowTypes:       []string{"SYNC"},
			FlowTypeColors:  map[string]string{"SYNC": "#00ff88"},
		}
		require.NoError(t, store.SaveFieldConfig(ctx, cfg))

		loaded, err := store.LoadFieldConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, cfg.InstrumentTypes, loaded.InstrumentTypes)
		assert.Equal(t, cfg.MessageTypes, loaded.MessageTypes)
		assert.Equal(t, cfg.FlowTypes, loaded.FlowTypes)
		assert.Equal(t, "#00ff88", loaded.FlowTypeColors["SYNC"])
	})
}
