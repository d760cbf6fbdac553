package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/validation"
)

func TestRule_DanglingTransition(t *testing.T) {
	p := validProject()
	p.Topics[0].Transitions = append(p.Topics[0].Transitions,
		domain.Transition{ID: "bad", From: "nowhere", To: "void", MessageType: "X", FlowType: "Y"})

	issues := validation.Validate(p)

	assert.Equal(t, []string{
		`Transition "bad" references missing source state "nowhere"`,
		`Transition "bad" references missing target state "void"`,
	}, messages(issues))
	for _, i := range issues {
		assert.Equal(t, "bad", i.TransitionID)
		assert.Equal(t, domain.LevelError, i.Level)
	}
}

func TestRule_DanglingAcrossTopics(t *testing.T) {
	p := validProject()
	p.Topics = append(p.Topics, domain.Topic{
		Topic:       domain.TopicRef{ID: "other", Kind: "service"},
		States:      []domain.State{{ID: "ready", Terminal: true}},
		Transitions: []domain.Transition{{ID: "x", From: "ready", To: "idle"}},
	})

	issues := validation.Validate(p)

	require.Len(t, issues, 1)
	assert.Equal(t, "other", issues[0].TopicID)
	assert.Contains(t, issues[0].Message, `missing target state "idle"`)
}

func TestRule_SystemEntry(t *testing.T) {
	t.Run("Root Topic Without Entry", func(t *testing.T) {
		p := validProject()
		p.Topics[0].States = p.Topics[0].States[1:]
		p.Topics[0].Transitions = p.Topics[0].Transitions[1:]

		issues := validation.Validate(p)

		require.Len(t, issues, 1)
		assert.Equal(t, `Root topic "lifecycle" is missing the new instrument entry state`, issues[0].Message)
		assert.Equal(t, validation.RuleSystemEntry, issues[0].Rule)
	})

	t.Run("Non Root Topic Without Entry", func(t *testing.T) {
		p := validProject()
		p.Topics[0].Topic.Kind = "service"
		assert.Empty(t, validation.Validate(p))
	})

	t.Run("End System Node Is Not An Entry", func(t *testing.T) {
		p := validProject()
		p.Topics[0].States[0] = domain.NewSystemState("new", "New", domain.SystemNodeEnd)

		issues := validation.Validate(p)
		assert.Contains(t, messages(issues), `Root topic "lifecycle" is missing the new instrument entry state`)
	})
}

func TestRule_StartTransitionShape(t *testing.T) {
	tests := []struct {
		name        string
		messageType string
		flowType    string
		want        []string
	}{
		{
			name:     "Missing Message Type",
			flowType: "SYNC",
			want:     []string{`Start transition "t0" is missing a message type`},
		},
		{
			name:        "Missing Flow Type",
			messageType: "REGISTER",
			want:        []string{`Start transition "t0" is missing a flow type`},
		},
		{
			name: "Missing Both",
			want: []string{
				`Start transition "t0" is missing a message type`,
				`Start transition "t0" is missing a flow type`,
			},
		},
		{
			name:        "Whitespace Counts As Missing",
			messageType: " ",
			flowType:    "SYNC",
			want:        []string{`Start transition "t0" is missing a message type`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProject()
			p.Topics[0].Transitions[0].MessageType = tt.messageType
			p.Topics[0].Transitions[0].FlowType = tt.flowType

			issues := validation.Validate(p)
			assert.Equal(t, tt.want, messages(issues))
			for _, i := range issues {
				assert.Equal(t, "t0", i.TransitionID)
				assert.Equal(t, "new", i.StateID)
			}
		})
	}
}

func TestRule_StartTransitionShapeUntaggedEdge(t *testing.T) {
	p := validProject()
	p.Topics[0].Transitions[0].Kind = ""
	p.Topics[0].Transitions[0].FlowType = ""

	assert.Equal(t, []string{`Start transition "t0" is missing a flow type`}, messages(validation.Validate(p)))
}

func TestRule_MissingEndPaths(t *testing.T) {
	t.Run("Unreachable Dead End Is Ignored", func(t *testing.T) {
		p := validProject()
		p.Topics[0].States = append(p.Topics[0].States, domain.State{ID: "orphan"})
		assert.Empty(t, validation.Validate(p))
	})

	t.Run("End System Node Is Accepted", func(t *testing.T) {
		p := deadEndProject()
		p.Topics[0].States[1] = domain.NewSystemState("idle", "Idle", domain.SystemNodeEnd)
		assert.Empty(t, validation.Validate(p))
	})

	t.Run("Entry Without Transitions", func(t *testing.T) {
		p := validProject()
		p.Topics[0].Transitions = nil

		issues := validation.Validate(p)
		require.Len(t, issues, 1)
		assert.Equal(t, `State "New Instrument" has no outgoing transitions and is not marked as terminal`, issues[0].Message)
	})

	t.Run("Cycle Without Dead End", func(t *testing.T) {
		p := deadEndProject()
		p.Topics[0].Transitions = append(p.Topics[0].Transitions,
			domain.Transition{ID: "back", From: "idle", To: "new"})
		assert.Empty(t, validation.Validate(p))
	})

	t.Run("Each Dead End Reported Once In Traversal Order", func(t *testing.T) {
		p := deadEndProject()
		p.Topics[0].States = append(p.Topics[0].States, domain.State{ID: "busy"})
		p.Topics[0].Transitions = append(p.Topics[0].Transitions,
			domain.Transition{ID: "t1", From: "new", To: "busy", MessageType: "GO", FlowType: "SYNC"},
			domain.Transition{ID: "t2", From: "new", To: "idle", MessageType: "GO", FlowType: "SYNC"},
		)

		issues := validation.Validate(p)
		var states []string
		for _, i := range issues {
			states = append(states, i.StateID)
		}
		assert.Equal(t, []string{"idle", "busy"}, states)
	})

	t.Run("Multiple Entries", func(t *testing.T) {
		p := domain.Project{
			Instrument: domain.Instrument{Type: "T", Revision: "R"},
			Topics: []domain.Topic{{
				Topic: domain.TopicRef{ID: "svc", Kind: "service"},
				States: []domain.State{
					domain.NewSystemState("a", "", domain.SystemNodeNewInstrument),
					domain.NewSystemState("b", "", domain.SystemNodeNewInstrument),
					{ID: "x"},
				},
				Transitions: []domain.Transition{
					{ID: "t1", From: "a", To: "x", MessageType: "M", FlowType: "F"},
					{ID: "t2", From: "b", To: "x", MessageType: "M", FlowType: "F"},
				},
			}},
		}

		issues := validation.Validate(p)
		require.Len(t, issues, 1)
		assert.Equal(t, "x", issues[0].StateID)
	})
}

func TestRule_DuplicateState(t *testing.T) {
	p := validProject()
	p.Topics[0].States = append(p.Topics[0].States, domain.State{ID: "idle"}, domain.State{ID: "idle"})

	issues := validation.Validate(p)

	require.Len(t, issues, 1)
	assert.Equal(t, `Duplicate state id "idle" in topic "lifecycle"`, issues[0].Message)
	assert.Equal(t, "idle", issues[0].StateID)
}

func TestRule_SingleRootTopic(t *testing.T) {
	p := validProject()
	second := validProject().Topics[0]
	second.Topic.ID = "secondary"
	p.Topics = append(p.Topics, second)

	issues := validation.Validate(p)

	require.Len(t, issues, 1)
	assert.Equal(t, `Multiple root topics defined: "lifecycle", "secondary"`, issues[0].Message)
	assert.Empty(t, issues[0].TopicID)
}
