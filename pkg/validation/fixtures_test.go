package validation_test

import "github.com/aretw0/topicflow/pkg/domain"

// validProject returns a project that triggers no rule.
func validProject() domain.Project {
	return domain.Project{
		ID:         "p1",
		Instrument: domain.Instrument{Type: "TypeA", Revision: "R1"},
		Topics: []domain.Topic{
			{
				Topic: domain.TopicRef{ID: "lifecycle", Kind: domain.TopicKindRoot},
				States: []domain.State{
					domain.NewSystemState("new", "New Instrument", domain.SystemNodeNewInstrument),
					{ID: "idle", Label: "Idle"},
					{ID: "done", Label: "Done", Terminal: true},
				},
				Transitions: []domain.Transition{
					{ID: "t0", From: "new", To: "idle", Kind: domain.TransitionSystemStart, MessageType: "REGISTER", FlowType: "SYNC"},
					{ID: "t1", From: "idle", To: "done", MessageType: "STOP", FlowType: "ASYNC"},
				},
			},
		},
	}
}

// deadEndProject is a root topic whose only normal state has no way out.
func deadEndProject() domain.Project {
	return domain.Project{
		ID:         "p2",
		Instrument: domain.Instrument{Type: "TypeA", Revision: "R1"},
		Topics: []domain.Topic{
			{
				Topic: domain.TopicRef{ID: "lifecycle", Kind: domain.TopicKindRoot},
				States: []domain.State{
					domain.NewSystemState("new", "New Instrument", domain.SystemNodeNewInstrument),
					{ID: "idle", Label: "Idle"},
				},
				Transitions: []domain.Transition{
					{ID: "t0", From: "new", To: "idle", Kind: domain.TransitionSystemStart, MessageType: "REGISTER", FlowType: "SYNC"},
				},
			},
		},
	}
}

func messages(issues []domain.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Message)
	}
	return out
}

func levels(issues []domain.Issue, level domain.Level) int {
	n := 0
	for _, i := range issues {
		if i.Level == level {
			n++
		}
	}
	return n
}
