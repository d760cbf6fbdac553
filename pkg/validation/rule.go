package validation

import "github.com/aretw0/topicflow/pkg/domain"

// CheckFunc inspects a validation pass and returns zero or more issues.
// It must not mutate the pass or depend on other rules.
type CheckFunc func(pass *Pass) []domain.Issue

// Rule is one independent check of the rule set.
type Rule struct {
	ID          string
	Name        string
	Description string
	Check       CheckFunc
}

// RuleInfo is the metadata of a rule, for documentation and tooling.
type RuleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Info returns the rule metadata.
func (r Rule) Info() RuleInfo {
	return RuleInfo{ID: r.ID, Name: r.Name, Description: r.Description}
}

// Pass is the read-only context handed to every rule of one validation call.
type Pass struct {
	Project domain.Project
	Topics  []*TopicView
}

func newPass(p domain.Project) *Pass {
	pass := &Pass{Project: p, Topics: make([]*TopicView, 0, len(p.Topics))}
	for _, t := range p.Topics {
		pass.Topics = append(pass.Topics, newTopicView(t))
	}
	return pass
}

// TopicView is a topic plus its precomputed graph structure.
type TopicView struct {
	Topic domain.Topic

	// index maps a state ID to its first position in Topic.States.
	index map[string]int
	// outgoing maps a state ID to the positions of transitions leaving it,
	// including transitions whose target does not resolve.
	outgoing map[string][]int
}

func newTopicView(t domain.Topic) *TopicView {
	v := &TopicView{
		Topic:    t,
		index:    make(map[string]int, len(t.States)),
		outgoing: make(map[string][]int, len(t.States)),
	}
	for i, s := range t.States {
		if _, dup := v.index[s.ID]; !dup {
			v.index[s.ID] = i
		}
	}
	for i, tr := range t.Transitions {
		v.outgoing[tr.From] = append(v.outgoing[tr.From], i)
	}
	return v
}

// ID returns the topic identifier.
func (v *TopicView) ID() string {
	return v.Topic.ID()
}

// HasState reports whether id resolves to a state of the topic.
func (v *TopicView) HasState(id string) bool {
	_, ok := v.index[id]
	return ok
}

// State resolves a state by ID.
func (v *TopicView) State(id string) (domain.State, bool) {
	i, ok := v.index[id]
	if !ok {
		return domain.State{}, false
	}
	return v.Topic.States[i], true
}

// Outgoing returns the transitions leaving a state, in declaration order.
func (v *TopicView) Outgoing(id string) []domain.Transition {
	idx := v.outgoing[id]
	out := make([]domain.Transition, 0, len(idx))
	for _, i := range idx {
		out = append(out, v.Topic.Transitions[i])
	}
	return out
}

// OutDegree counts transitions leaving a state.
func (v *TopicView) OutDegree(id string) int {
	return len(v.outgoing[id])
}

// Entries returns the entry states of the topic, in declaration order.
func (v *TopicView) Entries() []domain.State {
	var entries []domain.State
	for i, s := range v.Topic.States {
		if s.IsEntry() && v.index[s.ID] == i {
			entries = append(entries, s)
		}
	}
	return entries
}

// Reachable returns the IDs of states reachable from any entry point, in
// breadth-first order. Transitions with unresolved targets are not followed.
func (v *TopicView) Reachable() []string {
	visited := make(map[string]bool, len(v.index))
	var order []string
	var queue []string

	for _, e := range v.Entries() {
		if !visited[e.ID] {
			visited[e.ID] = true
			queue = append(queue, e.ID)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		for _, i := range v.outgoing[current] {
			target := v.Topic.Transitions[i].To
			if visited[target] || !v.HasState(target) {
				continue
			}
			visited[target] = true
			queue = append(queue, target)
		}
	}

	return order
}
