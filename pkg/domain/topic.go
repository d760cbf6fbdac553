package domain

// TopicRef identifies a topic and its role in the project.
type TopicRef struct {
	ID   string    `json:"id" yaml:"id"`
	Kind TopicKind `json:"kind" yaml:"kind"`
}

// Topic is one logical conversation: a state machine of states and transitions.
type Topic struct {
	Topic       TopicRef     `json:"topic" yaml:"topic"`
	States      []State      `json:"states" yaml:"states"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}

// ID returns the topic identifier.
func (t Topic) ID() string {
	return t.Topic.ID
}

// IsRoot reports whether this is the project's entry topic.
func (t Topic) IsRoot() bool {
	return t.Topic.Kind == TopicKindRoot
}

// State looks up a state by ID. The first match wins when IDs collide.
func (t Topic) State(id string) (State, bool) {
	for _, s := range t.States {
		if s.ID == id {
			return s, true
		}
	}
	return State{}, false
}
