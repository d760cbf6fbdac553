package domain

// Transition is a directed edge between two states of the same topic.
type Transition struct {
	ID   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// Kind is empty or TransitionNormal for user-authored edges.
	Kind TransitionKind `json:"kind,omitempty" yaml:"kind,omitempty"`

	MessageType string `json:"messageType,omitempty" yaml:"messageType,omitempty"`
	FlowType    string `json:"flowType,omitempty" yaml:"flowType,omitempty"`
}

// IsSystemStart reports whether the transition is the mandated lifecycle start.
func (t Transition) IsSystemStart() bool {
	return t.Kind == TransitionSystemStart
}
