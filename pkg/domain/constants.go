package domain

// SystemNodeType identifies which structural role a system state plays.
type SystemNodeType string

const (
	// SystemNodeNewInstrument is the canonical entry point of an instrument lifecycle.
	SystemNodeNewInstrument SystemNodeType = "new_instrument"
	// SystemNodeEnd is an accepted terminal state.
	SystemNodeEnd SystemNodeType = "end"
)

// IsEntry reports whether states of this type start a traversal.
func (t SystemNodeType) IsEntry() bool {
	return t == SystemNodeNewInstrument
}

// TopicKind distinguishes the project's root topic from the others.
type TopicKind string

// TopicKindRoot marks the entry topic of a project.
const TopicKindRoot TopicKind = "root"

// TransitionKind distinguishes ordinary transitions from system-mandated ones.
type TransitionKind string

const (
	// TransitionNormal is an ordinary user-authored transition.
	TransitionNormal TransitionKind = "normal"
	// TransitionSystemStart is the transition leaving the lifecycle entry state.
	TransitionSystemStart TransitionKind = "system_start"
)
