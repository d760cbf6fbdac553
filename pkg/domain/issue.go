package domain

// Level is the severity of an Issue.
type Level string

const (
	// LevelError blocks saving or publishing the project.
	LevelError Level = "error"
	// LevelWarning is advisory only.
	LevelWarning Level = "warning"
)

// Issue is a single validation finding.
// TopicID, StateID and TransitionID localize the finding for UI highlighting.
type Issue struct {
	Level   Level  `json:"level" yaml:"level"`
	Message string `json:"message" yaml:"message"`
	Rule    string `json:"rule,omitempty" yaml:"rule,omitempty"`

	TopicID      string `json:"topicId,omitempty" yaml:"topicId,omitempty"`
	StateID      string `json:"stateId,omitempty" yaml:"stateId,omitempty"`
	TransitionID string `json:"transitionId,omitempty" yaml:"transitionId,omitempty"`
}

// IsError reports whether the issue is blocking.
func (i Issue) IsError() bool {
	return i.Level == LevelError
}
