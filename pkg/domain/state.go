package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Position is the layout coordinate of a state on the canvas.
// It carries no semantics for validation.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// SystemNode tags a state that is structurally mandated by the editor.
type SystemNode struct {
	Type SystemNodeType
}

// State represents a node in a topic's state machine.
//
// A nil System means a plain, user-authored state. The system node type only exists
// when System is set, so the invariant lives in the type rather than in a runtime flag.
type State struct {
	ID       string
	Label    string
	Position Position
	System   *SystemNode

	// Terminal marks the state as an accepted end of a path.
	Terminal bool
}

// NewSystemState builds a system-mandated state of the given type.
func NewSystemState(id, label string, t SystemNodeType) State {
	return State{ID: id, Label: label, System: &SystemNode{Type: t}}
}

// IsSystemNode reports whether the state is structurally mandated.
func (s State) IsSystemNode() bool {
	return s.System != nil
}

// IsEntry reports whether the state starts a traversal of its topic.
func (s State) IsEntry() bool {
	return s.System != nil && s.System.Type.IsEntry()
}

// IsAcceptedTerminal reports whether a state may have no outgoing transitions.
func (s State) IsAcceptedTerminal() bool {
	return s.Terminal || (s.System != nil && s.System.Type == SystemNodeEnd)
}

// DisplayName returns the label, falling back to the ID.
func (s State) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID
}

// stateWire is the serialized shape shared by JSON and YAML.
type stateWire struct {
	ID             string         `json:"id" yaml:"id"`
	Label          string         `json:"label,omitempty" yaml:"label,omitempty"`
	Position       Position       `json:"position" yaml:"position"`
	IsSystemNode   bool           `json:"isSystemNode,omitempty" yaml:"isSystemNode,omitempty"`
	SystemNodeType SystemNodeType `json:"systemNodeType,omitempty" yaml:"systemNodeType,omitempty"`
	Terminal       bool           `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

func (s State) toWire() stateWire {
	w := stateWire{ID: s.ID, Label: s.Label, Position: s.Position, Terminal: s.Terminal}
	if s.System != nil {
		w.IsSystemNode = true
		w.SystemNodeType = s.System.Type
	}
	return w
}

func (s *State) fromWire(w stateWire) error {
	if !w.IsSystemNode && w.SystemNodeType != "" {
		return fmt.Errorf("state %q: systemNodeType %q set without isSystemNode", w.ID, w.SystemNodeType)
	}
	*s = State{ID: w.ID, Label: w.Label, Position: w.Position, Terminal: w.Terminal}
	if w.IsSystemNode {
		s.System = &SystemNode{Type: w.SystemNodeType}
	}
	return nil
}

// MarshalJSON emits the isSystemNode/systemNodeType wire pair.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toWire())
}

// UnmarshalJSON rejects a systemNodeType that is not backed by isSystemNode.
func (s *State) UnmarshalJSON(data []byte) error {
	var w stateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return s.fromWire(w)
}

// MarshalYAML mirrors MarshalJSON.
func (s State) MarshalYAML() (any, error) {
	return s.toWire(), nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (s *State) UnmarshalYAML(value *yaml.Node) error {
	var w stateWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	return s.fromWire(w)
}
