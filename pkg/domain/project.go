package domain

import (
	"strings"
	"time"
)

// Instrument is the natural key of a project.
type Instrument struct {
	Type     string `json:"type" yaml:"type"`
	Revision string `json:"revision" yaml:"revision"`
}

// Key returns a normalized representation used for uniqueness checks.
func (i Instrument) Key() string {
	return strings.TrimSpace(i.Type) + "\x00" + strings.TrimSpace(i.Revision)
}

// Project is one instrument diagram.
type Project struct {
	ID         string     `json:"id" yaml:"id"`
	Instrument Instrument `json:"instrument" yaml:"instrument"`
	Topics     []Topic    `json:"topics" yaml:"topics"`

	// SelectedTopicID is a UI concern. Validation ignores it.
	SelectedTopicID *string `json:"selectedTopicId,omitempty" yaml:"selectedTopicId,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Topic looks up a topic by ID.
func (p Project) Topic(id string) (Topic, bool) {
	for _, t := range p.Topics {
		if t.ID() == id {
			return t, true
		}
	}
	return Topic{}, false
}

// Clone returns a deep copy so stores can hand out values callers may mutate.
func (p Project) Clone() Project {
	out := p
	if p.SelectedTopicID != nil {
		id := *p.SelectedTopicID
		out.SelectedTopicID = &id
	}
	out.Topics = make([]Topic, len(p.Topics))
	for i, t := range p.Topics {
		ct := Topic{Topic: t.Topic}
		if t.States != nil {
			ct.States = make([]State, len(t.States))
			for j, s := range t.States {
				if s.System != nil {
					sys := *s.System
					s.System = &sys
				}
				ct.States[j] = s
			}
		}
		if t.Transitions != nil {
			ct.Transitions = append([]Transition(nil), t.Transitions...)
		}
		out.Topics[i] = ct
	}
	return out
}
