package domain

// Vocabulary names one controlled list of the field configuration.
type Vocabulary string

const (
	VocabInstrumentTypes Vocabulary = "instrumentTypes"
	VocabRevisions       Vocabulary = "revisions"
	VocabTopicTypes      Vocabulary = "topicTypes"
	VocabMessageTypes    Vocabulary = "messageTypes"
	VocabFlowTypes       Vocabulary = "flowTypes"
)

// Vocabularies lists every known vocabulary in display order.
var Vocabularies = []Vocabulary{
	VocabInstrumentTypes,
	VocabRevisions,
	VocabTopicTypes,
	VocabMessageTypes,
	VocabFlowTypes,
}

// ParseVocabulary resolves a vocabulary name.
func ParseVocabulary(name string) (Vocabulary, bool) {
	for _, v := range Vocabularies {
		if string(v) == name {
			return v, true
		}
	}
	return "", false
}

// FieldConfig holds the controlled vocabularies used by the editor's selection inputs.
type FieldConfig struct {
	InstrumentTypes []string `json:"instrumentTypes" yaml:"instrumentTypes"`
	Revisions       []string `json:"revisions" yaml:"revisions"`
	TopicTypes      []string `json:"topicTypes" yaml:"topicTypes"`
	MessageTypes    []string `json:"messageTypes" yaml:"messageTypes"`
	FlowTypes       []string `json:"flowTypes" yaml:"flowTypes"`

	// FlowTypeColors is optional. A nil map reads as empty.
	FlowTypeColors map[string]string `json:"flowTypeColors,omitempty" yaml:"flowTypeColors,omitempty"`
}

// Values returns the entries of a vocabulary.
func (c FieldConfig) Values(v Vocabulary) []string {
	switch v {
	case VocabInstrumentTypes:
		return c.InstrumentTypes
	case VocabRevisions:
		return c.Revisions
	case VocabTopicTypes:
		return c.TopicTypes
	case VocabMessageTypes:
		return c.MessageTypes
	case VocabFlowTypes:
		return c.FlowTypes
	}
	return nil
}

// WithValues returns a copy of the config with the vocabulary replaced.
func (c FieldConfig) WithValues(v Vocabulary, values []string) FieldConfig {
	out := c.Clone()
	switch v {
	case VocabInstrumentTypes:
		out.InstrumentTypes = values
	case VocabRevisions:
		out.Revisions = values
	case VocabTopicTypes:
		out.TopicTypes = values
	case VocabMessageTypes:
		out.MessageTypes = values
	case VocabFlowTypes:
		out.FlowTypes = values
	}
	return out
}

// FlowTypeColor returns the colour configured for a flow type, if any.
func (c FieldConfig) FlowTypeColor(flowType string) (string, bool) {
	color, ok := c.FlowTypeColors[flowType]
	return color, ok
}

// Clone returns a deep copy.
func (c FieldConfig) Clone() FieldConfig {
	out := FieldConfig{
		InstrumentTypes: append([]string(nil), c.InstrumentTypes...),
		Revisions:       append([]string(nil), c.Revisions...),
		TopicTypes:      append([]string(nil), c.TopicTypes...),
		MessageTypes:    append([]string(nil), c.MessageTypes...),
		FlowTypes:       append([]string(nil), c.FlowTypes...),
	}
	if len(c.FlowTypeColors) > 0 {
		out.FlowTypeColors = make(map[string]string, len(c.FlowTypeColors))
		for k, v := range c.FlowTypeColors {
			out.FlowTypeColors[k] = v
		}
	}
	return out
}
