package diagram

import (
	"fmt"
	"strings"

	"github.com/aretw0/topicflow/pkg/domain"
)

// Overlay carries editor data drawn on top of the topic graph.
type Overlay struct {
	// Issues from the validation engine; only those for the rendered topic are used.
	Issues []domain.Issue
	// FlowTypeColors maps flow types to #RRGGBB edge colours.
	FlowTypeColors map[string]string
}

// Edge colours used for transitions that carry issues.
const (
	errorStroke   = "#d32f2f"
	warningStroke = "#f9a825"
)

// GenerateMermaid produces Mermaid flowchart source for one topic.
// It applies semantic styling:
// - Entry (new_instrument): ((Circle))
// - Terminal (end or marked terminal): ([Stadium])
// - Other system nodes: {{Hexagon}}
// - Default: [Rectangle]
// Transitions are labelled "messageType / flowType"; edges whose endpoints are
// missing are drawn dotted. Overlay issues win over flow type colours.
func GenerateMermaid(topic domain.Topic, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[string]bool, len(topic.States))
	for _, s := range topic.States {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true

		opener, closer := "[", "]"
		switch {
		case s.IsEntry():
			opener, closer = "((", "))"
		case s.IsAcceptedTerminal():
			opener, closer = "([", "])"
		case s.IsSystemNode():
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s.ID), opener, escapeLabel(s.DisplayName()), closer)
	}

	for _, t := range topic.Transitions {
		arrow := "-->"
		dangling := !seen[t.From] || !seen[t.To]
		if label := edgeLabel(t); label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
			if dangling {
				arrow = fmt.Sprintf("-. \"%s\" .->", escapeLabel(label))
			}
		} else if dangling {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(t.From), arrow, nodeID(t.To))
	}

	if overlay != nil {
		writeOverlay(&sb, topic, overlay)
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, topic domain.Topic, overlay *Overlay) {
	stateLevel := make(map[string]domain.Level)
	edgeLevel := make(map[string]domain.Level)
	for _, issue := range overlay.Issues {
		if issue.TopicID != topic.ID() {
			continue
		}
		if issue.TransitionID != "" {
			edgeLevel[issue.TransitionID] = worst(edgeLevel[issue.TransitionID], issue.Level)
		} else if issue.StateID != "" {
			stateLevel[issue.StateID] = worst(stateLevel[issue.StateID], issue.Level)
		}
	}

	var links []string
	for i, t := range topic.Transitions {
		switch edgeLevel[t.ID] {
		case domain.LevelError:
			links = append(links, fmt.Sprintf("    linkStyle %d stroke:%s,stroke-width:3px;\n", i, errorStroke))
			continue
		case domain.LevelWarning:
			links = append(links, fmt.Sprintf("    linkStyle %d stroke:%s,stroke-width:3px;\n", i, warningStroke))
			continue
		}
		if color, ok := overlay.FlowTypeColors[t.FlowType]; ok && t.FlowType != "" {
			links = append(links, fmt.Sprintf("    linkStyle %d stroke:%s,stroke-width:2px;\n", i, color))
		}
	}

	if len(stateLevel) == 0 && len(links) == 0 {
		return
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef error fill:#ffebee,stroke:#d32f2f,stroke-width:3px,color:#000;\n")
	sb.WriteString("    classDef warning fill:#fff8e1,stroke:#f9a825,stroke-width:2px,color:#000;\n")

	written := make(map[string]bool)
	for _, s := range topic.States {
		level, ok := stateLevel[s.ID]
		if !ok || written[s.ID] {
			continue
		}
		written[s.ID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", nodeID(s.ID), level)
	}
	for _, l := range links {
		sb.WriteString(l)
	}
}

func worst(current, next domain.Level) domain.Level {
	if current == domain.LevelError || next == domain.LevelError {
		return domain.LevelError
	}
	return next
}

func edgeLabel(t domain.Transition) string {
	parts := make([]string, 0, 2)
	if m := strings.TrimSpace(t.MessageType); m != "" {
		parts = append(parts, m)
	}
	if f := strings.TrimSpace(t.FlowType); f != "" {
		parts = append(parts, f)
	}
	return strings.Join(parts, " / ")
}

var labelReplacer = strings.NewReplacer("\"", "'", "\r\n", " ", "\n", " ", "\r", " ")

// escapeLabel keeps a label on one quoted mermaid line.
func escapeLabel(s string) string {
	return labelReplacer.Replace(s)
}

// nodeID maps a state ID to a mermaid identifier. The "s_" prefix keeps
// reserved words like "end" valid. Letters and digits pass through, '_'
// doubles, and any other rune becomes _x<hex>_, so distinct IDs never collide.
func nodeID(id string) string {
	var b strings.Builder
	b.WriteString("s_")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_':
			b.WriteString("__")
		default:
			fmt.Fprintf(&b, "_x%x_", r)
		}
	}
	return b.String()
}
