package validation

import (
	"fmt"
	"strings"

	"github.com/aretw0/topicflow/pkg/domain"
)

// Rule identifiers of the built-in rule set.
const (
	RuleInstrumentType       = "instrument-type"
	RuleInstrumentRevision   = "instrument-revision"
	RuleSingleRootTopic      = "single-root-topic"
	RuleDuplicateState       = "duplicate-state"
	RuleDanglingTransition   = "dangling-transition"
	RuleSystemEntry          = "system-entry"
	RuleStartTransitionShape = "start-transition-shape"
	RuleMissingEndPaths      = "missing-end-paths"
)

// Messages with fixed wording. UI copy and tests depend on them.
const (
	MsgInstrumentTypeRequired     = "Instrument type is required"
	MsgInstrumentRevisionRequired = "Instrument revision is required"
)

// DefaultRules returns the built-in rule set in declaration order.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          RuleInstrumentType,
			Name:        "Instrument type required",
			Description: "The project's instrument type must not be empty.",
			Check:       checkInstrumentType,
		},
		{
			ID:          RuleInstrumentRevision,
			Name:        "Instrument revision required",
			Description: "The project's instrument revision must not be empty.",
			Check:       checkInstrumentRevision,
		},
		{
			ID:          RuleSingleRootTopic,
			Name:        "Single root topic",
			Description: "A project declares at most one root topic.",
			Check:       checkSingleRootTopic,
		},
		{
			ID:          RuleDuplicateState,
			Name:        "Unique state ids",
			Description: "State ids are unique within a topic.",
			Check:       checkDuplicateStates,
		},
		{
			ID:          RuleDanglingTransition,
			Name:        "Dangling transition endpoints",
			Description: "Transitions reference states that exist in the same topic.",
			Check:       checkDanglingTransitions,
		},
		{
			ID:          RuleSystemEntry,
			Name:        "System entry presence",
			Description: "The root topic contains the new instrument entry state.",
			Check:       checkSystemEntry,
		},
		{
			ID:          RuleStartTransitionShape,
			Name:        "Start transition shape",
			Description: "Transitions leaving the entry state carry a message type and a flow type.",
			Check:       checkStartTransitionShape,
		},
		{
			ID:          RuleMissingEndPaths,
			Name:        "Missing end paths",
			Description: "States reachable from an entry either continue or are marked terminal.",
			Check:       checkMissingEndPaths,
		},
	}
}

func checkInstrumentType(pass *Pass) []domain.Issue {
	if strings.TrimSpace(pass.Project.Instrument.Type) != "" {
		return nil
	}
	return []domain.Issue{{Level: domain.LevelError, Message: MsgInstrumentTypeRequired}}
}

func checkInstrumentRevision(pass *Pass) []domain.Issue {
	if strings.TrimSpace(pass.Project.Instrument.Revision) != "" {
		return nil
	}
	return []domain.Issue{{Level: domain.LevelError, Message: MsgInstrumentRevisionRequired}}
}

func checkSingleRootTopic(pass *Pass) []domain.Issue {
	var roots []string
	for _, t := range pass.Topics {
		if t.Topic.IsRoot() {
			roots = append(roots, fmt.Sprintf("%q", t.ID()))
		}
	}
	if len(roots) <= 1 {
		return nil
	}
	return []domain.Issue{{
		Level:   domain.LevelError,
		Message: "Multiple root topics defined: " + strings.Join(roots, ", "),
	}}
}

func checkDuplicateStates(pass *Pass) []domain.Issue {
	var issues []domain.Issue
	for _, t := range pass.Topics {
		seen := make(map[string]int, len(t.Topic.States))
		for _, s := range t.Topic.States {
			seen[s.ID]++
			if seen[s.ID] != 2 {
				continue
			}
			issues = append(issues, domain.Issue{
				Level:   domain.LevelError,
				Message: fmt.Sprintf("Duplicate state id %q in topic %q", s.ID, t.ID()),
				TopicID: t.ID(),
				StateID: s.ID,
			})
		}
	}
	return issues
}

func checkDanglingTransitions(pass *Pass) []domain.Issue {
	var issues []domain.Issue
	for _, t := range pass.Topics {
		for _, tr := range t.Topic.Transitions {
			if !t.HasState(tr.From) {
				issues = append(issues, domain.Issue{
					Level:        domain.LevelError,
					Message:      fmt.Sprintf("Transition %q references missing source state %q", tr.ID, tr.From),
					TopicID:      t.ID(),
					TransitionID: tr.ID,
				})
			}
			if !t.HasState(tr.To) {
				issues = append(issues, domain.Issue{
					Level:        domain.LevelError,
					Message:      fmt.Sprintf("Transition %q references missing target state %q", tr.ID, tr.To),
					TopicID:      t.ID(),
					TransitionID: tr.ID,
				})
			}
		}
	}
	return issues
}

func checkSystemEntry(pass *Pass) []domain.Issue {
	var issues []domain.Issue
	for _, t := range pass.Topics {
		if !t.Topic.IsRoot() || len(t.Entries()) > 0 {
			continue
		}
		issues = append(issues, domain.Issue{
			Level:   domain.LevelError,
			Message: fmt.Sprintf("Root topic %q is missing the new instrument entry state", t.ID()),
			TopicID: t.ID(),
		})
	}
	return issues
}

// checkStartTransitionShape covers transitions leaving an entry state as well as
// transitions explicitly tagged as the system start.
func checkStartTransitionShape(pass *Pass) []domain.Issue {
	var issues []domain.Issue
	for _, t := range pass.Topics {
		for _, tr := range t.Topic.Transitions {
			from, ok := t.State(tr.From)
			if !tr.IsSystemStart() && !(ok && from.IsEntry()) {
				continue
			}
			if strings.TrimSpace(tr.MessageType) == "" {
				issues = append(issues, domain.Issue{
					Level:        domain.LevelError,
					Message:      fmt.Sprintf("Start transition %q is missing a message type", tr.ID),
					TopicID:      t.ID(),
					StateID:      tr.From,
					TransitionID: tr.ID,
				})
			}
			if strings.TrimSpace(tr.FlowType) == "" {
				issues = append(issues, domain.Issue{
					Level:        domain.LevelError,
					Message:      fmt.Sprintf("Start transition %q is missing a flow type", tr.ID),
					TopicID:      t.ID(),
					StateID:      tr.From,
					TransitionID: tr.ID,
				})
			}
		}
	}
	return issues
}

// checkMissingEndPaths warns about dead ends reachable from an entry point.
// States unreachable from every entry are out of scope for this rule.
func checkMissingEndPaths(pass *Pass) []domain.Issue {
	var issues []domain.Issue
	for _, t := range pass.Topics {
		for _, id := range t.Reachable() {
			if t.OutDegree(id) > 0 {
				continue
			}
			s, _ := t.State(id)
			if s.IsAcceptedTerminal() {
				continue
			}
			issues = append(issues, domain.Issue{
				Level:   domain.LevelWarning,
				Message: fmt.Sprintf("State %q has no outgoing transitions and is not marked as terminal", s.DisplayName()),
				TopicID: t.ID(),
				StateID: s.ID,
			})
		}
	}
	return issues
}
