package validation

import (
	"slices"

	"github.com/aretw0/topicflow/pkg/domain"
)

// HasBlockingErrors reports whether at least one issue is an error.
func HasBlockingErrors(issues []domain.Issue) bool {
	for _, issue := range issues {
		if issue.IsError() {
			return true
		}
	}
	return false
}

// Count returns the number of errors and warnings.
func Count(issues []domain.Issue) (errors, warnings int) {
	for _, issue := range issues {
		switch issue.Level {
		case domain.LevelError:
			errors++
		case domain.LevelWarning:
			warnings++
		}
	}
	return errors, warnings
}

// SortBySeverity returns a copy with errors before warnings, keeping the relative
// order within each level. Validate never applies it.
func SortBySeverity(issues []domain.Issue) []domain.Issue {
	out := slices.Clone(issues)
	slices.SortStableFunc(out, func(a, b domain.Issue) int {
		return rank(a.Level) - rank(b.Level)
	})
	return out
}

func rank(l domain.Level) int {
	if l == domain.LevelError {
		return 0
	}
	return 1
}

// ForTopic returns the issues localized to a topic.
func ForTopic(issues []domain.Issue, topicID string) []domain.Issue {
	var out []domain.Issue
	for _, issue := range issues {
		if issue.TopicID == topicID {
			out = append(out, issue)
		}
	}
	return out
}
