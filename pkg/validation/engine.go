package validation

import "github.com/aretw0/topicflow/pkg/domain"

// Validator runs an ordered rule set over projects.
// It holds no mutable state and is safe for concurrent use.
type Validator struct {
	rules    []Rule
	disabled map[string]bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithRules replaces the rule set.
func WithRules(rules ...Rule) Option {
	return func(v *Validator) {
		v.rules = append([]Rule(nil), rules...)
	}
}

// WithExtraRules appends rules after the current set.
func WithExtraRules(rules ...Rule) Option {
	return func(v *Validator) {
		v.rules = append(v.rules, rules...)
	}
}

// WithDisabledRules skips the rules with the given IDs.
func WithDisabledRules(ids ...string) Option {
	return func(v *Validator) {
		for _, id := range ids {
			v.disabled[id] = true
		}
	}
}

// New creates a Validator with the default rule set.
func New(opts ...Option) *Validator {
	v := &Validator{
		rules:    DefaultRules(),
		disabled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// Validate runs the default rule set over p.
func Validate(p domain.Project) []domain.Issue {
	return defaultValidator.Validate(p)
}

// Validate runs every enabled rule exactly once and concatenates their issues in
// rule order. The returned slice is never nil.
func (v *Validator) Validate(p domain.Project) []domain.Issue {
	pass := newPass(p)
	issues := make([]domain.Issue, 0)
	for _, rule := range v.rules {
		if v.disabled[rule.ID] {
			continue
		}
		for _, issue := range rule.Check(pass) {
			if issue.Rule == "" {
				issue.Rule = rule.ID
			}
			issues = append(issues, issue)
		}
	}
	return issues
}

// Rules returns metadata for the enabled rules, in execution order.
func (v *Validator) Rules() []RuleInfo {
	infos := make([]RuleInfo, 0, len(v.rules))
	for _, rule := range v.rules {
		if v.disabled[rule.ID] {
			continue
		}
		infos = append(infos, rule.Info())
	}
	return infos
}
