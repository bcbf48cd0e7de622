// Package classifier assigns a deterministic risk classification to every
// natural-language query before it may reach the AI responder.
package classifier

import "miniminds/internal/compliance/models"

// Classifier evaluates an ordered rule list. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the built-in rule set.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// New builds a classifier with the built-in rules: blocked, then safe, then
// aggregate, then the name-reference heuristic.
func New(opts ...Option) *Classifier {
	c := &Classifier{rules: DefaultRules()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultRules returns the built-in rules in evaluation order.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, BlockedRules()...)
	rules = append(rules, SafeRules()...)
	rules = append(rules, AggregateRules()...)
	rules = append(rules, Rule{
		Name:      RuleNameReference,
		Predicate: ReferencesName,
		Outcome:   blocked(ReasonNameReference, AltNameReference),
	})
	return rules
}

// Classify never fails: input matching no rule is safe.
func (c *Classifier) Classify(text string) models.Classification {
	in := Prepare(text)
	rule, ok := firstMatch(c.rules, in)
	if !ok {
		rule = Rule{Name: RuleDefault, Outcome: safeOutcome}
	}
	return rule.Outcome.classification(rule.Name)
}

func (o Outcome) classification(rule string) models.Classification {
	c := models.Classification{
		Category:            o.Category,
		RiskLevel:           o.RiskLevel,
		RequiresConsent:     o.RequiresConsent,
		RequiresHumanReview: o.RequiresHumanReview,
		DataCategories:      []string{},
		Rule:                rule,
	}
	if o.Category == models.CategoryBlocked {
		// Blocked queries never access data, whatever the rule protects.
		c.RiskLevel = models.RiskProhibited
		c.BlockedReason = o.Reason
		c.SuggestedAlternative = o.Alternative
		return c
	}
	c.DataCategories = append(c.DataCategories, o.DataCategories...)
	return c
}
