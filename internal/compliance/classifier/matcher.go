package classifier

import "regexp"

// Predicate decides whether a rule applies to a query.
type Predicate func(Input) bool

// Rule pairs a predicate with the classification it produces.
type Rule struct {
	Name      string
	Predicate Predicate
	Outcome   Outcome
}

// firstMatch returns the first rule whose predicate holds. Order is the
// priority; later rules are never consulted once one matches.
func firstMatch(rules []Rule, in Input) (Rule, bool) {
	for _, r := range rules {
		if r.Predicate != nil && r.Predicate(in) {
			return r, true
		}
	}
	return Rule{}, false
}

// Folded matches any of the patterns against the case-folded text.
func Folded(patterns ...string) Predicate {
	res := compileAll(patterns)
	return func(in Input) bool {
		for _, re := range res {
			if re.MatchString(in.Folded) {
				return true
			}
		}
		return false
	}
}

// Any holds when at least one of the predicates holds.
func Any(preds ...Predicate) Predicate {
	return func(in Input) bool {
		for _, p := range preds {
			if p(in) {
				return true
			}
		}
		return false
	}
}

func compileAll(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}
