package models

// Category is the coarse data-access class assigned to a query.
type Category string

const (
	CategorySafe       Category = "safe"
	CategoryAggregate  Category = "aggregate"
	CategoryIndividual Category = "individual"
	CategoryBlocked    Category = "blocked"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategorySafe, CategoryAggregate, CategoryIndividual, CategoryBlocked:
		return true
	}
	return false
}

// RiskLevel grades how sensitive answering a query would be.
type RiskLevel string

const (
	RiskMinimal    RiskLevel = "minimal"
	RiskLow        RiskLevel = "low"
	RiskHigh       RiskLevel = "high"
	RiskProhibited RiskLevel = "prohibited"
)

// IsValid reports whether r is a known risk level.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskMinimal, RiskLow, RiskHigh, RiskProhibited:
		return true
	}
	return false
}

// Data-category tags recorded against queries.
const (
	DataIndividualChild     = "individual_child_data"
	DataAggregateStatistics = "aggregate_statistics"
)

// Classification is the risk judgment for a single query. It is created
// fresh per query and never persisted on its own.
type Classification struct {
	Category             Category  `json:"category"`
	RiskLevel            RiskLevel `json:"riskLevel"`
	RequiresConsent      bool      `json:"requiresConsent"`
	RequiresHumanReview  bool      `json:"requiresHumanReview"`
	BlockedReason        string    `json:"blockedReason,omitempty"`
	DataCategories       []string  `json:"dataCategories"`
	SuggestedAlternative string    `json:"suggestedAlternative,omitempty"`

	// Rule names the rule that produced the classification ("default" when
	// nothing matched). Used for metrics and logs only.
	Rule string `json:"-"`
}

// IsBlocked reports whether the query must not reach the responder.
func (c Classification) IsBlocked() bool {
	return c.Category == CategoryBlocked
}

// DataAccessed returns a copy of the implicated data categories, never nil.
func (c Classification) DataAccessed() []string {
	if len(c.DataCategories) == 0 {
		return []string{}
	}
	out := make([]string, len(c.DataCategories))
	copy(out, c.DataCategories)
	return out
}
