package models

import "time"

// EscalationLocalIDPrefix tags escalation ids synthesized when the remote
// escalation endpoint could not be reached.
const EscalationLocalIDPrefix = "esc_local_"

// Priority is the urgency a user attaches to an escalation.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ContactPreference is how the user wants an operator to reach them.
type ContactPreference string

const (
	ContactEmail ContactPreference = "email"
	ContactPhone ContactPreference = "phone"
	ContactApp   ContactPreference = "app"
)

// IsValid reports whether c is a known contact preference.
func (c ContactPreference) IsValid() bool {
	switch c {
	case ContactEmail, ContactPhone, ContactApp:
		return true
	}
	return false
}

// EscalationRequest asks for human follow-up on a query.
type EscalationRequest struct {
	UserID            string            `json:"userId"`
	OriginalQuery     string            `json:"originalQuery"`
	Reason            string            `json:"reason"`
	Priority          Priority          `json:"priority"`
	ContactPreference ContactPreference `json:"contactPreference"`
	Timestamp         time.Time         `json:"timestamp"`
}

// EscalationResult is what the user is told after submitting.
type EscalationResult struct {
	EscalationID string `json:"escalationId"`
	Message      string `json:"message"`
	// Local is true when the remote endpoint failed and the id was synthesized.
	Local bool `json:"local"`
}
