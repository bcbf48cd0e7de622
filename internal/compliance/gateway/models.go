package gateway

import (
	"encoding/json"

	"golang.org/x/text/language"

	"miniminds/internal/compliance/models"
)

// State is a step of the per-query lifecycle. Blocked, Answered and Errored
// are terminal.
type State string

const (
	StateReceived   State = "received"
	StateClassified State = "classified"
	StateBlocked    State = "blocked"
	StateForwarded  State = "forwarded"
	StateAnswered   State = "answered"
	StateErrored    State = "errored"
)

// IsTerminal reports whether no further transition follows s.
func (s State) IsTerminal() bool {
	switch s {
	case StateBlocked, StateAnswered, StateErrored:
		return true
	}
	return false
}

// MaxQueryLength is the default limit on query length, in runes.
const MaxQueryLength = 2000

// QueryRequest is one user query with the caller's context.
type QueryRequest struct {
	Query     string
	Language  language.Tag
	Principal models.Principal
	SessionID string
	ClientIP  string
	UserAgent string
}

// Result is what the caller sees. Success is false for blocked and errored
// queries; Message is always set.
type Result struct {
	Success        bool                  `json:"success"`
	State          State                 `json:"state"`
	Message        string                `json:"message"`
	Data           json.RawMessage       `json:"data,omitempty"`
	Classification models.Classification `json:"classification"`
	Language       string                `json:"language"`
}

// EscalateRequest asks for a human to follow up on a query.
type EscalateRequest struct {
	OriginalQuery     string
	Reason            string
	Priority          models.Priority
	ContactPreference models.ContactPreference
	Language          language.Tag
	Principal         models.Principal
	SessionID         string
	UserAgent         string
}
