package models

import (
	"strings"
	"time"
)

// LocalIDPrefix tags audit ids generated on this side because the remote
// audit API could not be reached.
const LocalIDPrefix = "local_"

// IsLocalID reports whether an audit id was generated locally.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// ResponseType describes how an interaction ended.
type ResponseType string

const (
	ResponseSuccess   ResponseType = "success"
	ResponseBlocked   ResponseType = "blocked"
	ResponseError     ResponseType = "error"
	ResponseEscalated ResponseType = "escalated"
)

// AuditMetadata is optional client information attached to an entry.
type AuditMetadata struct {
	UserAgent string `json:"userAgent,omitempty"`
	Device    string `json:"device,omitempty"`
}

// AuditEntry is the compliance record of one interaction. Entries are
// append-only: after creation only ID may be attached.
type AuditEntry struct {
	ID              string         `json:"id,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
	UserID          string         `json:"userId"`
	UserRole        Role           `json:"userRole"`
	SessionID       string         `json:"sessionId"`
	Query           string         `json:"query"`
	QueryCategory   Category       `json:"queryCategory"`
	RiskLevel       RiskLevel      `json:"riskLevel"`
	WasBlocked      bool           `json:"wasBlocked"`
	BlockedReason   string         `json:"blockedReason,omitempty"`
	ResponseType    ResponseType   `json:"responseType"`
	DataAccessed    []string       `json:"dataAccessed"`
	ConsentVerified bool           `json:"consentVerified"`
	Metadata        *AuditMetadata `json:"metadata,omitempty"`
}

// WithID returns a copy of the entry carrying id.
func (e AuditEntry) WithID(id string) AuditEntry {
	e.ID = id
	return e
}

// AuditFilter narrows an audit log query. Zero values are not sent.
type AuditFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	UserID        string
	QueryCategory Category
	WasBlocked    *bool
	Page          int
	PageSize      int
}

// AuditPage is one page of remote audit log results.
type AuditPage struct {
	Logs  []AuditEntry `json:"logs"`
	Total int          `json:"total"`
}

// StatsPeriod selects the aggregation window for audit statistics.
type StatsPeriod string

const (
	PeriodDay   StatsPeriod = "day"
	PeriodWeek  StatsPeriod = "week"
	PeriodMonth StatsPeriod = "month"
)

// ParseStatsPeriod validates a period, defaulting empty input to week.
func ParseStatsPeriod(s string) (StatsPeriod, bool) {
	switch StatsPeriod(s) {
	case "":
		return PeriodWeek, true
	case PeriodDay, PeriodWeek, PeriodMonth:
		return StatsPeriod(s), true
	}
	return "", false
}

// AuditStats is the aggregate view returned by the remote audit API.
type AuditStats struct {
	TotalQueries     int               `json:"totalQueries"`
	BlockedQueries   int               `json:"blockedQueries"`
	EscalatedQueries int               `json:"escalatedQueries"`
	ByCategory       map[Category]int  `json:"byCategory"`
	ByRiskLevel      map[RiskLevel]int `json:"byRiskLevel"`
}
