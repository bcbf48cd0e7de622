package testutil

import (
	"fmt"
	"time"

	"miniminds/internal/compliance/models"
)

// FixedTime is a deterministic timestamp for fixtures.
var FixedTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

// EntryBuilder provides a fluent interface for building audit entries.
type EntryBuilder struct {
	entry models.AuditEntry
}

// NewEntryBuilder creates an EntryBuilder for a safe, answered query.
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		entry: models.AuditEntry{
			Timestamp:       FixedTime,
			UserID:          "parent-1",
			UserRole:        models.RoleParent,
			SessionID:       "session-1",
			Query:           "What are the daycare hours?",
			QueryCategory:   models.CategorySafe,
			RiskLevel:       models.RiskMinimal,
			ResponseType:    models.ResponseSuccess,
			DataAccessed:    []string{},
			ConsentVerified: true,
		},
	}
}

func (b *EntryBuilder) WithID(id string) *EntryBuilder {
	b.entry.ID = id
	return b
}

func (b *EntryBuilder) WithQuery(q string) *EntryBuilder {
	b.entry.Query = q
	return b
}

func (b *EntryBuilder) WithUser(id string, role models.Role) *EntryBuilder {
	b.entry.UserID = id
	b.entry.UserRole = role
	return b
}

func (b *EntryBuilder) WithTimestamp(t time.Time) *EntryBuilder {
	b.entry.Timestamp = t
	return b
}

// Blocked marks the entry as a blocked query.
func (b *EntryBuilder) Blocked(reason string) *EntryBuilder {
	b.entry.QueryCategory = models.CategoryBlocked
	b.entry.RiskLevel = models.RiskProhibited
	b.entry.WasBlocked = true
	b.entry.BlockedReason = reason
	b.entry.ResponseType = models.ResponseBlocked
	b.entry.DataAccessed = []string{}
	b.entry.ConsentVerified = false
	return b
}

func (b *EntryBuilder) Build() models.AuditEntry {
	e := b.entry
	e.DataAccessed = append([]string{}, b.entry.DataAccessed...)
	return e
}

// Entries builds n distinct entries whose queries are numbered.
func Entries(n int) []models.AuditEntry {
	out := make([]models.AuditEntry, n)
	for i := range out {
		out[i] = NewEntryBuilder().
			WithQuery(fmt.Sprintf("query %d", i)).
			WithTimestamp(FixedTime.Add(time.Duration(i) * time.Second)).
			Build()
	}
	return out
}
