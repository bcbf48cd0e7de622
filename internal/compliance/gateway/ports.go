package gateway

import (
	"context"

	"golang.org/x/text/language"

	"miniminds/internal/compliance/models"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Classifier decides how a query may be handled.
type Classifier interface {
	Classify(text string) models.Classification
}

// Localizer renders user-facing text in the caller's language.
type Localizer interface {
	Localize(c models.Classification, tag language.Tag) string
	Text(key string, tag language.Tag) string
	Match(tag language.Tag) language.Tag
}

// Responder is the backend AI answering non-blocked queries.
type Responder interface {
	Query(ctx context.Context, query string, c models.Classification) (models.Answer, error)
}

// AuditRecorder persists one audit entry and returns its id, remote or local.
// It must not fail: undeliverable entries are queued.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry) string
}

// EscalationSubmitter forwards requests for human follow-up.
type EscalationSubmitter interface {
	Submit(ctx context.Context, req models.EscalationRequest) (models.EscalationResult, error)
}
