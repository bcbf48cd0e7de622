// Package escalation submits requests for human follow-up to the escalation
// API. Submission is best effort: a failed call still yields a
// success-shaped result under a local id.
package escalation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"miniminds/internal/compliance/metrics"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/tracer"
	"miniminds/internal/sentinel"
	dErrors "miniminds/pkg/domain-errors"
)

//go:generate mockgen -source=submitter.go -destination=mocks/mocks.go -package=mocks Remote

// Remote is the escalation API.
type Remote interface {
	Escalate(ctx context.Context, req models.EscalationRequest) (models.EscalationResult, error)
}

// Policy decides what else is recorded when an escalation is submitted.
type Policy string

const (
	// PolicyBestEffort records nothing beyond the submission itself.
	PolicyBestEffort Policy = "best_effort"
	// PolicyAudited also writes an escalated audit entry through the durable
	// audit path, so a lost submission still leaves a compliance record.
	PolicyAudited Policy = "audited"
)

// ParsePolicy validates a configured policy. Empty input is best effort.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyBestEffort:
		return PolicyBestEffort, nil
	case PolicyAudited:
		return PolicyAudited, nil
	}
	return "", fmt.Errorf("unknown escalation durability policy %q", s)
}

// FallbackMessage is returned when the remote could not be reached.
const FallbackMessage = "Your request has been recorded. An operator will contact you soon."

// Escalation outcomes for metrics.
const (
	OutcomeRemote = "remote"
	OutcomeLocal  = "local"
)

// Submitter is safe for concurrent use.
type Submitter struct {
	remote  Remote
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	now     func() time.Time
}

// Option configures a Submitter.
type Option func(*Submitter)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Submitter) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Submitter) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) {
		if now != nil {
			s.now = now
		}
	}
}

func New(remote Remote, opts ...Option) *Submitter {
	s := &Submitter{
		remote: remote,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends req to the escalation API. Only invalid requests return an
// error; a remote failure yields a local id and FallbackMessage. The request
// is not retried or persisted.
func (s *Submitter) Submit(ctx context.Context, req models.EscalationRequest) (models.EscalationResult, error) {
	if !req.Priority.IsValid() {
		return models.EscalationResult{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid priority %q", req.Priority))
	}
	if !req.ContactPreference.IsValid() {
		return models.EscalationResult{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid contact preference %q", req.ContactPreference))
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = s.now().UTC()
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanEscalationCall,
		tracer.String("escalation.priority", string(req.Priority)),
	)
	defer span.End(nil)

	res, err := s.remote.Escalate(ctx, req)
	if err == nil && res.EscalationID != "" {
		s.metrics.IncrementEscalation(OutcomeRemote)
		res.Local = false
		return res, nil
	}
	if err == nil {
		err = fmt.Errorf("escalation API returned no id: %w", sentinel.ErrBadResponse)
	}

	id := s.localID()
	s.metrics.IncrementEscalation(OutcomeLocal)
	s.logger.WarnContext(ctx, "escalation submission failed, returning local id",
		"escalation_id", id,
		"priority", req.Priority,
		"error", err,
	)
	span.SetAttributes(tracer.Bool("escalation.local", true))
	return models.EscalationResult{
		EscalationID: id,
		Message:      FallbackMessage,
		Local:        true,
	}, nil
}

func (s *Submitter) localID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s%d_%s", models.EscalationLocalIDPrefix, s.now().UnixMilli(), random)
}
