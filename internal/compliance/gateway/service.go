// Package gateway sequences every user query through classification, the
// block-or-forward decision, audit logging and the response.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"

	"miniminds/internal/compliance/classifier"
	"miniminds/internal/compliance/escalation"
	"miniminds/internal/compliance/identity"
	"miniminds/internal/compliance/metrics"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/tracer"
	dErrors "miniminds/pkg/domain-errors"
	"miniminds/pkg/platform/privacy"
)

// Service is safe for concurrent use.
type Service struct {
	classifier  Classifier
	localizer   Localizer
	responder   Responder
	audit       AuditRecorder
	escalations EscalationSubmitter
	history     History

	policy        escalation.Policy
	maxQueryLen   int
	metrics       *metrics.Metrics
	tracer        tracer.Tracer
	logger        *slog.Logger
	fingerprinter *privacy.Fingerprinter
	now           func() time.Time

	inflight sync.WaitGroup
}

// History stores conversation turns per owner and session.
type History interface {
	Append(owner, sessionID string, msgs ...models.Message)
}

// Option configures the Service.
type Option func(*Service)

// WithHistory records every turn in h.
func WithHistory(h History) Option {
	return func(s *Service) {
		s.history = h
	}
}

// WithEscalationPolicy sets the durability policy of escalations.
// Default is escalation.PolicyBestEffort.
func WithEscalationPolicy(p escalation.Policy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithMaxQueryLength sets the longest accepted query, in runes.
func WithMaxQueryLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxQueryLen = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithFingerprinter(f *privacy.Fingerprinter) Option {
	return func(s *Service) {
		s.fingerprinter = f
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates the gateway. Panics if a required collaborator is nil.
func New(
	c Classifier,
	l Localizer,
	responder Responder,
	audit AuditRecorder,
	escalations EscalationSubmitter,
	opts ...Option,
) *Service {
	if c == nil {
		panic("gateway.New: classifier is required")
	}
	if l == nil {
		panic("gateway.New: localizer is required")
	}
	if responder == nil {
		panic("gateway.New: responder is required")
	}
	if audit == nil {
		panic("gateway.New: audit recorder is required")
	}
	if escalations == nil {
		panic("gateway.New: escalation submitter is required")
	}

	s := &Service{
		classifier:  c,
		localizer:   l,
		responder:   responder,
		audit:       audit,
		escalations: escalations,
		policy:      escalation.PolicyBestEffort,
		maxQueryLen: MaxQueryLength,
		tracer:      tracer.NewNoop(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query handles one user query. Only invalid input returns an error; blocked
// queries and responder failures are failure-shaped results. Exactly one
// audit entry is dispatched per accepted query, before Query returns.
func (s *Service) Query(ctx context.Context, req QueryRequest) (Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Result{}, dErrors.New(dErrors.CodeValidation, "query is required")
	}
	if n := utf8.RuneCountInString(query); n > s.maxQueryLen {
		return Result{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("query exceeds %d characters", s.maxQueryLen))
	}
	req.Query = query
	req.Principal = normalizePrincipal(req.Principal)
	lang := s.localizer.Match(req.Language)
	fingerprint := s.fingerprinter.Fingerprint(query)

	ctx, span := s.tracer.Start(ctx, tracer.SpanGatewayQuery,
		tracer.String(tracer.AttrFingerprint, fingerprint),
		tracer.String(tracer.AttrLanguage, lang.String()),
		tracer.String(tracer.AttrRole, string(req.Principal.Role)),
	)
	defer span.End(nil)
	enter(span, StateReceived)

	c := s.classifier.Classify(query)
	s.metrics.IncrementClassification(string(c.Category))
	span.AddEvent(tracer.EventClassified,
		tracer.String(tracer.AttrCategory, string(c.Category)),
		tracer.String(tracer.AttrRiskLevel, string(c.RiskLevel)),
		tracer.String(tracer.AttrRule, c.Rule),
	)
	enter(span, StateClassified)

	var res Result
	switch {
	case c.IsBlocked():
		res = s.block(ctx, req, c, lang)
	case smallTalkKey(query) != "":
		res = s.smallTalk(ctx, req, c, lang)
	default:
		enter(span, StateForwarded)
		res = s.forward(ctx, req, c, lang)
	}
	res.Classification = c
	res.Language = lang.String()
	enter(span, res.State)

	s.appendHistory(req, c, res)
	s.metrics.IncrementOutcome(string(res.State))
	span.SetAttributes(tracer.String(tracer.AttrState, string(res.State)))
	s.logger.InfoContext(ctx, "query handled",
		"state", res.State,
		"category", c.Category,
		"risk_level", c.RiskLevel,
		"rule", c.Rule,
		"fingerprint", fingerprint,
		"user_role", req.Principal.Role,
		"session_id", req.SessionID,
		"language", res.Language,
	)
	return res, nil
}

func (s *Service) block(ctx context.Context, req QueryRequest, c models.Classification, lang language.Tag) Result {
	s.metrics.IncrementBlocked(c.Rule)
	entry := s.entry(req, c, models.ResponseBlocked)
	entry.WasBlocked = true
	entry.BlockedReason = c.BlockedReason
	s.dispatchAudit(ctx, entry)

	return Result{
		Success: false,
		State:   StateBlocked,
		Message: s.localizer.Localize(c, lang),
	}
}

func (s *Service) smallTalk(ctx context.Context, req QueryRequest, c models.Classification, lang language.Tag) Result {
	entry := s.entry(req, c, models.ResponseSuccess)
	entry.DataAccessed = c.DataAccessed()
	s.dispatchAudit(ctx, entry)

	return Result{
		Success: true,
		State:   StateAnswered,
		Message: s.localizer.Text(smallTalkKey(req.Query), lang),
	}
}

func (s *Service) forward(ctx context.Context, req QueryRequest, c models.Classification, lang language.Tag) Result {
	callCtx, span := s.tracer.Start(ctx, tracer.SpanResponderCall,
		tracer.String(tracer.AttrCategory, string(c.Category)),
	)
	start := time.Now()
	answer, err := s.responder.Query(callCtx, req.Query, c)
	s.metrics.ObserveResponderLatency(time.Since(start).Seconds())
	span.End(err)

	if err != nil {
		s.logger.WarnContext(ctx, "responder call failed",
			"category", c.Category,
			"session_id", req.SessionID,
			"error", err,
		)
		s.dispatchAudit(ctx, s.entry(req, c, models.ResponseError))
		return Result{
			Success: false,
			State:   StateErrored,
			Message: s.localizer.Text(classifier.KeyApology, lang),
		}
	}

	entry := s.entry(req, c, models.ResponseSuccess)
	entry.DataAccessed = c.DataAccessed()
	entry.ConsentVerified = true
	s.dispatchAudit(ctx, entry)

	return Result{
		Success: true,
		State:   StateAnswered,
		Message: answer.Message,
		Data:    answer.Data,
	}
}

// Escalate submits a request for human follow-up. Under the audited policy an
// escalated audit entry is dispatched whether or not the submission reached
// the escalation API.
func (s *Service) Escalate(ctx context.Context, req EscalateRequest) (models.EscalationResult, error) {
	req.OriginalQuery = strings.TrimSpace(req.OriginalQuery)
	if utf8.RuneCountInString(req.OriginalQuery) > s.maxQueryLen {
		return models.EscalationResult{}, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("original query exceeds %d characters", s.maxQueryLen))
	}
	req.Principal = normalizePrincipal(req.Principal)
	lang := s.localizer.Match(req.Language)

	ctx, span := s.tracer.Start(ctx, tracer.SpanGatewayEscalate,
		tracer.String(tracer.AttrRole, string(req.Principal.Role)),
		tracer.String(tracer.AttrLanguage, lang.String()),
	)

	res, err := s.escalations.Submit(ctx, models.EscalationRequest{
		UserID:            req.Principal.UserID,
		OriginalQuery:     req.OriginalQuery,
		Reason:            req.Reason,
		Priority:          req.Priority,
		ContactPreference: req.ContactPreference,
		Timestamp:         s.now().UTC(),
	})
	span.End(err)
	if err != nil {
		return models.EscalationResult{}, err
	}

	if s.policy == escalation.PolicyAudited {
		c := s.classifier.Classify(req.OriginalQuery)
		entry := s.entry(QueryRequest{
			Query:     req.OriginalQuery,
			Principal: req.Principal,
			SessionID: req.SessionID,
			UserAgent: req.UserAgent,
		}, c, models.ResponseEscalated)
		entry.WasBlocked = c.IsBlocked()
		entry.BlockedReason = c.BlockedReason
		s.dispatchAudit(ctx, entry)
	}

	if res.Local {
		res.Message = s.localizer.Text(classifier.KeyEscalationRecorded, lang)
	}
	s.logger.InfoContext(ctx, "escalation submitted",
		"escalation_id", res.EscalationID,
		"local", res.Local,
		"priority", req.Priority,
		"policy", s.policy,
		"session_id", req.SessionID,
	)
	return res, nil
}

// Wait blocks until every dispatched audit record has completed.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// dispatchAudit records entry on its own goroutine, detached from the
// request's cancellation.
func (s *Service) dispatchAudit(ctx context.Context, entry models.AuditEntry) {
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.audit.Record(ctx, entry)
	}()
}

// entry builds the audit entry common to every outcome. DataAccessed is empty
// and consent unverified unless the caller sets them.
func (s *Service) entry(req QueryRequest, c models.Classification, rt models.ResponseType) models.AuditEntry {
	entry := models.AuditEntry{
		Timestamp:     s.now().UTC(),
		UserID:        req.Principal.UserID,
		UserRole:      req.Principal.Role,
		SessionID:     req.SessionID,
		Query:         req.Query,
		QueryCategory: c.Category,
		RiskLevel:     c.RiskLevel,
		ResponseType:  rt,
		DataAccessed:  []string{},
	}
	if req.UserAgent != "" {
		entry.Metadata = &models.AuditMetadata{
			UserAgent: req.UserAgent,
			Device:    identity.DeviceClass(req.UserAgent),
		}
	}
	return entry
}

func (s *Service) appendHistory(req QueryRequest, c models.Classification, res Result) {
	if s.history == nil || req.SessionID == "" {
		return
	}
	now := s.now().UTC()
	s.history.Append(req.Principal.Owner(req.ClientIP), req.SessionID,
		models.Message{Role: models.SpeakerUser, Content: req.Query, Timestamp: now, Blocked: c.IsBlocked()},
		models.Message{Role: models.SpeakerAssistant, Content: res.Message, Timestamp: now, Blocked: c.IsBlocked()},
	)
}

// enter records a lifecycle transition on the query span.
func enter(span tracer.Span, st State) {
	span.AddEvent(tracer.EventStateEntered, tracer.String(tracer.AttrState, string(st)))
}

func normalizePrincipal(p models.Principal) models.Principal {
	if p.UserID == "" {
		p.UserID = models.AnonymousUserID
	}
	p.Role = models.ParseRole(string(p.Role))
	return p
}
