// Package handler exposes the compliance gateway over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"miniminds/internal/compliance/auditlog"
	"miniminds/internal/compliance/gateway"
	"miniminds/internal/compliance/models"
	dErrors "miniminds/pkg/domain-errors"
	"miniminds/pkg/platform/httputil"
	"miniminds/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Gateway runs queries and escalations.
type Gateway interface {
	Query(ctx context.Context, req gateway.QueryRequest) (gateway.Result, error)
	Escalate(ctx context.Context, req gateway.EscalateRequest) (models.EscalationResult, error)
}

// HistoryStore serves conversation history per owner and session.
type HistoryStore interface {
	History(owner, sessionID string) []models.Message
	Subscribe(owner, sessionID string) (<-chan models.Message, func())
}

// AuditAdmin is the audit review surface for administrators.
type AuditAdmin interface {
	Logs(ctx context.Context, filter models.AuditFilter) (models.AuditPage, error)
	Stats(ctx context.Context, period models.StatsPeriod) (models.AuditStats, error)
	Flush(ctx context.Context) (auditlog.FlushResult, error)
	Pending() int
	Online() bool
}

const defaultHeartbeat = 30 * time.Second

// Handler serves the gateway endpoints.
type Handler struct {
	gateway   Gateway
	history   HistoryStore
	audit     AuditAdmin
	logger    *slog.Logger
	queryMW   []func(http.Handler) http.Handler
	heartbeat time.Duration
}

type Option func(*Handler)

// WithQueryMiddleware wraps only POST /v1/query, e.g. with a rate limiter.
func WithQueryMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.queryMW = append(h.queryMW, mw...)
	}
}

// WithHeartbeat sets the keep-alive interval of the history stream.
func WithHeartbeat(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.heartbeat = d
		}
	}
}

// New creates a Handler.
func New(gw Gateway, history HistoryStore, audit AuditAdmin, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		gateway:   gw,
		history:   history,
		audit:     audit,
		logger:    logger,
		heartbeat: defaultHeartbeat,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the request/response routes.
func (h *Handler) Register(r chi.Router) {
	r.With(h.queryMW...).Post("/v1/query", h.handleQuery)
	r.Post("/v1/escalations", h.handleEscalate)
	r.Get("/v1/history", h.handleHistory)
}

// RegisterStream registers the long-lived history stream. It must not sit
// behind a request timeout.
func (h *Handler) RegisterStream(r chi.Router) {
	r.Get("/v1/history/stream", h.handleHistoryStream)
}

// RegisterAdmin registers the audit review routes. Callers are expected to
// guard r with an admin role check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/v1/audit/logs", h.handleAuditLogs)
	r.Get("/v1/audit/stats", h.handleAuditStats)
	r.Get("/v1/audit/queue", h.handleAuditQueue)
	r.Post("/v1/audit/flush", h.handleAuditFlush)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[QueryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.gateway.Query(ctx, gateway.QueryRequest{
		Query:     req.Query,
		Language:  resolveLanguage(req.Language, r.Header.Get("Accept-Language")),
		Principal: requestcontext.Principal(ctx),
		SessionID: requestcontext.SessionID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "query rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EscalateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.gateway.Escalate(ctx, gateway.EscalateRequest{
		OriginalQuery:     req.OriginalQuery,
		Reason:            req.Reason,
		Priority:          models.Priority(req.Priority),
		ContactPreference: models.ContactPreference(req.ContactPreference),
		Language:          resolveLanguage(req.Language, r.Header.Get("Accept-Language")),
		Principal:         requestcontext.Principal(ctx),
		SessionID:         requestcontext.SessionID(ctx),
		UserAgent:         requestcontext.UserAgent(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "escalation rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, res)
}

// owner is the history scope of the calling principal.
func owner(ctx context.Context) string {
	return requestcontext.Principal(ctx).Owner(requestcontext.ClientIP(ctx))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := requestcontext.SessionID(ctx)
	msgs := h.history.History(owner(ctx), sessionID)
	if msgs == nil {
		msgs = []models.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{SessionID: sessionID, Messages: msgs})
}

// handleHistoryStream pushes each new turn of the caller's session as a
// server-sent "message" event until the client disconnects or the
// subscription is closed.
func (h *Handler) handleHistoryStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	sessionID := requestcontext.SessionID(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.ErrorContext(ctx, "response writer does not support streaming",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "streaming unsupported"))
		return
	}

	msgs, cancel := h.history.Subscribe(owner(ctx), sessionID)
	defer cancel()

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-msgs:
			if !open {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to encode history event",
					"request_id", requestID,
					"error", err,
				)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseAuditFilter(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.audit.Logs(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query audit logs",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	period, ok := models.ParseStatsPeriod(r.URL.Query().Get("period"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "period must be day, week or month"))
		return
	}

	stats, err := h.audit.Stats(ctx, period)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query audit stats",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAuditQueue(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, QueueResponse{
		Pending: h.audit.Pending(),
		Online:  h.audit.Online(),
	})
}

// handleAuditFlush triggers a flush. A failed flush is reported in the body;
// the queue is left as it was.
func (h *Handler) handleAuditFlush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	res, err := h.audit.Flush(ctx)
	body := FlushResponse{
		Flushed:   err == nil,
		Sent:      res.Sent,
		Processed: res.Processed,
		Remaining: res.Remaining,
	}
	if err != nil {
		h.logger.WarnContext(ctx, "manual audit flush failed",
			"request_id", requestID,
			"error", err,
		)
		body.Error = httputil.DomainCodeToHTTPCode(httputil.SentinelCode(err))
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}
