package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"miniminds/internal/compliance/models"
)

// AuditClient talks to the remote audit API.
type AuditClient struct {
	c *client
}

func NewAuditClient(cfg Config) *AuditClient {
	return &AuditClient{c: newClient("audit", cfg)}
}

type logResponse struct {
	AuditLogID string `json:"auditLogId"`
}

// Log persists one entry and returns the server-assigned id.
func (a *AuditClient) Log(ctx context.Context, entry models.AuditEntry) (string, error) {
	var out logResponse
	if err := a.c.do(ctx, http.MethodPost, "/log", nil, entry, &out); err != nil {
		return "", err
	}
	return out.AuditLogID, nil
}

type batchRequest struct {
	Logs []models.AuditEntry `json:"logs"`
}

type batchResponse struct {
	Processed int `json:"processed"`
}

// Batch sends entries in one request and returns how many were processed.
func (a *AuditClient) Batch(ctx context.Context, entries []models.AuditEntry) (int, error) {
	var out batchResponse
	if err := a.c.do(ctx, http.MethodPost, "/batch", nil, batchRequest{Logs: entries}, &out); err != nil {
		return 0, err
	}
	return out.Processed, nil
}

// Logs queries stored entries. Zero-valued filter fields are omitted.
func (a *AuditClient) Logs(ctx context.Context, filter models.AuditFilter) (models.AuditPage, error) {
	var out models.AuditPage
	if err := a.c.do(ctx, http.MethodGet, "/logs", filterQuery(filter), nil, &out); err != nil {
		return models.AuditPage{}, err
	}
	return out, nil
}

func filterQuery(f models.AuditFilter) url.Values {
	q := url.Values{}
	if f.StartDate != nil {
		q.Set("startDate", f.StartDate.UTC().Format(time.RFC3339))
	}
	if f.EndDate != nil {
		q.Set("endDate", f.EndDate.UTC().Format(time.RFC3339))
	}
	if f.UserID != "" {
		q.Set("userId", f.UserID)
	}
	if f.QueryCategory != "" {
		q.Set("queryCategory", string(f.QueryCategory))
	}
	if f.WasBlocked != nil {
		q.Set("wasBlocked", strconv.FormatBool(*f.WasBlocked))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(f.PageSize))
	}
	return q
}

// Stats returns aggregate statistics for period.
func (a *AuditClient) Stats(ctx context.Context, period models.StatsPeriod) (models.AuditStats, error) {
	var out models.AuditStats
	q := url.Values{"period": {string(period)}}
	if err := a.c.do(ctx, http.MethodGet, "/stats", q, nil, &out); err != nil {
		return models.AuditStats{}, err
	}
	return out, nil
}
