// Package requestcontext carries per-request values (request id, client
// metadata, caller identity, session) across layers without coupling
// services to the HTTP transport.
package requestcontext

import (
	"context"

	"miniminds/internal/compliance/models"
)

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyClientIP
	keyUserAgent
	keyPrincipal
	keySessionID
)

// WithRequestID stores the correlation id for the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestID returns the correlation id, or "" when unset.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRequestID).(string)
	return v
}

// WithClientMetadata stores the caller's IP and raw User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, ip)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

// ClientIP returns the caller IP recorded by the metadata middleware.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}

// UserAgent returns the raw User-Agent header recorded by the metadata middleware.
func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(keyUserAgent).(string)
	return v
}

// WithPrincipal stores the resolved caller identity.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, keyPrincipal, p)
}

// Principal returns the caller identity. Absent identity resolves to the
// anonymous parent principal.
func Principal(ctx context.Context) models.Principal {
	if p, ok := ctx.Value(keyPrincipal).(models.Principal); ok {
		return p
	}
	return models.AnonymousPrincipal()
}

// WithSessionID stores the client session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, keySessionID, sessionID)
}

// SessionID returns the client session id, or "" when unset.
func SessionID(ctx context.Context) string {
	v, _ := ctx.Value(keySessionID).(string)
	return v
}
