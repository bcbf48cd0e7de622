// Package auth resolves the caller's identity from a bearer token and guards
// role-restricted routes.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"miniminds/internal/compliance/models"
	dErrors "miniminds/pkg/domain-errors"
	"miniminds/pkg/platform/httputil"
	"miniminds/pkg/requestcontext"
)

// TokenParser validates an identity token.
type TokenParser interface {
	Parse(token string) (models.Principal, error)
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Identify stores the caller's principal in the context. Missing or invalid
// tokens resolve to the anonymous parent principal; an invalid token is
// logged but does not fail the request.
func Identify(parser TokenParser, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal := models.AnonymousPrincipal()
			if token := BearerToken(r); token != "" {
				p, err := parser.Parse(token)
				if err != nil {
					logger.WarnContext(ctx, "identity token rejected, continuing as anonymous",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
				} else {
					principal = p
				}
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}

// RequireRole rejects callers whose principal lacks role: anonymous callers
// get 401, authenticated ones 403.
func RequireRole(role models.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p := requestcontext.Principal(ctx)
			if p.Role == role {
				next.ServeHTTP(w, r)
				return
			}
			logger.WarnContext(ctx, "role check failed",
				"required_role", role,
				"user_role", p.Role,
				"request_id", requestcontext.RequestID(ctx),
			)
			if p.UserID == models.AnonymousUserID {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, string(role)+" role required"))
		})
	}
}
