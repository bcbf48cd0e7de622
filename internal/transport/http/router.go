// Package httptransport assembles the HTTP surface of the gateway.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"miniminds/internal/compliance/handler"
	"miniminds/internal/compliance/models"
	"miniminds/internal/platform/health"
	"miniminds/pkg/platform/httputil"
	"miniminds/pkg/platform/middleware/auth"
	"miniminds/pkg/platform/middleware/metadata"
	"miniminds/pkg/platform/middleware/request"
	"miniminds/pkg/platform/middleware/session"
)

const defaultRequestTimeout = 30 * time.Second

// Deps are the collaborators of the router. Metrics and Observer may be nil.
type Deps struct {
	Gateway        *handler.Handler
	Health         *health.Handler
	Identity       auth.TokenParser
	Metadata       *metadata.Middleware
	Metrics        http.Handler
	Observer       request.Observer
	RequestTimeout time.Duration
}

// NewRouter wires every endpoint with the shared middleware stack.
func NewRouter(d Deps, logger *slog.Logger) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	if d.Metadata != nil {
		r.Use(d.Metadata.Handler)
	}
	r.Use(session.Middleware)
	r.Use(auth.Identify(d.Identity, logger))
	r.Use(request.Logger(logger, d.Observer))
	r.Use(request.ContentTypeJSON)
	r.Use(request.BodyLimit(httputil.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Error: "method_not_allowed"})
	})

	// Streams are long-lived and http.TimeoutHandler cannot flush.
	d.Gateway.RegisterStream(r)

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(timeout))

		d.Health.Register(r)
		if d.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", d.Metrics)
		}

		d.Gateway.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin, logger))
			d.Gateway.RegisterAdmin(r)
		})
	})

	return r
}
