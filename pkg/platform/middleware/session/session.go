// Package session assigns every request a client session id carried in the
// X-Session-ID header.
package session

import (
	"net/http"

	"github.com/google/uuid"

	"miniminds/pkg/platform/middleware/request"
	"miniminds/pkg/requestcontext"
)

const Header = "X-Session-ID"

// Middleware reuses a well-formed client session id or generates one. The id
// is echoed on every response so clients can keep it for later requests.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !request.ValidID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithSessionID(r.Context(), id)))
	})
}
