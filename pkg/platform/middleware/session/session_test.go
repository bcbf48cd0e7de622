package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"miniminds/pkg/requestcontext"
)

func run(header string) (ctxID, echoed string) {
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = requestcontext.SessionID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
	if header != "" {
		req.Header.Set(Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(Header)
}

func TestMiddleware(t *testing.T) {
	t.Run("keeps client session", func(t *testing.T) {
		id, echoed := run("tablet-7f3a")
		assert.Equal(t, "tablet-7f3a", id)
		assert.Equal(t, "tablet-7f3a", echoed)
	})

	t.Run("generates when absent", func(t *testing.T) {
		id, echoed := run("")
		assert.Len(t, id, 36)
		assert.Equal(t, id, echoed)
	})

	t.Run("replaces malformed", func(t *testing.T) {
		id, _ := run("bad id with spaces")
		assert.NotEqual(t, "bad id with spaces", id)
		assert.Len(t, id, 36)
	})
}
