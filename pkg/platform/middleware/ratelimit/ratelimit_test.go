package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"miniminds/internal/compliance/models"
	"miniminds/pkg/requestcontext"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type counter struct{ n map[string]int }

func (c *counter) IncrementRateLimited(endpoint string) { c.n[endpoint]++ }

func TestAllowPerSession(t *testing.T) {
	c := &clock{t: time.Unix(1_772_443_800, 0)}
	l := New(1, 2, WithClock(c.now))

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "sessions do not share a bucket")

	c.advance(time.Second)
	assert.True(t, l.Allow("a"), "one token refilled")
	assert.False(t, l.Allow("a"))
}

func TestIdleSessionsAreSwept(t *testing.T) {
	c := &clock{t: time.Unix(1_772_443_800, 0)}
	l := New(1, 1, WithClock(c.now), WithIdleTTL(time.Minute))

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	c.advance(time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}

func TestMiddleware(t *testing.T) {
	obs := &counter{n: map[string]int{}}
	l := New(0.001, 1, WithObserver(obs))
	h := l.Middleware("/v1/query")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(p models.Principal, ip, session string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
		ctx := requestcontext.WithPrincipal(req.Context(), p)
		ctx = requestcontext.WithClientMetadata(ctx, ip, "")
		ctx = requestcontext.WithSessionID(ctx, session)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		return rec.Code
	}
	anon := models.AnonymousPrincipal()
	parent := models.Principal{UserID: "parent-7", Role: models.RoleParent}

	assert.Equal(t, http.StatusOK, send(anon, "192.0.2.1", "s1"))
	assert.Equal(t, http.StatusTooManyRequests, send(anon, "192.0.2.1", "s2"), "a fresh session id does not buy a fresh bucket")
	assert.Equal(t, http.StatusOK, send(anon, "192.0.2.2", "s3"), "anonymous callers are keyed by IP")

	assert.Equal(t, http.StatusOK, send(parent, "192.0.2.1", "s4"))
	assert.Equal(t, http.StatusTooManyRequests, send(parent, "198.51.100.7", "s5"), "users are keyed by id across IPs")
	assert.Equal(t, 2, obs.n["/v1/query"])
}
