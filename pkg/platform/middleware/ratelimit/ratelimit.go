// Package ratelimit throttles requests per caller with token buckets.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	dErrors "miniminds/pkg/domain-errors"
	"miniminds/pkg/platform/httputil"
	"miniminds/pkg/requestcontext"
)

const defaultIdleTTL = 30 * time.Minute

// Observer is told about rejected requests. It may be nil.
type Observer interface {
	IncrementRateLimited(endpoint string)
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. Buckets idle for longer than the
// idle TTL are dropped on the next sweep.
type Limiter struct {
	mu        sync.Mutex
	perSecond rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	sessions  map[string]*entry
	now       func() time.Time
	observer  Observer
}

type Option func(*Limiter)

func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idleTTL = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(l *Limiter) {
		l.observer = o
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func New(perSecond float64, burst int, opts ...Option) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		idleTTL:   defaultIdleTTL,
		sessions:  make(map[string]*entry),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastSweep = l.now()
	return l
}

// Allow reports whether key may proceed now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		for k, e := range l.sessions {
			if now.Sub(e.lastSeen) >= l.idleTTL {
				delete(l.sessions, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.sessions[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.perSecond, l.burst)}
		l.sessions[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}

// Middleware rejects over-limit requests with 429. Requests are keyed by the
// authenticated user, or by client IP for anonymous callers. The client
// session header is never part of the key.
func (l *Limiter) Middleware(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := requestcontext.Principal(ctx).Owner(requestcontext.ClientIP(ctx))
			if !l.Allow(key) {
				if l.observer != nil {
					l.observer.IncrementRateLimited(endpoint)
				}
				w.Header().Set("Retry-After", "1")
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, slow down"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
