// Package metadata records the caller's IP and User-Agent in the request
// context. Forwarding headers are honoured only from trusted proxies.
package metadata

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"miniminds/pkg/requestcontext"
)

const (
	maxForwardedLength = 500
	maxUserAgentLength = 512
)

// Middleware is safe for concurrent use.
type Middleware struct {
	trusted []netip.Prefix
}

// New accepts trusted proxies in CIDR notation. With none, forwarding headers
// are ignored.
func New(trustedProxies ...string) (*Middleware, error) {
	m := &Middleware{}
	for _, cidr := range trustedProxies {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		m.trusted = append(m.trusted, prefix)
	}
	return m, nil
}

// Handler stores the client metadata and passes the request on.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		if len(ua) > maxUserAgentLength {
			ua = ua[:maxUserAgentLength]
		}
		ctx := requestcontext.WithClientMetadata(r.Context(), m.ClientIP(r), ua)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the originating client address, or "unknown".
func (m *Middleware) ClientIP(r *http.Request) string {
	remote, ok := parseAddr(r.RemoteAddr)
	if !ok {
		return "unknown"
	}
	if !m.isTrusted(remote) {
		return remote.String()
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(xff) <= maxForwardedLength {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
		return remote.String()
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" && len(xri) <= maxForwardedLength {
		if addr, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return addr.String()
		}
	}
	return remote.String()
}

func (m *Middleware) isTrusted(addr netip.Addr) bool {
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseAddr accepts "host:port" or a bare address.
func parseAddr(remoteAddr string) (netip.Addr, bool) {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
