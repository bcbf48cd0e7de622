// Package remote holds the HTTP clients for the gateway's collaborators: the
// AI responder, the audit API, and the escalation API. Failures are
// classified into sentinel errors so callers can treat every remote alike.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"miniminds/internal/sentinel"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

// Error describes a failed remote call. It wraps one of the sentinel errors.
type Error struct {
	Service string
	Op      string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type client struct {
	service string
	baseURL string
	apiKey  string
	doer    HTTPDoer
	timeout time.Duration
}

func newClient(service string, cfg Config) *client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{
		service: service,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		doer:    doer,
		timeout: cfg.Timeout,
	}
}

func (c *client) fail(op string, status int, err error) error {
	return &Error{Service: c.service, Op: op, Status: status, Err: err}
}

// do sends body (when non-nil) as JSON and decodes a 2xx JSON response into out.
func (c *client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path
	if c.baseURL == "" {
		return c.fail(op, 0, fmt.Errorf("no base url configured: %w", sentinel.ErrUnavailable))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return c.fail(op, 0, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return c.fail(op, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return c.fail(op, 0, fmt.Errorf("%w: %v", sentinel.ErrTimeout, err))
		}
		return c.fail(op, 0, fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return c.fail(op, resp.StatusCode, fmt.Errorf("%w: read response: %v", sentinel.ErrBadResponse, err))
	}

	if err := classifyStatus(resp.StatusCode); err != nil {
		return c.fail(op, resp.StatusCode, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return c.fail(op, resp.StatusCode, fmt.Errorf("%w: decode response: %v", sentinel.ErrBadResponse, err))
	}
	return nil
}

func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return sentinel.ErrNotFound
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return sentinel.ErrTimeout
	case status == http.StatusTooManyRequests, status >= 500:
		return sentinel.ErrUnavailable
	default:
		return sentinel.ErrRejected
	}
}
