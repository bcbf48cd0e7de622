package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestLiveness(t *testing.T) {
	rec, body := serve(t, New("test"), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", body["status"])
}

func TestStatus(t *testing.T) {
	rec, body := serve(t, New("staging"), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "staging", body["environment"])
	assert.Equal(t, Version, body["version"])
}

func TestReadiness(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("queue_store", up)
		h.RegisterDegradedCheck("audit_api", up)

		rec, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("degraded dependency keeps the service ready", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("queue_store", up)
		h.RegisterDegradedCheck("audit_api", down)

		rec, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "degraded", body["status"])
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "degraded: connection refused", checks["audit_api"])
	})

	t.Run("required dependency down", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("queue_store", down)
		h.RegisterDegradedCheck("audit_api", down)

		rec, body := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", body["status"])
	})
}
