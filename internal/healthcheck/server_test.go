package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func get(t *testing.T, s *Server, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealth(t *testing.T) {
	s := NewServer("0", zaptest.NewLogger(t))

	code, resp := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "UP", resp.Status)
}

func TestReady(t *testing.T) {
	s := NewServer("0", zaptest.NewLogger(t))
	s.RegisterCheck("database", pingFunc(func(context.Context) error { return nil }))

	code, resp := get(t, s, "/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "READY", resp.Status)
	assert.Equal(t, "ok", resp.Details["database"])

	s.RegisterCheck("database", pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	code, resp = get(t, s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "NOT_READY", resp.Status)
	assert.Equal(t, "connection refused", resp.Details["database"])
}
