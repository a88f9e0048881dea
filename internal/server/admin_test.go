package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(healthErr error, trigger func(ctx context.Context) (int, error), token string) http.Handler {
	return NewRouter(
		zap.NewNop(),
		func(ctx context.Context) error { return healthErr },
		trigger,
		token,
	)
}

func TestHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		r := newTestRouter(nil, nil, "")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("unhealthy", func(t *testing.T) {
		r := newTestRouter(errors.New("db gone"), nil, "")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(nil, nil, "")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestTrigger_Authorization(t *testing.T) {
	trigger := func(ctx context.Context) (int, error) { return 3, nil }

	t.Run("no token header", func(t *testing.T) {
		r := newTestRouter(nil, trigger, "s3cret")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/checks/run", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		r := newTestRouter(nil, trigger, "s3cret")
		req := httptest.NewRequest(http.MethodPost, "/v1/checks/run", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty configured token rejects everything", func(t *testing.T) {
		r := newTestRouter(nil, trigger, "")
		req := httptest.NewRequest(http.MethodPost, "/v1/checks/run", nil)
		req.Header.Set("Authorization", "Bearer ")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		r := newTestRouter(nil, trigger, "s3cret")
		req := httptest.NewRequest(http.MethodPost, "/v1/checks/run", nil)
		req.Header.Set("Authorization", "Bearer s3cret")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]int
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 3, body["checked"])
	})
}

func TestTrigger_RunError(t *testing.T) {
	trigger := func(ctx context.Context) (int, error) { return 0, errors.New("list endpoints: db gone") }
	r := newTestRouter(nil, trigger, "s3cret")

	req := httptest.NewRequest(http.MethodPost, "/v1/checks/run", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
