// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy(context.Context) error { return nil }

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	h := NewHandler(Config{})

	rec, body := serve(t, h, "/livez")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	h.SetShutdown(true)
	rec, body = serve(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "shutting_down", body["status"])
}

func TestReadinessAllHealthy(t *testing.T) {
	h := NewHandler(Config{
		Checks: []Check{
			{Name: "database", Checker: pingFunc(healthy)},
			{Name: "redis", Checker: pingFunc(healthy)},
		},
		DBStats: func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, Idle: 3} },
	})

	rec, body := serve(t, h, "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	checks, ok := body["checks"].([]any)
	require.True(t, ok)
	assert.Len(t, checks, 2)

	pools, ok := body["pools"].(map[string]any)
	require.True(t, ok)
	db, ok := pools["database"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(25), db["max_open_connections"])
}

func TestReadinessDegradedWhenDependencyFails(t *testing.T) {
	h := NewHandler(Config{
		Checks: []Check{
			{Name: "database", Checker: pingFunc(healthy)},
			{Name: "redis", Checker: pingFunc(func(context.Context) error {
				return errors.New("dial tcp: connection refused")
			})},
			{Name: "queue"},
		},
	})

	rec, body := serve(t, h, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])

	checks := body["checks"].([]any)
	byName := map[string]map[string]any{}
	for _, c := range checks {
		m := c.(map[string]any)
		byName[m["name"].(string)] = m
	}
	assert.Equal(t, true, byName["database"]["healthy"])
	assert.Equal(t, "ping failed", byName["redis"]["message"])
	assert.Equal(t, "queue checker not configured", byName["queue"]["message"])
	assert.Nil(t, body["pools"])
}

func TestReadinessNotReady(t *testing.T) {
	h := NewHandler(Config{})
	h.SetReady(false)

	rec, body := serve(t, h, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body["status"])
}
