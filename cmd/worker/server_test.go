package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nflcache/ingestion/internal/cache"
	"nflcache/ingestion/internal/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthy(context.Context) map[string]string {
	return map[string]string{"database": "healthy", "redis": "disabled"}
}

func serve(t *testing.T, mux http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := serve(t, newStatusMux(healthy, nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	down := func(context.Context) map[string]string {
		return map[string]string{"database": "database health check failed: timeout", "redis": "healthy"}
	}
	rec = serve(t, newStatusMux(down, nil), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")
}

func TestStatusEndpoint(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		rec := serve(t, newStatusMux(healthy, nil), "/status")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("nothing recorded", func(t *testing.T) {
		miss := func(context.Context, any) error { return cache.ErrMiss }
		rec := serve(t, newStatusMux(healthy, miss), "/status")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("redis error", func(t *testing.T) {
		broken := func(context.Context, any) error { return errors.New("connection refused") }
		rec := serve(t, newStatusMux(healthy, broken), "/status")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("last report", func(t *testing.T) {
		stored, err := json.Marshal(&ingest.Report{
			Processed:   53,
			NewlyCached: 2,
			Teams: []ingest.TeamResult{
				{TeamID: "t1", Status: ingest.StatusFailed, Err: errors.New("roster fetch failed")},
			},
		})
		require.NoError(t, err)

		found := func(_ context.Context, out any) error {
			return json.Unmarshal(stored, out)
		}
		rec := serve(t, newStatusMux(healthy, found), "/status")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.EqualValues(t, 53, body["processed"])
		assert.Contains(t, rec.Body.String(), "roster fetch failed")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newStatusMux(healthy, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
