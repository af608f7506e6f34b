package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nflcache/ingestion/internal/app"
	"nflcache/ingestion/internal/cache"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type (
	healthFunc func(ctx context.Context) map[string]string
	reportFunc func(ctx context.Context, out any) error
)

// statusServer exposes metrics, health and the last rebuild report
type statusServer struct {
	http *http.Server
}

func newStatusServer(port int, health healthFunc, report reportFunc) *statusServer {
	return &statusServer{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newStatusMux(health, report),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func newStatusMux(health healthFunc, report reportFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := health(r.Context())
		if !app.Healthy(status) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "checks": status})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "checks": status})
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if report == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "report cache disabled"})
			return
		}

		var last json.RawMessage
		err := report(r.Context(), &last)
		switch {
		case errors.Is(err, cache.ErrMiss):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no rebuild recorded"})
		case err != nil:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, last)
		}
	})

	return mux
}

func (s *statusServer) listen() {
	log.Info().Str("addr", s.http.Addr).Msg("Starting metrics server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}

func (s *statusServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Metrics server shutdown failed")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
