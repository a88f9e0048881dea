// Package server exposes the monitor's operational HTTP surface: health,
// Prometheus metrics, and the one-shot "check everything now" trigger used
// by external cron invocations.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Config struct {
	Addr         string `mapstructure:"addr"`
	TriggerToken string `mapstructure:"trigger_token"`
}

// NewRouter builds the admin router. trigger runs one interval-ignoring
// pass over all active endpoints and reports how many were checked.
func NewRouter(
	log *zap.Logger,
	health func(ctx context.Context) error,
	trigger func(ctx context.Context) (int, error),
	triggerToken string,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 500*time.Millisecond)
		defer cancel()
		if err := health(ctx); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/v1/checks/run", func(w http.ResponseWriter, req *http.Request) {
		if !authorized(req, triggerToken) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		checked, err := trigger(req.Context())
		if err != nil {
			log.Error("trigger run failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "check run failed"})
			return
		}
		log.Info("trigger run complete", zap.Int("checked", checked))
		writeJSON(w, http.StatusOK, map[string]int{"checked": checked})
	})

	return r
}

func authorized(req *http.Request, token string) bool {
	if token == "" {
		return false
	}
	got := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
