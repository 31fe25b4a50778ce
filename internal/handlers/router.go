package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/krishanki/PhonePixie/internal/middleware"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports whether one dependency is usable
type HealthCheck func(ctx context.Context) error

// Health serves GET /health. Any failing check turns the status to 503.
func Health(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]interface{}{
			"status": overall,
			"checks": results,
		})
	}
}

// NewRouter wires the chat endpoint behind the rate limiter, plus the
// health endpoint. Every route gets request ids, panic recovery and an
// access log line.
func NewRouter(chat http.Handler, limiter *middleware.FixedWindowLimiter, checks map[string]HealthCheck, texts Texts, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.AccessLog(logger),
		middleware.Recovery(logger, InternalError(texts)),
	)

	router.Handle("/api/chat", limiter.Middleware(RateLimited(texts))(chat)).Methods(http.MethodPost)
	router.HandleFunc("/health", Health(checks)).Methods(http.MethodGet)
	return router
}
