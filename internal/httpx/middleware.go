package httpx

import (
	"net/http"
	"time"

	"accounts/internal/observability/middleware"
)

// LogRequests logs method, path, status and latency once the handler returns.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := middleware.NewStatusRecorder(w)
		next.ServeHTTP(sr, r)
		middleware.Logger(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sr.Status,
			"duration", time.Since(start).String(),
		)
	})
}
