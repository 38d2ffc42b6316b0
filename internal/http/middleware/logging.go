package middleware

import (
	"net/http"
	"time"

	"github.com/hongminglow/mediavault/internal/logging"
)

// Logging writes one access log entry per request.
func Logging(logger logging.Logger, next http.Handler) http.Handler {
	logger = logger.With("module", "http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Error(r.Context(), "http request", args...)
		case rec.status >= http.StatusBadRequest:
			logger.Warn(r.Context(), "http request", args...)
		default:
			logger.Info(r.Context(), "http request", args...)
		}
	})
}
