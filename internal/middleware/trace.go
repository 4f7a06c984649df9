package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"ommiquiz/internal/httputil"
)

// Trace middleware assigns every request an ID and echoes it in the
// X-Request-ID response header. An ID supplied by an upstream proxy is
// reused so traces stay joined across hops. Applied early in the chain so
// all subsequent handlers see the ID in their context.
func Trace(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set("X-Request-ID", requestID)
			ctx := httputil.WithRequestID(r.Context(), requestID)

			logger.Debug("request started",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
