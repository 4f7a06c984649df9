package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"ommiquiz/internal/auth"
	"ommiquiz/internal/httputil"
)

// Auth middleware verifies the bearer token on every request and stores the
// caller's identity in the request context. Requests without a valid token
// are rejected with 401.
func Auth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Warn("rejected request token",
					"path", r.URL.Path,
					"method", r.Method,
					"error", err,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithClaims(r, claims)
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth middleware verifies the bearer token when one is present but
// lets anonymous requests through. Handlers behind it see an empty user ID
// for anonymous callers. Used on public endpoints whose responses widen for
// authenticated users, such as reading a private set you own.
func OptionalAuth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				// A presented token must verify; bad tokens are rejected,
				// never downgraded to anonymous.
				logger.Warn("rejected request token",
					"path", r.URL.Path,
					"method", r.Method,
					"error", err,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithClaims(r, claims)
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
