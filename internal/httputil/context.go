package httputil

import (
	"context"
	"net/http"

	"ommiquiz/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey    contextKey = "userID"
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "requestID"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithClaims adds verified token claims to the request context
func WithClaims(r *http.Request, claims *models.Auth0Claims) *http.Request {
	ctx := context.WithValue(r.Context(), claimsKey, claims)
	return r.WithContext(ctx)
}

// GetClaims retrieves verified token claims from context, returns nil
// for unauthenticated requests
func GetClaims(r *http.Request) *models.Auth0Claims {
	claims, _ := r.Context().Value(claimsKey).(*models.Auth0Claims)
	return claims
}

// WithRequestID stores the request ID on a context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context, returns empty string if not found
func GetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
