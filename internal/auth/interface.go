package auth

import (
	"context"

	"ommiquiz/internal/domain/models"
)

// JWTVerifier defines the interface for JWT token verification.
// This abstraction allows for different JWT verification implementations
// while keeping the middleware agnostic to the verification details.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.Auth0Claims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	// Should be called when the verifier is no longer needed.
	Close() error
}

// TokenClient exchanges user credentials for tokens at the identity
// provider. Used by the login proxy endpoint only; regular requests carry
// tokens obtained by the frontend directly.
type TokenClient interface {
	// Login performs a password-grant exchange and returns the provider's
	// token response.
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
}
