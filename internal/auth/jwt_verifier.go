package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
)

// Auth0JWTVerifier implements JWTVerifier using JWKS from the Auth0 tenant.
type Auth0JWTVerifier struct {
	jwks     keyfunc.Keyfunc
	issuer   string
	audience string
	logger   *slog.Logger
}

// NewJWTVerifier creates a JWT verifier that fetches public keys from the
// tenant's JWKS endpoint. The JWKS keys are cached and automatically
// refreshed based on HTTP cache headers.
func NewJWTVerifier(jwksURL, issuer, audience string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx := context.Background()
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized",
		"jwks_url", jwksURL,
		"issuer", issuer,
		"audience", audience)

	return &Auth0JWTVerifier{
		jwks:     jwks,
		issuer:   issuer,
		audience: audience,
		logger:   logger,
	}, nil
}

// VerifyToken validates a JWT token and extracts the Auth0 claims.
// Returns domain.ErrUnauthorized for any invalid, expired, or mis-issued
// token; the reason is logged, never surfaced to the caller.
func (v *Auth0JWTVerifier) VerifyToken(tokenString string) (*models.Auth0Claims, error) {
	opts := []jwt.ParserOption{
		// Restricting the accepted algorithms prevents confusion attacks
		// (e.g. a token re-signed with HS256 using the public key).
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.Auth0Claims{}, v.jwks.Keyfunc, opts...)
	if err != nil {
		v.logger.Warn("token verification failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		v.logger.Warn("token invalid after parsing")
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Auth0Claims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	// The subject is the user identity everything downstream keys on.
	if claims.Subject == "" {
		v.logger.Warn("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close releases resources held by the JWT verifier.
// In keyfunc v3, the library manages its own resources based on HTTP cache
// headers, so this is a no-op for graceful shutdown compatibility.
func (v *Auth0JWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
