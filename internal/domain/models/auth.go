package models

import "github.com/golang-jwt/jwt/v5"

// Auth0Claims represents the JWT claims structure issued by the Auth0 tenant.
// See: https://auth0.com/docs/secure/tokens/json-web-tokens
type Auth0Claims struct {
	jwt.RegisteredClaims          // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string   `json:"email,omitempty"`
	Name                 string   `json:"name,omitempty"`
	Nickname             string   `json:"nickname,omitempty"`
	Permissions          []string `json:"permissions,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *Auth0Claims) GetUserID() string {
	return c.Subject
}

// DisplayName returns the best available human-readable name for the user.
func (c *Auth0Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Nickname
}

// LoginRequest is the password-grant login payload proxied to the identity
// provider.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is the identity provider's token response passed through to the
// client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}
