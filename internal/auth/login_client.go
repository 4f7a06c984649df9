package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
)

// Auth0LoginClient exchanges user credentials for tokens via the tenant's
// OAuth token endpoint using the resource-owner password grant. This backs
// the login proxy endpoint; regular requests arrive with tokens the
// frontend obtained on its own.
type Auth0LoginClient struct {
	tokenURL     string
	clientID     string
	clientSecret string
	audience     string
	httpClient   *http.Client
}

// NewLoginClient creates a token client for the given Auth0 tenant domain.
func NewLoginClient(tenantDomain, clientID, clientSecret, audience string) *Auth0LoginClient {
	return &Auth0LoginClient{
		tokenURL:     fmt.Sprintf("https://%s/oauth/token", tenantDomain),
		clientID:     clientID,
		clientSecret: clientSecret,
		audience:     audience,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// tokenErrorResponse is the provider's OAuth error body.
type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Login performs the password-grant exchange. Any rejection by the
// provider (wrong password, blocked user, misconfigured grant) maps to an
// unauthorized error; only transport failures surface as server errors.
func (c *Auth0LoginClient) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {email},
		"password":   {password},
		"client_id":  {c.clientID},
		"scope":      {"openid profile email offline_access"},
	}
	if c.clientSecret != "" {
		form.Set("client_secret", c.clientSecret)
	}
	if c.audience != "" {
		form.Set("audience", c.audience)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach token endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var tokenErr tokenErrorResponse
		message := "invalid credentials"
		if json.Unmarshal(body, &tokenErr) == nil && tokenErr.ErrorDescription != "" {
			message = tokenErr.ErrorDescription
		}
		return nil, &domain.UnauthorizedError{Message: message}
	}

	var tokens models.TokenPair
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &tokens, nil
}
