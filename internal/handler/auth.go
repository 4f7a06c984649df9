package handler

import (
	"log/slog"
	"net/http"

	"ommiquiz/internal/auth"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/httputil"
)

// AuthHandler proxies credential logins to the identity provider so the
// frontend never talks to the tenant directly.
type AuthHandler struct {
	tokens auth.TokenClient
	logger *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokens auth.TokenClient, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		logger: logger,
	}
}

// Login exchanges email/password credentials for a token pair
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	tokens, err := h.tokens.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Credential rejections come back as 401; transport failures as 500.
		// The email is logged, the password never is.
		h.logger.Warn("login failed", "email", req.Email, "error", err)
		handleError(w, err)
		return
	}

	h.logger.Info("login succeeded", "email", req.Email)
	httputil.RespondJSON(w, http.StatusOK, tokens)
}
