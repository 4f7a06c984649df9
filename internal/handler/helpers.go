package handler

import (
	"errors"
	"net/http"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		conflictErr   *domain.ConflictError
		httpErr       domain.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, "flashcard validation failed", map[string]interface{}{
			"errors":   validationErr.Errors,
			"warnings": validationErr.Warnings,
		})
	case errors.As(err, &conflictErr):
		extras := map[string]interface{}{}
		if conflictErr.ResourceID != "" {
			extras["flashcard_id"] = conflictErr.ResourceID
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), extras)
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())

	// Wrapped sentinels without a typed error in the chain
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrMalformedContent),
		errors.Is(err, domain.ErrIDMismatch):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
