package handler

import (
	"log/slog"
	"net/http"

	"ommiquiz/internal/domain/services"
	"ommiquiz/internal/httputil"
)

// UserFlashcardHandler handles HTTP requests for user-authored sets under
// /api/users/me/flashcards. Every route runs behind required auth; the
// caller is always the owner side of the ownership checks.
type UserFlashcardHandler struct {
	service services.UserFlashcardService
	logger  *slog.Logger
}

// NewUserFlashcardHandler creates a new user flashcard handler
func NewUserFlashcardHandler(service services.UserFlashcardService, logger *slog.Logger) *UserFlashcardHandler {
	return &UserFlashcardHandler{
		service: service,
		logger:  logger,
	}
}

// List returns the caller's own sets
func (h *UserFlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"flashcards": infos,
		"total":      len(infos),
	})
}

// Create validates and persists a new user set
func (h *UserFlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserFlashcardRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = httputil.GetUserID(r)

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// Update overwrites one of the caller's sets
func (h *UserFlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	var req services.UpdateUserFlashcardRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.UserID = httputil.GetUserID(r)
	req.FlashcardID = flashcardID

	result, err := h.service.Update(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// visibilityRequest is the payload for visibility changes.
type visibilityRequest struct {
	Visibility string `json:"visibility"`
}

// SetVisibility flips one of the caller's sets between global and private
func (h *UserFlashcardHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	var req visibilityRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SetVisibility(r.Context(), httputil.GetUserID(r), flashcardID, req.Visibility); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"flashcard_id": flashcardID,
		"visibility":   req.Visibility,
	})
}

// Delete removes one of the caller's sets and its metadata
func (h *UserFlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), httputil.GetUserID(r), flashcardID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
