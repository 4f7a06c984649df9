package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
	"ommiquiz/internal/domain/services"
	"ommiquiz/internal/httputil"
)

// ProgressHandler handles HTTP requests for quiz progress and learning
// reports. All routes run behind required auth. The user profile mirror is
// refreshed from the verified claims on every write and report request.
type ProgressHandler struct {
	progress services.ProgressService
	pdf      services.PDFRenderer
	profiles repositories.UserProfileRepository
	logger   *slog.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(
	progress services.ProgressService,
	pdf services.PDFRenderer,
	profiles repositories.UserProfileRepository,
	logger *slog.Logger,
) *ProgressHandler {
	return &ProgressHandler{
		progress: progress,
		pdf:      pdf,
		profiles: profiles,
		logger:   logger,
	}
}

// GetAll returns progress for every set the caller has touched
func (h *ProgressHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.progress.LoadAll(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, all)
}

// Get returns card state and recent sessions for one set. Callers with no
// progress for the set get a null body, not a 404.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("flashcard_id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	progress, err := h.progress.Load(r.Context(), httputil.GetUserID(r), flashcardID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, progress)
}

// Save upserts card boxes and optionally records a finished session
func (h *ProgressHandler) Save(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("flashcard_id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	var req models.SaveProgressRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.ensureProfile(r)

	if err := h.progress.Save(r.Context(), httputil.GetUserID(r), flashcardID, &req); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reset clears card progress for one set, keeping session history
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("flashcard_id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	if err := h.progress.Delete(r.Context(), httputil.GetUserID(r), flashcardID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Report aggregates the caller's sessions over the trailing period
func (h *ProgressHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}

	httputil.RespondJSON(w, http.StatusOK, report)
}

// ReportPDF renders the learning report as a printable document
func (h *ProgressHandler) ReportPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}

	pdf, err := h.pdf.LearningHistory(report)
	if err != nil {
		h.logger.Error("learning report render failed", "user_id", httputil.GetUserID(r), "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to generate PDF")
		return
	}

	filename := fmt.Sprintf("learning_report_%dd.pdf", report.ReportPeriodDays)
	httputil.RespondAttachment(w, "application/pdf", filename, pdf)
}

// buildReport parses the period, refreshes the profile mirror, and runs the
// aggregation. On failure it writes the error response and returns false.
func (h *ProgressHandler) buildReport(w http.ResponseWriter, r *http.Request) (*models.LearningReport, bool) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.RespondError(w, http.StatusBadRequest, "days must be a positive integer")
			return nil, false
		}
		days = parsed
	}

	h.ensureProfile(r)

	var email, name string
	if claims := httputil.GetClaims(r); claims != nil {
		email = claims.Email
		name = claims.DisplayName()
	}

	report, err := h.progress.Report(r.Context(), httputil.GetUserID(r), email, name, days)
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return report, true
}

// ensureProfile refreshes the local mirror of the caller's identity.
// Failures are logged and never block the request.
func (h *ProgressHandler) ensureProfile(r *http.Request) {
	claims := httputil.GetClaims(r)
	if claims == nil {
		return
	}

	profile := &models.UserProfile{
		ID:          claims.GetUserID(),
		Email:       claims.Email,
		DisplayName: claims.DisplayName(),
	}
	if err := h.profiles.Upsert(r.Context(), profile); err != nil {
		h.logger.Warn("profile upsert failed", "user_id", profile.ID, "error", err)
	}
}
