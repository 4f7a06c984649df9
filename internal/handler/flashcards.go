package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"ommiquiz/internal/config"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
	"ommiquiz/internal/domain/services"
	"ommiquiz/internal/httputil"
)

// FlashcardHandler handles HTTP requests for flashcard set CRUD, validation,
// download, and printable PDFs. Requests for user-authored sets (IDs with
// the user_ prefix) are routed to the user flashcard service so ownership
// and visibility rules apply.
type FlashcardHandler struct {
	flashcards     services.FlashcardService
	userFlashcards services.UserFlashcardService
	pdf            services.PDFRenderer
	downloads      repositories.DownloadLogRepository
	logger         *slog.Logger
}

// NewFlashcardHandler creates a new flashcard handler
func NewFlashcardHandler(
	flashcards services.FlashcardService,
	userFlashcards services.UserFlashcardService,
	pdf services.PDFRenderer,
	downloads repositories.DownloadLogRepository,
	logger *slog.Logger,
) *FlashcardHandler {
	return &FlashcardHandler{
		flashcards:     flashcards,
		userFlashcards: userFlashcards,
		pdf:            pdf,
		downloads:      downloads,
		logger:         logger,
	}
}

// isUserSet reports whether an ID names a user-authored set.
func isUserSet(flashcardID string) bool {
	return strings.HasPrefix(flashcardID, "user_")
}

// resolveSet loads a set by ID through the right service for its namespace.
func (h *FlashcardHandler) resolveSet(r *http.Request, flashcardID string) (*models.FlashcardSet, error) {
	if isUserSet(flashcardID) {
		return h.userFlashcards.Get(r.Context(), httputil.GetUserID(r), flashcardID)
	}
	return h.flashcards.GetSet(r.Context(), flashcardID)
}

// Get returns one parsed flashcard set
func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	set, err := h.resolveSet(r, flashcardID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, set)
}

// Save creates, updates, or renames a global set
func (h *FlashcardHandler) Save(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	var req services.SaveFlashcardRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ID = flashcardID

	result, err := h.flashcards.Save(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	httputil.RespondJSON(w, status, result)
}

// Delete removes a global set and reports the removed filenames
func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	removed, err := h.flashcards.Delete(r.Context(), flashcardID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("flashcard set %q deleted", flashcardID),
		"deleted": removed,
	})
}

// Upload ingests a YAML file from a multipart form. The file field is
// "file"; the optional "overwrite" field replaces an existing set with the
// same declared ID.
func (h *FlashcardHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.flashcards.Upload(r.Context(), &services.UploadFlashcardRequest{
		Filename:  header.Filename,
		Content:   string(content),
		Overwrite: r.FormValue("overwrite") == "true",
	})
	if err != nil {
		handleError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	httputil.RespondJSON(w, status, result)
}

// validateRequest is the JSON form of the validate payload.
type validateRequest struct {
	Content string `json:"content"`
}

// Validate checks YAML content without persisting anything. The content
// arrives either as a raw YAML body or wrapped in a JSON object, keyed by
// the request content type.
func (h *FlashcardHandler) Validate(w http.ResponseWriter, r *http.Request) {
	content, err := readValidateContent(w, r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := h.flashcards.Validate(r.Context(), content)
	httputil.RespondJSON(w, http.StatusOK, report)
}

// readValidateContent extracts YAML content from either payload form.
func readValidateContent(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req validateRequest
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			return "", err
		}
		return req.Content, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	return string(body), nil
}

// Download serves a set as a YAML attachment and records the download
func (h *FlashcardHandler) Download(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	var filename, content string
	if isUserSet(flashcardID) {
		set, err := h.userFlashcards.Get(r.Context(), httputil.GetUserID(r), flashcardID)
		if err != nil {
			handleError(w, err)
			return
		}
		serialized, err := set.Serialize()
		if err != nil {
			handleError(w, err)
			return
		}
		filename, content = flashcardID+".yml", serialized
	} else {
		doc, err := h.flashcards.GetDocument(r.Context(), flashcardID)
		if err != nil {
			handleError(w, err)
			return
		}
		filename, content = doc.Filename, doc.Content
	}

	h.recordDownload(r, flashcardID)
	httputil.RespondAttachment(w, "application/x-yaml", filename, []byte(content))
}

// recordDownload inserts a download log row. Failures are logged and never
// block the response.
func (h *FlashcardHandler) recordDownload(r *http.Request, flashcardID string) {
	entry := &models.DownloadLog{
		FlashcardID:  flashcardID,
		RemoteAddr:   r.RemoteAddr,
		UserAgent:    r.UserAgent(),
		DownloadedAt: time.Now().UTC(),
	}
	if userID := httputil.GetUserID(r); userID != "" {
		entry.UserID = &userID
	}

	if err := h.downloads.Insert(r.Context(), entry); err != nil {
		h.logger.Warn("failed to record download",
			"flashcard_id", flashcardID,
			"error", err,
		)
	}
}

// SpeedQuizPDF renders a printable quiz sheet with a random sample of cards
func (h *FlashcardHandler) SpeedQuizPDF(w http.ResponseWriter, r *http.Request) {
	flashcardID := r.PathValue("id")
	if flashcardID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "flashcard ID is required")
		return
	}

	set, err := h.resolveSet(r, flashcardID)
	if err != nil {
		handleError(w, err)
		return
	}

	pdf, err := h.pdf.SpeedQuiz(set, config.SpeedQuizCardCount)
	if err != nil {
		h.logger.Error("speed quiz render failed", "flashcard_id", flashcardID, "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to generate PDF")
		return
	}

	httputil.RespondAttachment(w, "application/pdf", flashcardID+"_speed_quiz.pdf", pdf)
}
