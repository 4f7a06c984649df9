package handler

import (
	"log/slog"
	"net/http"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/services"
	"ommiquiz/internal/httputil"
)

// CatalogHandler serves the merged set listing and the raw catalog YAML.
// The catalog is regenerated on every read, never served from a stored copy.
type CatalogHandler struct {
	catalog        services.CatalogService
	userFlashcards services.UserFlashcardService
	logger         *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	catalog services.CatalogService,
	userFlashcards services.UserFlashcardService,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		catalog:        catalog,
		userFlashcards: userFlashcards,
		logger:         logger,
	}
}

// List returns every visible set: the global catalog, all globally
// published user sets, and, for authenticated callers, their own private
// sets. A metadata store outage degrades the listing to the catalog alone
// rather than failing the request.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.catalog.Generate(r.Context())
	if err != nil {
		h.logger.Error("catalog generation failed", "error", err)
		handleError(w, err)
		return
	}

	entries := catalog.FlashcardSets
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		seen[entry.ID] = true
	}

	global, err := h.userFlashcards.ListGlobal(r.Context())
	if err != nil {
		h.logger.Warn("listing user sets failed", "error", err)
	}
	for _, info := range global {
		if !seen[info.Entry.ID] {
			entries = append(entries, info.Entry)
			seen[info.Entry.ID] = true
		}
	}

	if userID := httputil.GetUserID(r); userID != "" {
		own, err := h.userFlashcards.List(r.Context(), userID)
		if err != nil {
			h.logger.Warn("listing own sets failed", "user_id", userID, "error", err)
		}
		for _, info := range own {
			if !seen[info.Entry.ID] {
				entries = append(entries, info.Entry)
				seen[info.Entry.ID] = true
			}
		}
	}

	httputil.RespondJSON(w, http.StatusOK, models.Catalog{
		GeneratedAt:   catalog.GeneratedAt,
		Total:         len(entries),
		FlashcardSets: entries,
	})
}

// CatalogYAML regenerates the catalog and returns it in its serialized form
func (h *CatalogHandler) CatalogYAML(w http.ResponseWriter, r *http.Request) {
	content, err := h.catalog.GenerateYAML(r.Context())
	if err != nil {
		h.logger.Error("catalog generation failed", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondYAML(w, http.StatusOK, []byte(content))
}
