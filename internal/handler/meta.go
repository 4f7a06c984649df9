package handler

import (
	"net/http"

	"ommiquiz/internal/config"
	"ommiquiz/internal/httputil"
)

// MetaHandler serves the unauthenticated service endpoints: welcome,
// health, and version.
type MetaHandler struct{}

// NewMetaHandler creates a new meta handler
func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Root returns the welcome payload
func (h *MetaHandler) Root(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to Ommiquiz API",
	})
}

// Health returns the liveness payload
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Version returns the running application version
func (h *MetaHandler) Version(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"version": config.Version(),
	})
}
