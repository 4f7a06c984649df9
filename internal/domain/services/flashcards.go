package services

import (
	"context"

	"ommiquiz/internal/domain/models"
)

// SaveFlashcardRequest carries one create/update/rename of a global set.
// ID comes from the URL path, never the request body. PreviousID is set
// only for an explicit rename and must name the set being replaced.
type SaveFlashcardRequest struct {
	ID         string `json:"-"`
	Content    string `json:"content"`
	PreviousID string `json:"previous_id,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// UploadFlashcardRequest carries one uploaded YAML file. The target
// filename is always derived from the declared content id plus the upload
// extension.
type UploadFlashcardRequest struct {
	Filename  string `json:"-"`
	Content   string `json:"-"`
	Overwrite bool   `json:"-"`
}

// SaveFlashcardResult reports the outcome of a write: the augmented set as
// persisted, where it landed, whether it was a create or an update, and any
// non-fatal validation warnings.
type SaveFlashcardResult struct {
	Set      *models.FlashcardSet `json:"flashcard"`
	Filename string               `json:"filename"`
	Created  bool                 `json:"created"`
	Warnings []string             `json:"warnings,omitempty"`
}

// FlashcardService owns the global-namespace write pipeline: ID format
// checks, content parsing, card-ID synthesis, structural validation,
// ID/filename reconciliation, and catalog regeneration after mutations.
type FlashcardService interface {
	// GetSet resolves a set by logical ID (two-phase) and returns it parsed.
	GetSet(ctx context.Context, flashcardID string) (*models.FlashcardSet, error)

	// GetDocument resolves a set by logical ID and returns the raw document.
	GetDocument(ctx context.Context, flashcardID string) (*models.Document, error)

	// Save runs the full reconciliation pipeline for a create, update, or
	// rename.
	Save(ctx context.Context, req *SaveFlashcardRequest) (*SaveFlashcardResult, error)

	// Upload ingests an uploaded YAML file as a new or overwritten set.
	Upload(ctx context.Context, req *UploadFlashcardRequest) (*SaveFlashcardResult, error)

	// Delete removes a set and reports the removed filenames.
	Delete(ctx context.Context, flashcardID string) ([]string, error)

	// Validate runs parsing and structural validation without persisting.
	Validate(ctx context.Context, content string) *models.ValidationReport
}

// CatalogService derives the flattened metadata index from the global
// document collection.
type CatalogService interface {
	// Generate rebuilds the catalog from the full collection and persists
	// it under the configured filename. Idempotent; always a full replace.
	Generate(ctx context.Context) (*models.Catalog, error)

	// GenerateYAML rebuilds the catalog and returns its serialized form.
	GenerateYAML(ctx context.Context) (string, error)
}
