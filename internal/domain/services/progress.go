package services

import (
	"context"

	"ommiquiz/internal/domain/models"
)

// ProgressService persists and aggregates per-user learning state.
type ProgressService interface {
	// Save upserts card boxes and optionally records a session, atomically.
	// Cards with a box outside 1..3 are skipped with a log line rather
	// than failing the whole save.
	Save(ctx context.Context, userID, flashcardID string, req *models.SaveProgressRequest) error

	// Load returns card state plus the most recent sessions for one set.
	// Returns nil (no error) when the user has no progress for the set.
	Load(ctx context.Context, userID, flashcardID string) (*models.FlashcardProgress, error)

	// LoadAll returns progress for every set the user has touched.
	LoadAll(ctx context.Context, userID string) (map[string]*models.FlashcardProgress, error)

	// Delete resets card progress for one set. Session history is kept.
	Delete(ctx context.Context, userID, flashcardID string) error

	// Report aggregates the user's sessions over the trailing period.
	Report(ctx context.Context, userID, email, name string, days int) (*models.LearningReport, error)
}

// CreateUserFlashcardRequest creates a user-authored set. The ID is
// synthesized from the user ID and a slug of the declared id or title.
type CreateUserFlashcardRequest struct {
	UserID     string `json:"-"`
	Content    string `json:"content"`
	Visibility string `json:"visibility,omitempty"`
}

// UpdateUserFlashcardRequest updates a user-authored set in place.
type UpdateUserFlashcardRequest struct {
	UserID      string `json:"-"`
	FlashcardID string `json:"-"`
	Content     string `json:"content"`
}

// UserFlashcardInfo pairs the metadata row with the parsed header for
// listings.
type UserFlashcardInfo struct {
	Record models.UserFlashcard `json:"record"`
	Entry  models.CatalogEntry  `json:"entry"`
}

// UserFlashcardService owns user-authored sets: documents in the per-user
// store namespace, ownership/visibility metadata in the relational store.
type UserFlashcardService interface {
	// Create validates and persists a new user set, assigning it a
	// user_<prefix>_<slug> ID.
	Create(ctx context.Context, req *CreateUserFlashcardRequest) (*SaveFlashcardResult, error)

	// Get returns one of the caller's sets, or another user's set when it
	// is published globally.
	Get(ctx context.Context, callerID, flashcardID string) (*models.FlashcardSet, error)

	// List returns the caller's own sets.
	List(ctx context.Context, userID string) ([]UserFlashcardInfo, error)

	// ListGlobal returns every set published with global visibility,
	// for merging into the public listing.
	ListGlobal(ctx context.Context) ([]UserFlashcardInfo, error)

	// Update overwrites one of the caller's sets.
	Update(ctx context.Context, req *UpdateUserFlashcardRequest) (*SaveFlashcardResult, error)

	// SetVisibility flips a set between global and private.
	SetVisibility(ctx context.Context, userID, flashcardID, visibility string) error

	// Delete removes the document and its metadata row.
	Delete(ctx context.Context, userID, flashcardID string) error
}

// PDFRenderer turns structured data into printable documents.
type PDFRenderer interface {
	// SpeedQuiz renders a printable quiz sheet with up to maxCards cards
	// sampled from the set.
	SpeedQuiz(set *models.FlashcardSet, maxCards int) ([]byte, error)

	// LearningHistory renders the learning report.
	LearningHistory(report *models.LearningReport) ([]byte, error)
}
