package repositories

import (
	"context"

	"ommiquiz/internal/domain/models"
)

// UserFlashcardRepository persists ownership/visibility metadata for
// user-authored flashcard sets. The documents themselves live in the
// per-user store namespace.
type UserFlashcardRepository interface {
	// Create records a new user-authored set.
	Create(ctx context.Context, record *models.UserFlashcard) error

	// GetByFlashcardID fetches the metadata row for a set.
	GetByFlashcardID(ctx context.Context, flashcardID string) (*models.UserFlashcard, error)

	// ListByUser returns all sets owned by a user.
	ListByUser(ctx context.Context, userID string) ([]models.UserFlashcard, error)

	// ListGlobal returns all sets any user has published with global
	// visibility.
	ListGlobal(ctx context.Context) ([]models.UserFlashcard, error)

	// UpdateVisibility flips a set between global and private.
	UpdateVisibility(ctx context.Context, flashcardID, visibility string) error

	// UpdateTitle keeps the metadata title in sync with the document.
	UpdateTitle(ctx context.Context, flashcardID, title string) error

	// Delete removes the metadata row.
	Delete(ctx context.Context, flashcardID string) error
}

// UserProfileRepository mirrors identity-provider users locally.
type UserProfileRepository interface {
	// Upsert creates the profile on first touch and refreshes email and
	// display name on subsequent ones.
	Upsert(ctx context.Context, profile *models.UserProfile) error

	// GetByID fetches one profile.
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
}

// DownloadLogRepository records flashcard downloads.
type DownloadLogRepository interface {
	// Insert appends one download record.
	Insert(ctx context.Context, log *models.DownloadLog) error

	// CountByFlashcard returns the number of recorded downloads for a set.
	CountByFlashcard(ctx context.Context, flashcardID string) (int, error)
}
