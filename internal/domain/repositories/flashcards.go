package repositories

import (
	"context"

	"ommiquiz/internal/domain/models"
)

// FlashcardRepository adds flashcard semantics on top of the DocumentStore:
// two-phase ID resolution and per-user sub-namespaces.
type FlashcardRepository interface {
	// List enumerates the global namespace.
	List(ctx context.Context) ([]models.Document, error)

	// GetByID resolves a flashcard set by logical ID. Phase 1 probes the
	// store by filename stem; phase 2 falls back to a full scan comparing
	// each document's declared content id. The fallback is O(n) in the
	// collection size.
	GetByID(ctx context.Context, flashcardID string) (*models.Document, error)

	// Exists reports whether GetByID would succeed. Uses the same
	// two-phase resolution so existence and retrievability never diverge.
	Exists(ctx context.Context, flashcardID string) (bool, error)

	// Save writes to the global namespace.
	Save(ctx context.Context, filename, content string, overwrite bool) (*models.Document, error)

	// Delete removes by derived ID from the global namespace.
	Delete(ctx context.Context, flashcardID string) ([]string, error)

	// DeleteByFilename removes one global entry by exact name.
	DeleteByFilename(ctx context.Context, filename string) (bool, error)

	// Per-user namespace operations, scoped to users/<user_id>/.
	ListUserDocuments(ctx context.Context, userID string) ([]models.Document, error)
	GetUserDocument(ctx context.Context, userID, flashcardID string) (*models.Document, error)
	SaveUserDocument(ctx context.Context, userID, filename, content string, overwrite bool) (*models.Document, error)
	DeleteUserDocument(ctx context.Context, userID, flashcardID string) ([]string, error)
}
