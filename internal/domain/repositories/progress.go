package repositories

import (
	"context"

	"ommiquiz/internal/domain/models"
)

// ProgressRepository persists per-card box state.
type ProgressRepository interface {
	// UpsertCard inserts or updates one card's box state. On conflict the
	// box and last-reviewed time are replaced and the review count is
	// incremented.
	UpsertCard(ctx context.Context, userID, flashcardID, cardID string, progress models.CardProgress) error

	// GetCards returns the card->progress map for one flashcard set.
	GetCards(ctx context.Context, userID, flashcardID string) (map[string]models.CardProgress, error)

	// DeleteCards removes all card progress for one flashcard set.
	// Session history is intentionally left intact.
	DeleteCards(ctx context.Context, userID, flashcardID string) error

	// ListFlashcardIDs returns the distinct flashcard sets the user has
	// progress for.
	ListFlashcardIDs(ctx context.Context, userID string) ([]string, error)
}

// SessionRepository persists completed quiz sessions.
type SessionRepository interface {
	// Insert records one completed session.
	Insert(ctx context.Context, session *models.QuizSession, userID string) error

	// ListRecent returns the most recent sessions for one flashcard set,
	// newest first.
	ListRecent(ctx context.Context, userID, flashcardID string, limit int) ([]models.QuizSession, error)

	// ListSince returns all sessions for the user completed within the
	// given number of days, newest first.
	ListSince(ctx context.Context, userID string, days int) ([]models.QuizSession, error)
}
