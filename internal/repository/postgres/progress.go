package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

// PostgresProgressRepository implements the ProgressRepository interface
type PostgresProgressRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(config *RepositoryConfig) repositories.ProgressRepository {
	return &PostgresProgressRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// UpsertCard inserts or updates one card's box state. On conflict the box
// and last-reviewed time are replaced and the stored review count is
// incremented rather than taken from the payload.
func (r *PostgresProgressRepository) UpsertCard(ctx context.Context, userID, flashcardID, cardID string, progress models.CardProgress) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, flashcard_id, card_id, box, last_reviewed, review_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id, flashcard_id, card_id)
		DO UPDATE SET
			box = EXCLUDED.box,
			last_reviewed = EXCLUDED.last_reviewed,
			review_count = %s.review_count + 1,
			updated_at = NOW()
	`, r.tables.FlashcardProgress, r.tables.FlashcardProgress)

	reviewCount := progress.ReviewCount
	if reviewCount < 1 {
		reviewCount = 1
	}

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, userID, flashcardID, cardID, progress.Box, progress.LastReviewed, reviewCount)
	if err != nil {
		r.logger.Error("failed to upsert card progress",
			"user_id", userID,
			"flashcard_id", flashcardID,
			"card_id", cardID,
			"error", err)
		return fmt.Errorf("upsert card progress: %w", err)
	}
	return nil
}

// GetCards returns the card->progress map for one flashcard set.
func (r *PostgresProgressRepository) GetCards(ctx context.Context, userID, flashcardID string) (map[string]models.CardProgress, error) {
	query := fmt.Sprintf(`
		SELECT card_id, box, last_reviewed, review_count
		FROM %s
		WHERE user_id = $1 AND flashcard_id = $2
	`, r.tables.FlashcardProgress)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, flashcardID)
	if err != nil {
		return nil, fmt.Errorf("query card progress: %w", err)
	}
	defer rows.Close()

	cards := make(map[string]models.CardProgress)
	for rows.Next() {
		var cardID string
		var p models.CardProgress
		if err := rows.Scan(&cardID, &p.Box, &p.LastReviewed, &p.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan card progress: %w", err)
		}
		cards[cardID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card progress: %w", err)
	}
	return cards, nil
}

// DeleteCards removes all card progress for one flashcard set. Session
// history rows are kept on purpose so past quiz runs stay reportable.
func (r *PostgresProgressRepository) DeleteCards(ctx context.Context, userID, flashcardID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE user_id = $1 AND flashcard_id = $2
	`, r.tables.FlashcardProgress)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, userID, flashcardID); err != nil {
		r.logger.Error("failed to delete card progress",
			"user_id", userID,
			"flashcard_id", flashcardID,
			"error", err)
		return fmt.Errorf("delete card progress: %w", err)
	}
	return nil
}

// ListFlashcardIDs returns the distinct flashcard sets the user has any
// progress for.
func (r *PostgresProgressRepository) ListFlashcardIDs(ctx context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT flashcard_id
		FROM %s
		WHERE user_id = $1
	`, r.tables.FlashcardProgress)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query flashcard ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan flashcard id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashcard ids: %w", err)
	}
	return ids, nil
}
