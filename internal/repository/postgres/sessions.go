package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

// PostgresSessionRepository implements the SessionRepository interface
type PostgresSessionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSessionRepository creates a new quiz session repository
func NewSessionRepository(config *RepositoryConfig) repositories.SessionRepository {
	return &PostgresSessionRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Insert records one completed session and fills in the row ID and the
// derived public session ID.
func (r *PostgresSessionRepository) Insert(ctx context.Context, session *models.QuizSession, userID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
			(user_id, flashcard_id, flashcard_title, started_at, completed_at,
			 cards_reviewed, box1_count, box2_count, box3_count, duration_seconds,
			 average_time_to_flip_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, r.tables.QuizSessions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		userID,
		session.FlashcardID,
		session.FlashcardTitle,
		session.StartedAt,
		session.CompletedAt,
		session.CardsReviewed,
		session.BoxDistribution.Box1,
		session.BoxDistribution.Box2,
		session.BoxDistribution.Box3,
		session.DurationSeconds,
		session.AverageTimeToFlipSeconds,
	).Scan(&session.ID)
	if err != nil {
		r.logger.Error("failed to insert quiz session",
			"user_id", userID,
			"flashcard_id", session.FlashcardID,
			"error", err)
		return fmt.Errorf("insert quiz session: %w", err)
	}

	session.SessionID = fmt.Sprintf("sess_%d", session.ID)
	return nil
}

// ListRecent returns the most recent sessions for one flashcard set,
// newest first.
func (r *PostgresSessionRepository) ListRecent(ctx context.Context, userID, flashcardID string, limit int) ([]models.QuizSession, error) {
	query := fmt.Sprintf(`
		SELECT id, flashcard_id, flashcard_title, started_at, completed_at,
		       cards_reviewed, box1_count, box2_count, box3_count,
		       duration_seconds, average_time_to_flip_seconds
		FROM %s
		WHERE user_id = $1 AND flashcard_id = $2
		ORDER BY completed_at DESC
		LIMIT $3
	`, r.tables.QuizSessions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, flashcardID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// ListSince returns all of the user's sessions completed within the given
// number of days, newest first.
func (r *PostgresSessionRepository) ListSince(ctx context.Context, userID string, days int) ([]models.QuizSession, error) {
	query := fmt.Sprintf(`
		SELECT id, flashcard_id, flashcard_title, started_at, completed_at,
		       cards_reviewed, box1_count, box2_count, box3_count,
		       duration_seconds, average_time_to_flip_seconds
		FROM %s
		WHERE user_id = $1 AND completed_at >= NOW() - make_interval(days => $2)
		ORDER BY completed_at DESC
	`, r.tables.QuizSessions)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID, days)
	if err != nil {
		return nil, fmt.Errorf("query sessions since: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]models.QuizSession, error) {
	var sessions []models.QuizSession
	for rows.Next() {
		var s models.QuizSession
		var title *string
		var duration *int
		err := rows.Scan(
			&s.ID,
			&s.FlashcardID,
			&title,
			&s.StartedAt,
			&s.CompletedAt,
			&s.CardsReviewed,
			&s.BoxDistribution.Box1,
			&s.BoxDistribution.Box2,
			&s.BoxDistribution.Box3,
			&duration,
			&s.AverageTimeToFlipSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quiz session: %w", err)
		}
		if title != nil {
			s.FlashcardTitle = *title
		}
		if duration != nil {
			s.DurationSeconds = *duration
		}
		s.SessionID = fmt.Sprintf("sess_%d", s.ID)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz sessions: %w", err)
	}
	return sessions, nil
}
