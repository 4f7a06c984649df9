package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

// PostgresDownloadLogRepository implements the DownloadLogRepository interface
type PostgresDownloadLogRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDownloadLogRepository creates a new download log repository
func NewDownloadLogRepository(config *RepositoryConfig) repositories.DownloadLogRepository {
	return &PostgresDownloadLogRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Insert appends one download record.
func (r *PostgresDownloadLogRepository) Insert(ctx context.Context, log *models.DownloadLog) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (flashcard_id, user_id, remote_addr, user_agent, downloaded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.tables.DownloadLogs)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		log.FlashcardID,
		log.UserID,
		log.RemoteAddr,
		log.UserAgent,
		log.DownloadedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("insert download log: %w", err)
	}
	return nil
}

// CountByFlashcard returns the number of recorded downloads for a set.
func (r *PostgresDownloadLogRepository) CountByFlashcard(ctx context.Context, flashcardID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE flashcard_id = $1
	`, r.tables.DownloadLogs)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, flashcardID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count downloads: %w", err)
	}
	return count, nil
}
