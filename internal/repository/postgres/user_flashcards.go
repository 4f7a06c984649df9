package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

// PostgresUserFlashcardRepository implements the UserFlashcardRepository interface
type PostgresUserFlashcardRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserFlashcardRepository creates a new user flashcard metadata repository
func NewUserFlashcardRepository(config *RepositoryConfig) repositories.UserFlashcardRepository {
	return &PostgresUserFlashcardRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create records a new user-authored set.
func (r *PostgresUserFlashcardRepository) Create(ctx context.Context, record *models.UserFlashcard) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, flashcard_id, title, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, r.tables.UserFlashcards)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		record.UserID,
		record.FlashcardID,
		record.Title,
		record.Visibility,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("user flashcard %q: %w", record.FlashcardID, domain.ErrAlreadyExists)
		}
		r.logger.Error("failed to create user flashcard record",
			"user_id", record.UserID,
			"flashcard_id", record.FlashcardID,
			"error", err)
		return fmt.Errorf("create user flashcard record: %w", err)
	}
	return nil
}

// GetByFlashcardID fetches the metadata row for a set.
func (r *PostgresUserFlashcardRepository) GetByFlashcardID(ctx context.Context, flashcardID string) (*models.UserFlashcard, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, flashcard_id, title, visibility, created_at, updated_at
		FROM %s
		WHERE flashcard_id = $1
	`, r.tables.UserFlashcards)

	var record models.UserFlashcard
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, flashcardID).Scan(
		&record.ID,
		&record.UserID,
		&record.FlashcardID,
		&record.Title,
		&record.Visibility,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user flashcard %q: %w", flashcardID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user flashcard record: %w", err)
	}
	return &record, nil
}

// ListByUser returns all sets owned by a user, newest first.
func (r *PostgresUserFlashcardRepository) ListByUser(ctx context.Context, userID string) ([]models.UserFlashcard, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, flashcard_id, title, visibility, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.UserFlashcards)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query user flashcards: %w", err)
	}
	defer rows.Close()

	return scanUserFlashcards(rows)
}

// ListGlobal returns all sets published with global visibility, newest
// first.
func (r *PostgresUserFlashcardRepository) ListGlobal(ctx context.Context) ([]models.UserFlashcard, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, flashcard_id, title, visibility, created_at, updated_at
		FROM %s
		WHERE visibility = $1
		ORDER BY created_at DESC
	`, r.tables.UserFlashcards)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, models.VisibilityGlobal)
	if err != nil {
		return nil, fmt.Errorf("query global user flashcards: %w", err)
	}
	defer rows.Close()

	return scanUserFlashcards(rows)
}

// UpdateVisibility flips a set between global and private.
func (r *PostgresUserFlashcardRepository) UpdateVisibility(ctx context.Context, flashcardID, visibility string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET visibility = $2, updated_at = NOW()
		WHERE flashcard_id = $1
	`, r.tables.UserFlashcards)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, flashcardID, visibility)
	if err != nil {
		return fmt.Errorf("update user flashcard visibility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user flashcard %q: %w", flashcardID, domain.ErrNotFound)
	}
	return nil
}

// UpdateTitle keeps the metadata title in sync with the document content.
func (r *PostgresUserFlashcardRepository) UpdateTitle(ctx context.Context, flashcardID, title string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, updated_at = NOW()
		WHERE flashcard_id = $1
	`, r.tables.UserFlashcards)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, flashcardID, title)
	if err != nil {
		return fmt.Errorf("update user flashcard title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user flashcard %q: %w", flashcardID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the metadata row.
func (r *PostgresUserFlashcardRepository) Delete(ctx context.Context, flashcardID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE flashcard_id = $1
	`, r.tables.UserFlashcards)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, flashcardID); err != nil {
		return fmt.Errorf("delete user flashcard record: %w", err)
	}
	return nil
}

func scanUserFlashcards(rows pgx.Rows) ([]models.UserFlashcard, error) {
	var records []models.UserFlashcard
	for rows.Next() {
		var record models.UserFlashcard
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.FlashcardID,
			&record.Title,
			&record.Visibility,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user flashcard record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user flashcard records: %w", err)
	}
	return records, nil
}
