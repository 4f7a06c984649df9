package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

// PostgresUserProfileRepository implements the UserProfileRepository interface
type PostgresUserProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserProfileRepository creates a new user profile repository
func NewUserProfileRepository(config *RepositoryConfig) repositories.UserProfileRepository {
	return &PostgresUserProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert creates the profile on first authenticated touch and refreshes
// email and display name afterwards.
func (r *PostgresUserProfileRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, r.tables.UserProfiles)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, profile.ID, profile.Email, profile.DisplayName).
		Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to upsert user profile", "user_id", profile.ID, "error", err)
		return fmt.Errorf("upsert user profile: %w", err)
	}
	return nil
}

// GetByID fetches one profile.
func (r *PostgresUserProfileRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT id, email, display_name, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.UserProfiles)

	var profile models.UserProfile
	var displayName *string
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&displayName,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user profile %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	if displayName != nil {
		profile.DisplayName = *displayName
	}
	return &profile, nil
}
