package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ommiquiz/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	UserProfiles      string
	FlashcardProgress string
	QuizSessions      string
	DownloadLogs      string
	UserFlashcards    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		UserProfiles:      fmt.Sprintf("%suser_profiles", prefix),
		FlashcardProgress: fmt.Sprintf("%sflashcard_progress", prefix),
		QuizSessions:      fmt.Sprintf("%squiz_sessions", prefix),
		DownloadLogs:      fmt.Sprintf("%sdownload_logs", prefix),
		UserFlashcards:    fmt.Sprintf("%suser_flashcards", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool with PgBouncer
// compatibility. Transaction poolers (port 6543 on Supabase) reject
// prepared statements, so when that port is detected and the caller has
// not overridden default_query_exec_mode in the connection string, the
// pool switches to QueryExecModeCacheDescribe: extended protocol, but
// caching statement descriptions instead of prepared statements.
//
// Dynamic table prefixes via fmt.Sprintf are safe with prepared
// statements because the SQL string is interpolated before being sent;
// each environment gets its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
