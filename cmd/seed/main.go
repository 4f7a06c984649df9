package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"ommiquiz/internal/config"
	"ommiquiz/internal/domain/services"
	"ommiquiz/internal/repository/docstore"
	"ommiquiz/internal/repository/flashcards"
	"ommiquiz/internal/repository/postgres"
	"ommiquiz/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed flashcard sets (for use with shell scripts)")
	clearData := flag.Bool("clear-data", false, "Clear all progress, session, and metadata rows (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database and flashcard store (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Exit early if clear-data mode (just clear and exit)
	if *clearData {
		log.Println("🧹 Clearing progress, session, and metadata rows...")
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	// Create the flashcard store and services
	store, err := docstore.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create document store: %v", err)
	}
	flashcardRepo := flashcards.NewRepository(store, logger)
	catalogService := service.NewCatalogService(store, cfg.CatalogFilename, logger)
	flashcardService := service.NewFlashcardService(flashcardRepo, catalogService, logger)

	// Seed flashcard sets
	log.Println("📝 Seeding example flashcard sets...")

	sets := seedSets()
	for i, set := range sets {
		// The service layer runs the full pipeline: validation, card-ID
		// synthesis, and catalog regeneration.
		result, err := flashcardService.Save(ctx, &services.SaveFlashcardRequest{
			ID:      set.id,
			Content: set.content,
		})
		if err != nil {
			log.Printf("❌ Failed to save flashcard set '%s': %v", set.id, err)
			continue
		}

		log.Printf("✅ Saved set %d/%d: %s (%s, %d cards)",
			i+1, len(sets), set.id, result.Filename, result.Set.CardCount())
	}

	// Leave a freshly generated catalog behind
	catalog, err := catalogService.Generate(ctx)
	if err != nil {
		log.Fatalf("Failed to generate catalog: %v", err)
	}
	log.Printf("📇 Catalog generated with %d sets", catalog.Total)

	log.Println("🎉 Seeding complete!")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// User profiles mirror the identity provider, so the primary key is
	// the provider subject string, not a generated UUID.
	createProfiles := `
		CREATE TABLE IF NOT EXISTS ` + tables.UserProfiles + ` (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			display_name TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ
		)
	`
	if _, err := pool.Exec(ctx, createProfiles); err != nil {
		return err
	}

	// Create flashcard progress table
	createProgress := `
		CREATE TABLE IF NOT EXISTS ` + tables.FlashcardProgress + ` (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			flashcard_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			box INTEGER NOT NULL CHECK (box IN (1, 2, 3)),
			last_reviewed TIMESTAMPTZ NOT NULL,
			review_count INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ,
			UNIQUE (user_id, flashcard_id, card_id)
		)
	`
	if _, err := pool.Exec(ctx, createProgress); err != nil {
		return err
	}

	// Create quiz sessions table
	createSessions := `
		CREATE TABLE IF NOT EXISTS ` + tables.QuizSessions + ` (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			flashcard_id TEXT NOT NULL,
			flashcard_title TEXT,
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL,
			cards_reviewed INTEGER NOT NULL,
			box1_count INTEGER NOT NULL DEFAULT 0,
			box2_count INTEGER NOT NULL DEFAULT 0,
			box3_count INTEGER NOT NULL DEFAULT 0,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			average_time_to_flip_seconds DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createSessions); err != nil {
		return err
	}

	// Create user flashcard metadata table
	createUserFlashcards := `
		CREATE TABLE IF NOT EXISTS ` + tables.UserFlashcards + ` (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			flashcard_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			visibility TEXT NOT NULL DEFAULT 'private' CHECK (visibility IN ('global', 'private')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUserFlashcards); err != nil {
		return err
	}

	// Create download logs table
	createDownloads := `
		CREATE TABLE IF NOT EXISTS ` + tables.DownloadLogs + ` (
			id SERIAL PRIMARY KEY,
			flashcard_id TEXT NOT NULL,
			user_id TEXT,
			remote_addr TEXT,
			user_agent TEXT,
			downloaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createDownloads); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `flashcard_progress_user_flashcard ON ` + tables.FlashcardProgress + `(user_id, flashcard_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `quiz_sessions_user ON ` + tables.QuizSessions + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `quiz_sessions_user_flashcard ON ` + tables.QuizSessions + `(user_id, flashcard_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `quiz_sessions_completed_at ON ` + tables.QuizSessions + `(completed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `user_flashcards_user ON ` + tables.UserFlashcards + `(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `download_logs_flashcard ON ` + tables.DownloadLogs + `(flashcard_id)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.DownloadLogs,
		tables.UserFlashcards,
		tables.QuizSessions,
		tables.FlashcardProgress,
		tables.UserProfiles,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}

// clearAllData deletes every row while keeping the schema in place
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.DownloadLogs,
		tables.UserFlashcards,
		tables.QuizSessions,
		tables.FlashcardProgress,
		tables.UserProfiles,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	return nil
}

type seedSet struct {
	id      string
	content string
}

// seedSets returns the example sets shipped with a fresh install. Card IDs
// are deliberately omitted from some cards so seeding also exercises the
// synthesis path.
func seedSets() []seedSet {
	return []seedSet{
		{
			id: "german_greetings_a1",
			content: `id: german_greetings_a1
author: Ommiquiz Team
title: German Greetings (A1)
description: Everyday greetings and polite phrases for absolute beginners.
createDate: 2025-01-15
language: de
level: A1
module: GER101
topics:
  - greetings
  - politeness
keywords:
  - german
  - beginner
flashcards:
  - id: ger001
    question: How do you say "Good morning" in German?
    type: single
    answer: Guten Morgen
  - id: ger002
    question: How do you say "Good evening" in German?
    type: single
    answer: Guten Abend
  - question: Which of these are ways to say goodbye?
    type: multiple
    answers:
      - Auf Wiedersehen
      - Tschüss
      - Bis später
  - question: How do you ask "How are you?" (formal)?
    type: single
    answer: Wie geht es Ihnen?
`,
		},
		{
			id: "capital_cities",
			content: `id: capital_cities
author: Ommiquiz Team
title: Capital Cities
description: World capitals for geography practice.
createDate: 2025-02-01
language: en
topics:
  - geography
  - capitals
keywords:
  - geography
  - cities
flashcards:
  - id: cap001
    question: What is the capital of France?
    type: single
    answer: Paris
  - id: cap002
    question: What is the capital of Japan?
    type: single
    answer: Tokyo
  - id: cap003
    question: What is the capital of Australia?
    type: single
    answer: Canberra
  - question: Which of these cities are national capitals?
    type: multiple
    answers:
      - Ottawa
      - Wellington
      - Nairobi
`,
		},
	}
}
