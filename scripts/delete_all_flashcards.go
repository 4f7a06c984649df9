package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"ommiquiz/internal/config"
	"ommiquiz/internal/repository/docstore"

	"github.com/joho/godotenv"
)

// Destructive cleanup for the global flashcard namespace, including the
// generated catalog. User namespaces (users/<id>/) are left untouched.
// Run without --yes for a dry run.
func main() {
	yes := flag.Bool("yes", false, "Actually delete; without this flag the script only lists what would be removed")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: never wipe the production store
	if cfg.Environment == "prod" {
		log.Fatalf("🚫 BLOCKED: Cannot delete all flashcards in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	store, err := docstore.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create document store: %v", err)
	}

	ctx := context.Background()
	docs, err := store.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list documents: %v", err)
	}

	if len(docs) == 0 {
		fmt.Printf("Store is already empty (backend: %s)\n", cfg.StorageBackend)
		return
	}

	if !*yes {
		fmt.Printf("Would delete %d documents (backend: %s):\n", len(docs), cfg.StorageBackend)
		for _, doc := range docs {
			fmt.Printf("  - %s\n", doc.Filename)
		}
		fmt.Println()
		fmt.Println("Re-run with --yes to delete them.")
		return
	}

	deleted := 0
	for _, doc := range docs {
		removed, err := store.DeleteByFilename(ctx, doc.Filename)
		if err != nil {
			log.Printf("❌ Failed to delete %s: %v", doc.Filename, err)
			continue
		}
		if removed {
			fmt.Printf("  ✓ Deleted %s\n", doc.Filename)
			deleted++
		}
	}

	fmt.Printf("Deleted %d of %d documents (backend: %s)\n", deleted, len(docs), cfg.StorageBackend)
}
