package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ommiquiz/internal/auth"
	"ommiquiz/internal/config"
	"ommiquiz/internal/handler"
	"ommiquiz/internal/middleware"
	"ommiquiz/internal/repository/docstore"
	"ommiquiz/internal/repository/flashcards"
	"ommiquiz/internal/repository/postgres"
	"ommiquiz/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	logSettings := config.LoadLogFileSettings()
	if logSettings.Enabled {
		logFile, err := config.SetupLogFile(logSettings.Dir, logSettings.MaxFiles)
		if err != nil {
			log.Printf("warning: file logging disabled: %v", err)
		} else {
			defer logFile.Close()
			logOutput = io.MultiWriter(os.Stdout, logFile)
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"version", config.Version(),
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage_backend", cfg.StorageBackend,
	)

	// Create JWT verifier against the Auth0 tenant
	jwtVerifier, err := auth.NewJWTVerifier(cfg.Auth0JWKSURL, cfg.Auth0Issuer, cfg.Auth0Audience, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Login proxy client against the same tenant
	loginClient := auth.NewLoginClient(cfg.Auth0Domain, cfg.Auth0ClientID, cfg.Auth0ClientSecret, cfg.Auth0Audience)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Document store for flashcard YAML files
	store, err := docstore.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create document store: %v", err)
	}

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	flashcardRepo := flashcards.NewRepository(store, logger)
	progressRepo := postgres.NewProgressRepository(repoConfig)
	sessionRepo := postgres.NewSessionRepository(repoConfig)
	profileRepo := postgres.NewUserProfileRepository(repoConfig)
	userFlashcardRepo := postgres.NewUserFlashcardRepository(repoConfig)
	downloadRepo := postgres.NewDownloadLogRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	catalogService := service.NewCatalogService(store, cfg.CatalogFilename, logger)
	flashcardService := service.NewFlashcardService(flashcardRepo, catalogService, logger)
	userFlashcardService := service.NewUserFlashcardService(flashcardRepo, userFlashcardRepo, logger)
	progressService := service.NewProgressService(progressRepo, sessionRepo, txManager, logger)
	pdfRenderer := service.NewPDFRenderer(logger)

	// Rebuild the catalog so deployments pick up sets added out of band
	if _, err := catalogService.Generate(ctx); err != nil {
		logger.Warn("startup catalog generation failed", "error", err)
	}

	// Create handlers
	metaHandler := handler.NewMetaHandler()
	authHandler := handler.NewAuthHandler(loginClient, logger)
	catalogHandler := handler.NewCatalogHandler(catalogService, userFlashcardService, logger)
	flashcardHandler := handler.NewFlashcardHandler(flashcardService, userFlashcardService, pdfRenderer, downloadRepo, logger)
	userFlashcardHandler := handler.NewUserFlashcardHandler(userFlashcardService, logger)
	progressHandler := handler.NewProgressHandler(progressService, pdfRenderer, profileRepo, logger)

	logger.Info("services initialized")

	// Per-route auth wrappers
	requireAuth := middleware.Auth(jwtVerifier, logger)
	optionalAuth := middleware.OptionalAuth(jwtVerifier, logger)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Service endpoints
	mux.HandleFunc("GET /{$}", metaHandler.Root)
	mux.HandleFunc("GET /health", metaHandler.Health)
	mux.HandleFunc("GET /api/version", metaHandler.Version)

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Flashcard routes. The mux prefers literal segments, so upload and
	// validate never collide with the {id} routes.
	mux.Handle("GET /api/flashcards", optionalAuth(http.HandlerFunc(catalogHandler.List)))
	mux.HandleFunc("GET /api/catalog", catalogHandler.CatalogYAML)
	mux.Handle("POST /api/flashcards/upload", requireAuth(http.HandlerFunc(flashcardHandler.Upload)))
	mux.HandleFunc("POST /api/flashcards/validate", flashcardHandler.Validate)
	mux.Handle("GET /api/flashcards/{id}", optionalAuth(http.HandlerFunc(flashcardHandler.Get)))
	mux.Handle("PUT /api/flashcards/{id}", requireAuth(http.HandlerFunc(flashcardHandler.Save)))
	mux.Handle("DELETE /api/flashcards/{id}", requireAuth(http.HandlerFunc(flashcardHandler.Delete)))
	mux.Handle("GET /api/flashcards/{id}/download", optionalAuth(http.HandlerFunc(flashcardHandler.Download)))
	mux.Handle("GET /api/flashcards/{id}/pdf", optionalAuth(http.HandlerFunc(flashcardHandler.SpeedQuizPDF)))

	// User flashcard routes
	mux.Handle("GET /api/users/me/flashcards", requireAuth(http.HandlerFunc(userFlashcardHandler.List)))
	mux.Handle("POST /api/users/me/flashcards", requireAuth(http.HandlerFunc(userFlashcardHandler.Create)))
	mux.Handle("PUT /api/users/me/flashcards/{id}", requireAuth(http.HandlerFunc(userFlashcardHandler.Update)))
	mux.Handle("DELETE /api/users/me/flashcards/{id}", requireAuth(http.HandlerFunc(userFlashcardHandler.Delete)))
	mux.Handle("PUT /api/users/me/flashcards/{id}/visibility", requireAuth(http.HandlerFunc(userFlashcardHandler.SetVisibility)))

	// Progress routes
	mux.Handle("GET /api/users/me/progress", requireAuth(http.HandlerFunc(progressHandler.GetAll)))
	mux.Handle("GET /api/users/me/progress/{flashcard_id}", requireAuth(http.HandlerFunc(progressHandler.Get)))
	mux.Handle("PUT /api/users/me/progress/{flashcard_id}", requireAuth(http.HandlerFunc(progressHandler.Save)))
	mux.Handle("DELETE /api/users/me/progress/{flashcard_id}", requireAuth(http.HandlerFunc(progressHandler.Reset)))
	mux.Handle("GET /api/users/me/learning-report", requireAuth(http.HandlerFunc(progressHandler.Report)))
	mux.Handle("GET /api/users/me/learning-report/pdf", requireAuth(http.HandlerFunc(progressHandler.ReportPDF)))

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Trace → Routes (auth is per-route)
	h = middleware.Trace(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server, shutting down cleanly on SIGINT/SIGTERM
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logger.Error("shutdown did not drain cleanly", "error", err)
		}
	}

	logger.Info("server stopped")
}
