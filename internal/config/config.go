package config

import (
	"os"
	"strings"
)

// Storage backend selectors
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string
	DatabaseURL string

	// Flashcard storage backend
	StorageBackend  string // "local" or "s3"
	FlashcardsDir   string // local backend root directory
	S3Bucket        string
	S3Prefix        string // key prefix, normalized to a trailing slash
	S3EndpointURL   string // set for S3-compatible non-AWS providers
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	CatalogFilename string

	// Auth0 tenant
	Auth0Domain       string
	Auth0Audience     string
	Auth0Issuer       string // Constructed from Auth0Domain unless overridden
	Auth0JWKSURL      string // Constructed from Auth0Domain
	Auth0ClientID     string
	Auth0ClientSecret string

	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	auth0Domain := getEnv("AUTH0_DOMAIN", "")

	// Construct issuer and JWKS URL from the tenant domain
	issuer := getEnv("AUTH0_ISSUER", "")
	if issuer == "" && auth0Domain != "" {
		issuer = "https://" + auth0Domain + "/"
	}
	jwksURL := getEnv("AUTH0_JWKS_URL", "")
	if jwksURL == "" && auth0Domain != "" {
		jwksURL = "https://" + auth0Domain + "/.well-known/jwks.json"
	}

	return &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: tablePrefix,
		DatabaseURL: getEnv("DATABASE_URL", ""),

		StorageBackend:  getEnv("FLASHCARDS_STORAGE", StorageLocal),
		FlashcardsDir:   getEnv("FLASHCARDS_DIR", "flashcards"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        normalizePrefix(getEnv("S3_PREFIX", "flashcards/")),
		S3EndpointURL:   getEnv("S3_ENDPOINT_URL", ""),
		S3Region:        getEnv("AWS_REGION", "us-east-1"),
		S3AccessKey:     getEnv("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CatalogFilename: getEnv("CATALOG_FILENAME", "flashcards_catalog.yml"),

		Auth0Domain:       auth0Domain,
		Auth0Audience:     getEnv("AUTH0_AUDIENCE", ""),
		Auth0Issuer:       issuer,
		Auth0JWKSURL:      jwksURL,
		Auth0ClientID:     getEnv("AUTH0_CLIENT_ID", ""),
		Auth0ClientSecret: getEnv("AUTH0_CLIENT_SECRET", ""),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// normalizePrefix guarantees a single trailing slash on non-empty prefixes so
// key joins never produce double slashes or missing separators.
func normalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
