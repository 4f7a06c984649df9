package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
	"ommiquiz/internal/domain/services"
)

// CatalogService rebuilds the flattened set index from the global document
// collection. The catalog is purely derived state: every mutation of the
// collection triggers a full rebuild, and reads rebuild too, so a stale
// entry can never outlive the document it points at.
type CatalogService struct {
	store           repositories.ScopableStore
	catalogFilename string
	logger          *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store repositories.ScopableStore, catalogFilename string, logger *slog.Logger) services.CatalogService {
	return &CatalogService{
		store:           store,
		catalogFilename: catalogFilename,
		logger:          logger,
	}
}

// Generate rebuilds the catalog from the full collection and persists it
// under the configured filename.
func (s *CatalogService) Generate(ctx context.Context) (*models.Catalog, error) {
	entries, err := s.collectMetadata(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &models.Catalog{
		GeneratedAt:   time.Now().UTC(),
		Total:         len(entries),
		FlashcardSets: entries,
	}

	out, err := yaml.Marshal(catalog)
	if err != nil {
		return nil, fmt.Errorf("serialize catalog: %w", err)
	}

	location, err := s.store.SaveCatalog(ctx, string(out), s.catalogFilename)
	if err != nil {
		return nil, fmt.Errorf("persist catalog: %w", err)
	}

	s.logger.Info("catalog regenerated",
		"total", catalog.Total,
		"location", location)
	return catalog, nil
}

// GenerateYAML rebuilds the catalog and returns the serialized document.
func (s *CatalogService) GenerateYAML(ctx context.Context) (string, error) {
	catalog, err := s.Generate(ctx)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(catalog)
	if err != nil {
		return "", fmt.Errorf("serialize catalog: %w", err)
	}
	return string(out), nil
}

// collectMetadata projects every document in the global namespace into a
// catalog entry. The catalog's own file is skipped under both extensions.
// A document that fails to parse degrades to a filename-derived entry
// instead of aborting the build.
func (s *CatalogService) collectMetadata(ctx context.Context) ([]models.CatalogEntry, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		if s.isCatalogFile(doc.Filename) {
			continue
		}
		entries = append(entries, s.projectEntry(doc))
	}
	return entries, nil
}

func (s *CatalogService) projectEntry(doc *models.Document) models.CatalogEntry {
	set, err := models.ParseFlashcardSet(doc.Content)
	if err != nil {
		s.logger.Warn("degrading unparseable document in catalog",
			"filename", doc.Filename,
			"error", err)
		return models.CatalogEntry{
			ID:       doc.ID,
			Title:    doc.ID,
			Filename: doc.Filename,
		}
	}

	entry := models.CatalogEntry{
		ID:          set.ID,
		Title:       set.Title,
		Description: set.Description,
		Language:    set.Language,
		Level:       set.Level,
		Author:      set.Author,
		Topics:      set.Topics,
		Module:      set.Module,
		CardCount:   set.CardCount(),
		Filename:    doc.Filename,
	}
	if entry.ID == "" {
		entry.ID = doc.ID
	}
	return entry
}

// isCatalogFile matches the catalog's filename with either extension so a
// catalog stored as .yml is still excluded when configured as .yaml.
func (s *CatalogService) isCatalogFile(filename string) bool {
	stem := strings.TrimSuffix(s.catalogFilename, ".yaml")
	stem = strings.TrimSuffix(stem, ".yml")
	return filename == stem+".yaml" || filename == stem+".yml"
}
