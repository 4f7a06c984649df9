package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
	"ommiquiz/internal/domain/services"
)

// flashcardService implements the FlashcardService interface
type flashcardService struct {
	repo    repositories.FlashcardRepository
	catalog services.CatalogService
	logger  *slog.Logger
}

// NewFlashcardService creates a new flashcard service
func NewFlashcardService(
	repo repositories.FlashcardRepository,
	catalog services.CatalogService,
	logger *slog.Logger,
) services.FlashcardService {
	return &flashcardService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// GetSet resolves a set by logical ID and returns it parsed.
func (s *flashcardService) GetSet(ctx context.Context, flashcardID string) (*models.FlashcardSet, error) {
	doc, err := s.repo.GetByID(ctx, flashcardID)
	if err != nil {
		return nil, err
	}
	set, err := models.ParseFlashcardSet(doc.Content)
	if err != nil {
		s.logger.Error("stored flashcard does not parse",
			"flashcard_id", flashcardID,
			"filename", doc.Filename,
			"error", err)
		return nil, fmt.Errorf("parse stored flashcard %q: %v", flashcardID, err)
	}
	return set, nil
}

// GetDocument resolves a set by logical ID and returns the raw document.
func (s *flashcardService) GetDocument(ctx context.Context, flashcardID string) (*models.Document, error) {
	return s.repo.GetByID(ctx, flashcardID)
}

// Save runs the write pipeline: ID format check, parse, card-ID
// synthesis, structural validation, ID match, rename handling, filename
// resolution, persist, catalog regeneration.
func (s *flashcardService) Save(ctx context.Context, req *services.SaveFlashcardRequest) (*services.SaveFlashcardResult, error) {
	if !validFlashcardID(req.ID) {
		return nil, &domain.InvalidIDError{ID: req.ID}
	}

	set, err := models.ParseFlashcardSet(req.Content)
	if err != nil {
		return nil, &domain.MalformedContentError{Message: err.Error()}
	}

	warnings := ensureCardIDs(set)
	report := validateSet(set)
	if !report.Valid {
		return nil, &domain.ValidationError{
			Errors:   report.Errors,
			Warnings: append(warnings, report.Warnings...),
		}
	}
	warnings = append(warnings, report.Warnings...)

	isRename := req.PreviousID != "" && req.PreviousID != req.ID
	if set.ID != req.ID {
		if !isRename {
			return nil, &domain.IDMismatchError{PathID: req.ID, ContentID: set.ID}
		}
		// During a rename the path ID wins; content still declaring the
		// old ID is tolerated and rewritten.
		s.logger.Info("rewriting declared id during rename",
			"declared_id", set.ID,
			"path_id", req.ID)
		set.ID = req.ID
	}

	filename := req.Filename
	overwrite := false
	created := true

	if isRename {
		s.removePreviousDocument(ctx, req.PreviousID)
	} else {
		existing, err := s.repo.GetByID(ctx, req.ID)
		switch {
		case err == nil:
			filename = existing.Filename
			overwrite = true
			created = false
		case errors.Is(err, domain.ErrNotFound):
			// Create path, resolved below
		default:
			return nil, err
		}
	}
	if filename == "" {
		filename = req.ID + ".yml"
	}

	content, err := set.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize flashcard set: %w", err)
	}

	doc, err := s.repo.Save(ctx, filename, content, overwrite)
	if err != nil {
		return nil, err
	}

	s.regenerateCatalog(ctx, "save", req.ID)

	s.logger.Info("flashcard saved",
		"flashcard_id", req.ID,
		"filename", doc.Filename,
		"created", created,
		"renamed_from", req.PreviousID)

	return &services.SaveFlashcardResult{
		Set:      set,
		Filename: doc.Filename,
		Created:  created,
		Warnings: warnings,
	}, nil
}

// Upload ingests an uploaded YAML file. The target filename always derives
// from the declared content ID plus the upload's extension, and an
// existing set with that ID is rejected unless overwrite was requested.
func (s *flashcardService) Upload(ctx context.Context, req *services.UploadFlashcardRequest) (*services.SaveFlashcardResult, error) {
	set, err := models.ParseFlashcardSet(req.Content)
	if err != nil {
		return nil, &domain.MalformedContentError{Message: err.Error()}
	}
	if !validFlashcardID(set.ID) {
		return nil, &domain.InvalidIDError{ID: set.ID}
	}

	warnings := ensureCardIDs(set)
	report := validateSet(set)
	if !report.Valid {
		return nil, &domain.ValidationError{
			Errors:   report.Errors,
			Warnings: append(warnings, report.Warnings...),
		}
	}
	warnings = append(warnings, report.Warnings...)

	exists, err := s.repo.Exists(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	if exists && !req.Overwrite {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("flashcard %q already exists", set.ID),
			ResourceType: "flashcard",
			ResourceID:   set.ID,
		}
	}

	ext := strings.ToLower(path.Ext(req.Filename))
	if ext != ".yaml" && ext != ".yml" {
		ext = ".yml"
	}
	filename := set.ID + ext

	content, err := set.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize flashcard set: %w", err)
	}

	doc, err := s.repo.Save(ctx, filename, content, req.Overwrite)
	if err != nil {
		return nil, err
	}

	s.regenerateCatalog(ctx, "upload", set.ID)

	s.logger.Info("flashcard uploaded",
		"flashcard_id", set.ID,
		"filename", doc.Filename,
		"overwrite", req.Overwrite)

	return &services.SaveFlashcardResult{
		Set:      set,
		Filename: doc.Filename,
		Created:  !exists,
		Warnings: warnings,
	}, nil
}

// Delete removes a set, resolving divergent filenames via the two-phase
// lookup, and reports the removed filenames. Removing nothing for a set
// the caller could resolve is a failure, not a silent success.
func (s *flashcardService) Delete(ctx context.Context, flashcardID string) ([]string, error) {
	doc, err := s.repo.GetByID(ctx, flashcardID)
	if err != nil {
		return nil, err
	}

	var removed []string
	if doc.Filename != flashcardID+".yaml" && doc.Filename != flashcardID+".yml" {
		ok, err := s.repo.DeleteByFilename(ctx, doc.Filename)
		if err != nil {
			return nil, err
		}
		if ok {
			removed = []string{doc.Filename}
		}
	} else {
		removed, err = s.repo.Delete(ctx, flashcardID)
		if err != nil {
			return nil, err
		}
	}

	if len(removed) == 0 {
		return nil, &domain.DeleteFailedError{ID: flashcardID}
	}

	s.regenerateCatalog(ctx, "delete", flashcardID)

	s.logger.Info("flashcard deleted",
		"flashcard_id", flashcardID,
		"removed", removed)
	return removed, nil
}

// Validate parses and validates content without persisting anything.
func (s *flashcardService) Validate(ctx context.Context, content string) *models.ValidationReport {
	set, err := models.ParseFlashcardSet(content)
	if err != nil {
		return &models.ValidationReport{
			Valid:    false,
			Errors:   []string{fmt.Sprintf("YAML parsing error: %v", err)},
			Warnings: []string{},
		}
	}

	warnings := ensureCardIDs(set)
	report := validateSet(set)
	report.Warnings = append(warnings, report.Warnings...)
	return report
}

// removePreviousDocument deletes the document a rename replaces. Failure
// to remove the old file is logged, never fatal: the new document still
// gets written and the stale one shows up in the next catalog rebuild.
func (s *flashcardService) removePreviousDocument(ctx context.Context, previousID string) {
	old, err := s.repo.GetByID(ctx, previousID)
	if err != nil {
		s.logger.Warn("previous flashcard not found during rename",
			"previous_id", previousID,
			"error", err)
		return
	}
	ok, err := s.repo.DeleteByFilename(ctx, old.Filename)
	if err != nil || !ok {
		s.logger.Warn("failed to remove previous flashcard during rename",
			"previous_id", previousID,
			"filename", old.Filename,
			"error", err)
	}
}

// regenerateCatalog rebuilds the catalog after a mutation. The catalog is
// derived state, so a failed rebuild is logged and absorbed; the next
// read or mutation rebuilds it again.
func (s *flashcardService) regenerateCatalog(ctx context.Context, op, flashcardID string) {
	if _, err := s.catalog.Generate(ctx); err != nil {
		s.logger.Error("catalog regeneration failed",
			"op", op,
			"flashcard_id", flashcardID,
			"error", err)
	}
}
