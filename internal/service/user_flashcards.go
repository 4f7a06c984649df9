package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
	"ommiquiz/internal/domain/services"
	flashcardsRepo "ommiquiz/internal/repository/flashcards"
)

// userFlashcardService implements the UserFlashcardService interface.
// Documents live in the per-user store namespace; ownership and
// visibility live in the relational metadata table. The metadata row is
// authoritative for access decisions.
type userFlashcardService struct {
	repo     repositories.FlashcardRepository
	metaRepo repositories.UserFlashcardRepository
	logger   *slog.Logger
}

// NewUserFlashcardService creates a new user flashcard service
func NewUserFlashcardService(
	repo repositories.FlashcardRepository,
	metaRepo repositories.UserFlashcardRepository,
	logger *slog.Logger,
) services.UserFlashcardService {
	return &userFlashcardService{
		repo:     repo,
		metaRepo: metaRepo,
		logger:   logger,
	}
}

// Create validates and persists a new user set under a namespaced
// user_<prefix>_<slug> ID derived from the declared id or the title.
func (s *userFlashcardService) Create(ctx context.Context, req *services.CreateUserFlashcardRequest) (*services.SaveFlashcardResult, error) {
	set, err := models.ParseFlashcardSet(req.Content)
	if err != nil {
		return nil, &domain.MalformedContentError{Message: err.Error()}
	}

	base := set.ID
	if base == "" {
		base = set.Title
	}
	slug := flashcardsRepo.Slugify(base)
	if slug == "" {
		return nil, &domain.InvalidIDError{ID: base}
	}
	set.ID = flashcardsRepo.GenerateUserFlashcardID(req.UserID, slug)
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

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	if !validVisibility(visibility) {
		return nil, &domain.ValidationError{
			Errors: []string{fmt.Sprintf("visibility must be %q or %q", models.VisibilityGlobal, models.VisibilityPrivate)},
		}
	}

	content, err := set.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize flashcard set: %w", err)
	}

	filename := set.ID + ".yml"
	doc, err := s.repo.SaveUserDocument(ctx, req.UserID, filename, content, false)
	if err != nil {
		return nil, err
	}

	record := &models.UserFlashcard{
		UserID:      req.UserID,
		FlashcardID: set.ID,
		Title:       set.Title,
		Visibility:  visibility,
	}
	if err := s.metaRepo.Create(ctx, record); err != nil {
		// Roll the document back so a metadata failure does not leave an
		// orphan file the user can neither see nor recreate.
		if _, delErr := s.repo.DeleteUserDocument(ctx, req.UserID, set.ID); delErr != nil {
			s.logger.Error("failed to roll back orphaned user document",
				"user_id", req.UserID,
				"flashcard_id", set.ID,
				"error", delErr)
		}
		return nil, err
	}

	s.logger.Info("user flashcard created",
		"user_id", req.UserID,
		"flashcard_id", set.ID,
		"visibility", visibility)

	return &services.SaveFlashcardResult{
		Set:      set,
		Filename: doc.Filename,
		Created:  true,
		Warnings: warnings,
	}, nil
}

// Get returns one of the caller's sets, or another user's set when it is
// published globally.
func (s *userFlashcardService) Get(ctx context.Context, callerID, flashcardID string) (*models.FlashcardSet, error) {
	record, err := s.metaRepo.GetByFlashcardID(ctx, flashcardID)
	if err != nil {
		return nil, err
	}
	if record.UserID != callerID && record.Visibility != models.VisibilityGlobal {
		return nil, &domain.ForbiddenError{}
	}

	doc, err := s.repo.GetUserDocument(ctx, record.UserID, flashcardID)
	if err != nil {
		return nil, err
	}
	set, err := models.ParseFlashcardSet(doc.Content)
	if err != nil {
		s.logger.Error("stored user flashcard does not parse",
			"flashcard_id", flashcardID,
			"error", err)
		return nil, fmt.Errorf("parse stored flashcard %q: %v", flashcardID, err)
	}
	return set, nil
}

// List returns the caller's own sets with their parsed headers.
func (s *userFlashcardService) List(ctx context.Context, userID string) ([]services.UserFlashcardInfo, error) {
	records, err := s.metaRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	infos := make([]services.UserFlashcardInfo, 0, len(records))
	for _, record := range records {
		infos = append(infos, s.buildInfo(ctx, record))
	}
	return infos, nil
}

// ListGlobal returns every set published with global visibility.
func (s *userFlashcardService) ListGlobal(ctx context.Context) ([]services.UserFlashcardInfo, error) {
	records, err := s.metaRepo.ListGlobal(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]services.UserFlashcardInfo, 0, len(records))
	for _, record := range records {
		infos = append(infos, s.buildInfo(ctx, record))
	}
	return infos, nil
}

// Update overwrites one of the caller's sets in place.
func (s *userFlashcardService) Update(ctx context.Context, req *services.UpdateUserFlashcardRequest) (*services.SaveFlashcardResult, error) {
	record, err := s.metaRepo.GetByFlashcardID(ctx, req.FlashcardID)
	if err != nil {
		return nil, err
	}
	if record.UserID != req.UserID {
		return nil, &domain.ForbiddenError{}
	}

	set, err := models.ParseFlashcardSet(req.Content)
	if err != nil {
		return nil, &domain.MalformedContentError{Message: err.Error()}
	}
	// The namespaced ID is fixed at creation; submitted content keeps it
	// regardless of what it declares.
	set.ID = req.FlashcardID

	warnings := ensureCardIDs(set)
	report := validateSet(set)
	if !report.Valid {
		return nil, &domain.ValidationError{
			Errors:   report.Errors,
			Warnings: append(warnings, report.Warnings...),
		}
	}
	warnings = append(warnings, report.Warnings...)

	content, err := set.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize flashcard set: %w", err)
	}

	filename := req.FlashcardID + ".yml"
	overwrite := true
	if existing, err := s.repo.GetUserDocument(ctx, req.UserID, req.FlashcardID); err == nil {
		filename = existing.Filename
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	doc, err := s.repo.SaveUserDocument(ctx, req.UserID, filename, content, overwrite)
	if err != nil {
		return nil, err
	}

	if set.Title != record.Title {
		if err := s.metaRepo.UpdateTitle(ctx, req.FlashcardID, set.Title); err != nil {
			s.logger.Warn("failed to sync user flashcard title",
				"flashcard_id", req.FlashcardID,
				"error", err)
		}
	}

	s.logger.Info("user flashcard updated",
		"user_id", req.UserID,
		"flashcard_id", req.FlashcardID)

	return &services.SaveFlashcardResult{
		Set:      set,
		Filename: doc.Filename,
		Created:  false,
		Warnings: warnings,
	}, nil
}

// SetVisibility flips a set between global and private.
func (s *userFlashcardService) SetVisibility(ctx context.Context, userID, flashcardID, visibility string) error {
	if !validVisibility(visibility) {
		return &domain.ValidationError{
			Errors: []string{fmt.Sprintf("visibility must be %q or %q", models.VisibilityGlobal, models.VisibilityPrivate)},
		}
	}

	record, err := s.metaRepo.GetByFlashcardID(ctx, flashcardID)
	if err != nil {
		return err
	}
	if record.UserID != userID {
		return &domain.ForbiddenError{}
	}

	if err := s.metaRepo.UpdateVisibility(ctx, flashcardID, visibility); err != nil {
		return err
	}

	s.logger.Info("user flashcard visibility changed",
		"user_id", userID,
		"flashcard_id", flashcardID,
		"visibility", visibility)
	return nil
}

// Delete removes the document and its metadata row.
func (s *userFlashcardService) Delete(ctx context.Context, userID, flashcardID string) error {
	record, err := s.metaRepo.GetByFlashcardID(ctx, flashcardID)
	if err != nil {
		return err
	}
	if record.UserID != userID {
		return &domain.ForbiddenError{}
	}

	removed, err := s.repo.DeleteUserDocument(ctx, userID, flashcardID)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		s.logger.Warn("user flashcard document already gone",
			"user_id", userID,
			"flashcard_id", flashcardID)
	}

	if err := s.metaRepo.Delete(ctx, flashcardID); err != nil {
		return err
	}

	s.logger.Info("user flashcard deleted",
		"user_id", userID,
		"flashcard_id", flashcardID,
		"removed", removed)
	return nil
}

// buildInfo pairs the metadata row with the parsed document header,
// degrading to metadata-only when the document is missing or malformed.
func (s *userFlashcardService) buildInfo(ctx context.Context, record models.UserFlashcard) services.UserFlashcardInfo {
	info := services.UserFlashcardInfo{Record: record}

	doc, err := s.repo.GetUserDocument(ctx, record.UserID, record.FlashcardID)
	if err != nil {
		s.logger.Warn("user flashcard document unavailable",
			"flashcard_id", record.FlashcardID,
			"error", err)
		info.Entry = models.CatalogEntry{ID: record.FlashcardID, Title: record.Title}
		return info
	}

	set, err := models.ParseFlashcardSet(doc.Content)
	if err != nil {
		s.logger.Warn("user flashcard document does not parse",
			"flashcard_id", record.FlashcardID,
			"filename", doc.Filename,
			"error", err)
		info.Entry = models.CatalogEntry{ID: record.FlashcardID, Title: record.Title, Filename: doc.Filename}
		return info
	}

	info.Entry = models.CatalogEntry{
		ID:          record.FlashcardID,
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
	return info
}

func validVisibility(v string) bool {
	return v == models.VisibilityGlobal || v == models.VisibilityPrivate
}
