package flashcards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

// Repository implements FlashcardRepository on top of a scopable document
// store. The global namespace holds shared sets; per-user sets live under
// users/<user_id>/.
type Repository struct {
	store  repositories.ScopableStore
	logger *slog.Logger
}

// NewRepository creates a flashcard repository over the given store.
func NewRepository(store repositories.ScopableStore, logger *slog.Logger) repositories.FlashcardRepository {
	return &Repository{
		store:  store,
		logger: logger,
	}
}

// List enumerates all documents in the global namespace.
func (r *Repository) List(ctx context.Context) ([]models.Document, error) {
	return r.store.List(ctx)
}

// GetByID resolves a set by logical ID. Phase 1 asks the store directly,
// assuming the filename stem matches. Phase 2 scans every document and
// compares the id declared inside the content, because filenames and
// declared IDs are allowed to diverge (a file named Chapter9.yml may
// declare id: chapter9_quiz). The scan is O(n) in the collection size.
func (r *Repository) GetByID(ctx context.Context, flashcardID string) (*models.Document, error) {
	doc, err := r.store.Get(ctx, flashcardID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	docs, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if declaredID(docs[i].Content) == flashcardID {
			r.logger.Debug("resolved flashcard via content scan",
				"flashcard_id", flashcardID,
				"filename", docs[i].Filename)
			match := docs[i]
			match.ID = flashcardID
			return &match, nil
		}
	}
	return nil, fmt.Errorf("flashcard %q: %w", flashcardID, domain.ErrNotFound)
}

// Exists reports whether GetByID would find the set. It shares the
// two-phase resolution so existence and retrievability never diverge.
func (r *Repository) Exists(ctx context.Context, flashcardID string) (bool, error) {
	_, err := r.GetByID(ctx, flashcardID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// Save writes a document into the global namespace.
func (r *Repository) Save(ctx context.Context, filename, content string, overwrite bool) (*models.Document, error) {
	return r.store.Save(ctx, filename, content, overwrite)
}

// Delete removes a set from the global namespace by derived ID and
// reports which filenames were actually removed.
func (r *Repository) Delete(ctx context.Context, flashcardID string) ([]string, error) {
	return r.store.Delete(ctx, flashcardID)
}

// DeleteByFilename removes exactly one global entry by name.
func (r *Repository) DeleteByFilename(ctx context.Context, filename string) (bool, error) {
	return r.store.DeleteByFilename(ctx, filename)
}

// ListUserDocuments enumerates one user's namespace.
func (r *Repository) ListUserDocuments(ctx context.Context, userID string) ([]models.Document, error) {
	return r.userStore(userID).List(ctx)
}

// GetUserDocument fetches a set from one user's namespace. User sets are
// always stored under their own ID, so no content scan is needed here.
func (r *Repository) GetUserDocument(ctx context.Context, userID, flashcardID string) (*models.Document, error) {
	return r.userStore(userID).Get(ctx, flashcardID)
}

// SaveUserDocument writes into one user's namespace.
func (r *Repository) SaveUserDocument(ctx context.Context, userID, filename, content string, overwrite bool) (*models.Document, error) {
	return r.userStore(userID).Save(ctx, filename, content, overwrite)
}

// DeleteUserDocument removes a set from one user's namespace.
func (r *Repository) DeleteUserDocument(ctx context.Context, userID, flashcardID string) ([]string, error) {
	return r.userStore(userID).Delete(ctx, flashcardID)
}

func (r *Repository) userStore(userID string) repositories.DocumentStore {
	return r.store.Scope("users/" + userID)
}

// declaredID extracts the id field from YAML content without a full
// parse. Malformed content simply yields no match.
func declaredID(content string) string {
	var probe struct {
		ID string `yaml:"id"`
	}
	if err := yaml.Unmarshal([]byte(content), &probe); err != nil {
		return ""
	}
	return probe.ID
}
