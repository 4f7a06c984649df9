package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

// LocalStore is the filesystem backend. The namespace is a directory;
// documents are UTF-8 files directly inside it. Sub-namespaces (per-user
// areas) are subdirectories and are invisible to List, which never recurses.
type LocalStore struct {
	dir    string
	logger *slog.Logger
}

// NewLocalStore creates the backing directory if absent.
func NewLocalStore(dir string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &domain.BackendError{Op: "create storage directory", Err: err}
	}
	return &LocalStore{dir: dir, logger: logger}, nil
}

// Scope returns a store rooted at a subdirectory. The directory itself is
// created on first write so scoping stays cheap.
func (s *LocalStore) Scope(sub string) repositories.DocumentStore {
	return &LocalStore{dir: filepath.Join(s.dir, sub), logger: s.logger}
}

func (s *LocalStore) List(ctx context.Context) ([]models.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.BackendError{Op: "list " + s.dir, Err: err}
	}

	var documents []models.Document
	for _, entry := range entries {
		if entry.IsDir() || !HasRecognizedExtension(entry.Name()) {
			continue
		}
		doc, err := s.readDocument(entry.Name())
		if err != nil {
			// One unreadable file must not fail the whole listing
			s.logger.Warn("skipping unreadable document", "filename", entry.Name(), "error", err)
			continue
		}
		documents = append(documents, *doc)
	}
	return documents, nil
}

func (s *LocalStore) Get(ctx context.Context, id string) (*models.Document, error) {
	for _, ext := range Extensions {
		doc, err := s.readDocument(id + ext)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, &domain.BackendError{Op: "read " + id + ext, Err: err}
		}
	}
	return nil, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
}

func (s *LocalStore) Save(ctx context.Context, filename, content string, overwrite bool) (*models.Document, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, &domain.BackendError{Op: "create storage directory", Err: err}
	}
	target := filepath.Join(s.dir, filename)

	if overwrite {
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			return nil, &domain.BackendError{Op: "write " + filename, Err: err}
		}
	} else {
		// O_EXCL makes the existence check atomic with the write, so two
		// concurrent creates cannot both succeed.
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				return nil, &domain.ConflictError{
					Message:      fmt.Sprintf("flashcard %q already exists", filename),
					ResourceType: "flashcard",
					ResourceID:   DeriveID(filename),
				}
			}
			return nil, &domain.BackendError{Op: "create " + filename, Err: err}
		}
		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return nil, &domain.BackendError{Op: "write " + filename, Err: err}
		}
		if err := f.Close(); err != nil {
			return nil, &domain.BackendError{Op: "close " + filename, Err: err}
		}
	}

	s.logger.Info("document saved", "filename", filename, "overwrite", overwrite, "bytes", len(content))

	doc := &models.Document{ID: DeriveID(filename), Filename: filename, Content: content}
	if info, err := os.Stat(target); err == nil {
		mt := info.ModTime()
		doc.ModifiedTime = &mt
	}
	return doc, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) ([]string, error) {
	var removed []string
	for _, ext := range Extensions {
		filename := id + ext
		err := os.Remove(filepath.Join(s.dir, filename))
		if err == nil {
			removed = append(removed, filename)
			s.logger.Info("document deleted", "filename", filename)
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return removed, &domain.BackendError{Op: "delete " + filename, Err: err}
		}
	}
	return removed, nil
}

func (s *LocalStore) DeleteByFilename(ctx context.Context, filename string) (bool, error) {
	err := os.Remove(filepath.Join(s.dir, filename))
	if err == nil {
		s.logger.Info("document deleted", "filename", filename)
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, &domain.BackendError{Op: "delete " + filename, Err: err}
}

func (s *LocalStore) Exists(ctx context.Context, id string) (bool, error) {
	for _, ext := range Extensions {
		if _, err := os.Stat(filepath.Join(s.dir, id+ext)); err == nil {
			return true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, &domain.BackendError{Op: "stat " + id + ext, Err: err}
		}
	}
	return false, nil
}

func (s *LocalStore) SaveCatalog(ctx context.Context, content, filename string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", &domain.BackendError{Op: "create storage directory", Err: err}
	}
	target := filepath.Join(s.dir, filename)
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return "", &domain.BackendError{Op: "write catalog " + filename, Err: err}
	}
	s.logger.Info("catalog saved", "path", target, "bytes", len(content))
	return target, nil
}

// readDocument loads one file and stamps it with the filesystem mtime.
// Returns os.ErrNotExist-wrapping errors for missing files.
func (s *LocalStore) readDocument(filename string) (*models.Document, error) {
	target := filepath.Join(s.dir, filename)
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, err
	}
	doc := &models.Document{ID: DeriveID(filename), Filename: filename, Content: string(data)}
	if info, err := os.Stat(target); err == nil {
		mt := info.ModTime()
		doc.ModifiedTime = &mt
	}
	return doc, nil
}
