package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ommiquiz/internal/domain"
	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/repositories"
)

const yamlContentType = "application/x-yaml"

// S3Options configures the object-storage backend. EndpointURL is set for
// S3-compatible non-AWS providers (e.g. DigitalOcean Spaces); empty means
// AWS S3 proper.
type S3Options struct {
	Bucket      string
	Prefix      string
	EndpointURL string
	Region      string
	AccessKey   string
	SecretKey   string
}

// S3Store is the object-storage backend. The namespace is a key prefix
// under a bucket. Existence checks are metadata-only probes; modification
// times come from object metadata rather than local state.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Store validates the options and builds the client. No network call
// is made until the first operation.
func NewS3Store(opts S3Options, logger *slog.Logger) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket name must be provided when using s3 storage")
	}

	endpoint, secure, err := parseEndpoint(opts.EndpointURL)
	if err != nil {
		return nil, fmt.Errorf("parse s3 endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "flashcards/"
	}
	prefix = strings.TrimRight(prefix, "/") + "/"

	return &S3Store{client: client, bucket: opts.Bucket, prefix: prefix, logger: logger}, nil
}

// parseEndpoint turns an endpoint URL into the host form the client wants.
// An empty URL means AWS S3; a plain host without scheme is taken as HTTPS.
func parseEndpoint(endpointURL string) (endpoint string, secure bool, err error) {
	if endpointURL == "" {
		return "s3.amazonaws.com", true, nil
	}
	if !strings.Contains(endpointURL, "://") {
		return endpointURL, true, nil
	}
	u, err := url.Parse(endpointURL)
	if err != nil {
		return "", false, err
	}
	return u.Host, u.Scheme != "http", nil
}

// Scope returns a store under a deeper key prefix.
func (s *S3Store) Scope(sub string) repositories.DocumentStore {
	return &S3Store{
		client: s.client,
		bucket: s.bucket,
		prefix: s.prefix + strings.TrimRight(sub, "/") + "/",
		logger: s.logger,
	}
}

func (s *S3Store) key(filename string) string {
	return s.prefix + filename
}

func (s *S3Store) List(ctx context.Context) ([]models.Document, error) {
	var documents []models.Document

	// Non-recursive listing keeps sub-namespaces (users/) out of the result
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: false,
	})

	for obj := range objects {
		if obj.Err != nil {
			return documents, &domain.BackendError{Op: "list " + s.prefix, Err: obj.Err}
		}
		if !HasRecognizedExtension(obj.Key) {
			continue
		}
		content, err := s.fetchObject(ctx, obj.Key)
		if err != nil {
			// One unreadable object must not fail the whole listing
			s.logger.Warn("skipping unreadable object", "key", obj.Key, "error", err)
			continue
		}
		filename := path.Base(obj.Key)
		modified := obj.LastModified
		documents = append(documents, models.Document{
			ID:           DeriveID(filename),
			Filename:     filename,
			Content:      content,
			ModifiedTime: &modified,
		})
	}
	return documents, nil
}

func (s *S3Store) Get(ctx context.Context, id string) (*models.Document, error) {
	for _, ext := range Extensions {
		filename := id + ext
		info, err := s.client.StatObject(ctx, s.bucket, s.key(filename), minio.StatObjectOptions{})
		if err != nil {
			if isNoSuchKey(err) {
				continue
			}
			return nil, &domain.BackendError{Op: "stat " + filename, Err: err}
		}
		content, err := s.fetchObject(ctx, s.key(filename))
		if err != nil {
			return nil, &domain.BackendError{Op: "read " + filename, Err: err}
		}
		modified := info.LastModified
		return &models.Document{
			ID:           id,
			Filename:     filename,
			Content:      content,
			ModifiedTime: &modified,
		}, nil
	}
	return nil, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
}

func (s *S3Store) Save(ctx context.Context, filename, content string, overwrite bool) (*models.Document, error) {
	key := s.key(filename)

	if !overwrite {
		_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("flashcard %q already exists in bucket %q", filename, s.bucket),
				ResourceType: "flashcard",
				ResourceID:   DeriveID(filename),
			}
		}
		if !isNoSuchKey(err) {
			return nil, &domain.BackendError{Op: "stat " + filename, Err: err}
		}
	}

	_, err := s.client.PutObject(ctx, s.bucket, key,
		strings.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: yamlContentType})
	if err != nil {
		return nil, &domain.BackendError{Op: "put " + filename, Err: err}
	}

	s.logger.Info("document saved to s3",
		"filename", filename, "bucket", s.bucket, "key", key,
		"overwrite", overwrite, "bytes", len(content))

	return &models.Document{ID: DeriveID(filename), Filename: filename, Content: content}, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) ([]string, error) {
	var removed []string
	for _, ext := range Extensions {
		filename := id + ext
		key := s.key(filename)

		// Object storage deletes succeed on missing keys, so probe first
		// to report only what actually existed.
		if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
			if isNoSuchKey(err) {
				continue
			}
			return removed, &domain.BackendError{Op: "stat " + filename, Err: err}
		}
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return removed, &domain.BackendError{Op: "delete " + filename, Err: err}
		}
		removed = append(removed, filename)
		s.logger.Info("document deleted from s3", "key", key)
	}
	return removed, nil
}

func (s *S3Store) DeleteByFilename(ctx context.Context, filename string) (bool, error) {
	key := s.key(filename)
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, &domain.BackendError{Op: "stat " + filename, Err: err}
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, &domain.BackendError{Op: "delete " + filename, Err: err}
	}
	s.logger.Info("document deleted from s3", "key", key)
	return true, nil
}

func (s *S3Store) Exists(ctx context.Context, id string) (bool, error) {
	for _, ext := range Extensions {
		_, err := s.client.StatObject(ctx, s.bucket, s.key(id+ext), minio.StatObjectOptions{})
		if err == nil {
			return true, nil
		}
		if !isNoSuchKey(err) {
			return false, &domain.BackendError{Op: "stat " + id + ext, Err: err}
		}
	}
	return false, nil
}

func (s *S3Store) SaveCatalog(ctx context.Context, content, filename string) (string, error) {
	key := s.key(filename)
	_, err := s.client.PutObject(ctx, s.bucket, key,
		strings.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: yamlContentType})
	if err != nil {
		return "", &domain.BackendError{Op: "put catalog " + filename, Err: err}
	}

	// Keep a local scratch copy so file responses never need a second
	// round-trip to the bucket.
	local := filepath.Join(os.TempDir(), filename)
	if err := os.WriteFile(local, []byte(content), 0644); err != nil {
		s.logger.Warn("failed to write catalog scratch copy", "path", local, "error", err)
	}

	s.logger.Info("catalog saved to s3", "key", key, "bytes", len(content))
	return local, nil
}

// fetchObject reads one object fully into memory.
func (s *S3Store) fetchObject(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isNoSuchKey reports whether an object-storage error means "key absent".
func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
