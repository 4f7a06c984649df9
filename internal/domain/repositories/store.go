package repositories

import (
	"context"

	"ommiquiz/internal/domain/models"
)

// DocumentStore abstracts a namespace of named YAML text blobs. Implemented
// by the local filesystem backend and the S3-compatible object storage
// backend; callers never see which one they hold.
//
// Listing tolerates unreadable individual entries (skip and log). Targeted
// operations surface failures explicitly.
type DocumentStore interface {
	// List enumerates every .yaml/.yml entry in the namespace. Order is
	// unspecified; callers must not depend on it.
	List(ctx context.Context) ([]models.Document, error)

	// Get fetches by derived ID, trying .yaml before .yml.
	Get(ctx context.Context, id string) (*models.Document, error)

	// Save writes an entry. Fails with a conflict when the target exists
	// and overwrite is false; full overwrite otherwise.
	Save(ctx context.Context, filename, content string, overwrite bool) (*models.Document, error)

	// Delete removes every entry whose derived ID matches, across all
	// recognized extensions, and returns the removed filenames.
	Delete(ctx context.Context, id string) ([]string, error)

	// DeleteByFilename removes one entry by exact physical name. Returns
	// false when no such entry existed.
	DeleteByFilename(ctx context.Context, filename string) (bool, error)

	// Exists probes for the derived ID under either extension without
	// fetching content.
	Exists(ctx context.Context, id string) (bool, error)

	// SaveCatalog writes the catalog document under its well-known name
	// and returns a filesystem path where a local copy can be read back
	// for file responses.
	SaveCatalog(ctx context.Context, content, filename string) (string, error)
}

// ScopableStore is a DocumentStore that can hand out stores for
// sub-namespaces, e.g. users/<user_id>/ under the global namespace.
type ScopableStore interface {
	DocumentStore

	// Scope returns a store rooted at the given sub-namespace. Creating
	// the namespace is deferred to the first write.
	Scope(sub string) DocumentStore
}
