package docstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ommiquiz/internal/domain"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewLocalStore(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func TestLocalStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	saved, err := store.Save(ctx, "geo.yaml", "id: geo\ntitle: Geography\n", false)
	require.NoError(t, err)
	assert.Equal(t, "geo", saved.ID)
	assert.Equal(t, "geo.yaml", saved.Filename)
	require.NotNil(t, saved.ModifiedTime)

	got, err := store.Get(ctx, "geo")
	require.NoError(t, err)
	assert.Equal(t, "geo.yaml", got.Filename)
	assert.Equal(t, "id: geo\ntitle: Geography\n", got.Content)
}

func TestLocalStoreGetPrefersYamlOverYml(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, "dup.yml", "from: yml\n", false)
	require.NoError(t, err)
	_, err = store.Save(ctx, "dup.yaml", "from: yaml\n", false)
	require.NoError(t, err)

	got, err := store.Get(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "dup.yaml", got.Filename)
	assert.Equal(t, "from: yaml\n", got.Content)
}

func TestLocalStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalStoreSaveNoOverwriteConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, "deck.yaml", "original content\n", false)
	require.NoError(t, err)

	_, err = store.Save(ctx, "deck.yaml", "sneaky replacement\n", false)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// The failed save must leave storage untouched
	got, err := store.Get(ctx, "deck")
	require.NoError(t, err)
	assert.Equal(t, "original content\n", got.Content)
}

func TestLocalStoreSaveOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, "deck.yaml", "v1\n", false)
	require.NoError(t, err)
	_, err = store.Save(ctx, "deck.yaml", "v2\n", true)
	require.NoError(t, err)

	got, err := store.Get(ctx, "deck")
	require.NoError(t, err)
	assert.Equal(t, "v2\n", got.Content)
}

func TestLocalStoreList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, "a.yaml", "id: a\n", false)
	require.NoError(t, err)
	_, err = store.Save(ctx, "b.yml", "id: b\n", false)
	require.NoError(t, err)
	_, err = store.Save(ctx, "notes.txt", "not a flashcard", false)
	require.NoError(t, err)

	// Sub-namespaces stay invisible to the flat listing
	_, err = store.Scope("users/u1").Save(ctx, "mine.yaml", "id: mine\n", false)
	require.NoError(t, err)

	docs, err := store.List(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Filename)
	}
	assert.ElementsMatch(t, []string{"a.yaml", "b.yml"}, names)
}

func TestLocalStoreListSkipsDirectories(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	// A directory with a matching name must be skipped, not read as a file
	require.NoError(t, os.MkdirAll(filepath.Join(store.dir, "trap.yaml"), 0755))
	_, err := store.Save(ctx, "real.yaml", "id: real\n", false)
	require.NoError(t, err)

	docs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "real.yaml", docs[0].Filename)
}

func TestLocalStoreListMissingDirectory(t *testing.T) {
	store := newTestStore(t)

	docs, err := store.Scope("users/ghost").List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLocalStoreDeleteBothExtensions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, "twin.yaml", "a\n", false)
	require.NoError(t, err)
	_, err = store.Save(ctx, "twin.yml", "b\n", false)
	require.NoError(t, err)

	removed, err := store.Delete(ctx, "twin")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"twin.yaml", "twin.yml"}, removed)

	exists, err := store.Exists(ctx, "twin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStoreDeleteMissing(t *testing.T) {
	store := newTestStore(t)

	removed, err := store.Delete(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestLocalStoreDeleteByFilename(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, "odd-name.yml", "x\n", false)
	require.NoError(t, err)

	ok, err := store.DeleteByFilename(ctx, "odd-name.yml")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.DeleteByFilename(ctx, "odd-name.yml")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStoreExists(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Save(ctx, "here.yml", "x\n", false)
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "here")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "elsewhere")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStoreSaveCatalog(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	location, err := store.SaveCatalog(ctx, "total: 0\n", "flashcards_catalog.yml")
	require.NoError(t, err)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "total: 0\n", string(data))
}

func TestLocalStoreScopeIsolation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	u1 := store.Scope("users/u1")
	u2 := store.Scope("users/u2")

	_, err := u1.Save(ctx, "deck.yaml", "owner: u1\n", false)
	require.NoError(t, err)

	got, err := u1.Get(ctx, "deck")
	require.NoError(t, err)
	assert.Equal(t, "owner: u1\n", got.Content)

	_, err = u2.Get(ctx, "deck")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
