package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st := models.FileIndexState{
		UserID:         "alice",
		FilePath:       "main.go",
		ContentHash:    "abc123",
		FileSize:       42,
		LastModifiedAt: time.Now().Truncate(time.Second).UTC(),
	}
	require.NoError(t, s.Upsert(ctx, st))

	got, ok, err := s.Get(ctx, "alice", "main.go")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, st.ContentHash, got.ContentHash)
	require.Equal(t, st.FileSize, got.FileSize)
}

func TestStore_UpsertOverwritesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.FileIndexState{UserID: "alice", FilePath: "a.go", ContentHash: "v1", FileSize: 1}))
	require.NoError(t, s.Upsert(ctx, models.FileIndexState{UserID: "alice", FilePath: "a.go", ContentHash: "v2", FileSize: 2}))

	got, ok, err := s.Get(ctx, "alice", "a.go")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", got.ContentHash)
}

func TestStore_ListPathsScopedToTenant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.FileIndexState{UserID: "alice", FilePath: "a.go", ContentHash: "h"}))
	require.NoError(t, s.Upsert(ctx, models.FileIndexState{UserID: "alice", FilePath: "b.go", ContentHash: "h"}))
	require.NoError(t, s.Upsert(ctx, models.FileIndexState{UserID: "bob", FilePath: "c.go", ContentHash: "h"}))

	paths, err := s.ListPaths(ctx, "alice")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.go", "b.go"}, paths)
}

func TestStore_DeleteRemovesRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, models.FileIndexState{UserID: "alice", FilePath: "a.go", ContentHash: "h"}))
	require.NoError(t, s.Delete(ctx, "alice", "a.go"))

	_, ok, err := s.Get(ctx, "alice", "a.go")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_GetMissingReturnsNotOK(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(context.Background(), "alice", "missing.go")
	require.NoError(t, err)
	require.False(t, ok)
}
