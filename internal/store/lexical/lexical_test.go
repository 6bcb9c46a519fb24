package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SearchRespectsTenant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchInsert(ctx, []models.Chunk{
		{ID: "1", UserID: "alice", FilePath: "a.go", Content: "func Authenticate returns a token", FTSContent: "func Authenticate returns a token"},
		{ID: "2", UserID: "bob", FilePath: "b.go", Content: "func Authenticate returns a token", FTSContent: "func Authenticate returns a token"},
	}))

	results, err := s.FullTextSearch(ctx, "alice", "authenticate token", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a.go", results[0].Chunk.FilePath)
}

func TestStore_DeleteByFilePath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchInsert(ctx, []models.Chunk{
		{ID: "1", UserID: "alice", FilePath: "a.go", Content: "hello world", FTSContent: "hello world"},
		{ID: "2", UserID: "alice", FilePath: "b.go", Content: "hello world", FTSContent: "hello world"},
	}))

	require.NoError(t, s.DeleteByFilePath(ctx, "alice", "a.go"))

	results, err := s.FullTextSearch(ctx, "alice", "hello world", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "b.go", results[0].Chunk.FilePath)
}

func TestStore_AllStopWordQueryPassesThrough(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchInsert(ctx, []models.Chunk{
		{ID: "1", UserID: "alice", FilePath: "a.go", Content: "some content here", FTSContent: "some content here"},
	}))

	results, err := s.FullTextSearch(ctx, "alice", "是 的 了", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestStore_CJKQueryMatchesBigramTokenizedContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.BatchInsert(ctx, []models.Chunk{
		{ID: "1", UserID: "alice", FilePath: "a.go", Content: "用户认证令牌校验逻辑", FTSContent: "用户认证令牌校验逻辑"},
	}))

	results, err := s.FullTextSearch(ctx, "alice", "用户认证", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}
