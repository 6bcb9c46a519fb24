package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

type fakeHybrid struct {
	results []models.SearchResult
}

func (f *fakeHybrid) Search(ctx context.Context, userID, query string, nFinal int) ([]models.SearchResult, error) {
	return f.results, nil
}

type fakeCategory struct {
	lastFileType *models.FileCategory
	results      []models.SearchResult
	available    bool
}

func (f *fakeCategory) SimilaritySearch(ctx context.Context, userID, query string, embedding []float32, topK int, fileType *models.FileCategory) ([]models.SearchResult, error) {
	f.lastFileType = fileType
	return f.results, nil
}

func (f *fakeCategory) Available() bool { return f.available }

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1}, nil
}

type fakeRefresher struct {
	called bool
}

func (f *fakeRefresher) Refresh(ctx context.Context, userID, root string) (models.RefreshResult, error) {
	f.called = true
	return models.RefreshResult{UserID: userID, Root: root}, nil
}

func TestSearch_UsesHybridWhenNoFileType(t *testing.T) {
	hybrid := &fakeHybrid{results: []models.SearchResult{{Chunk: models.Chunk{FilePath: "a.go"}}}}
	cat := &fakeCategory{}
	svc := New(hybrid, cat, &fakeEmbedder{}, &fakeRefresher{})

	out, err := svc.Search(context.Background(), "alice", "q", 5, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Nil(t, cat.lastFileType)
}

func TestSearch_BypassesFuserWhenFileTypeSet(t *testing.T) {
	hybrid := &fakeHybrid{}
	cat := &fakeCategory{results: []models.SearchResult{{Chunk: models.Chunk{FilePath: "b.md"}}}}
	svc := New(hybrid, cat, &fakeEmbedder{}, &fakeRefresher{})

	docType := models.CategoryDocument
	out, err := svc.Search(context.Background(), "alice", "q", 5, &docType)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, &docType, cat.lastFileType)
}

func TestSearchFormatted_RendersContextBlock(t *testing.T) {
	hybrid := &fakeHybrid{results: []models.SearchResult{{Chunk: models.Chunk{FilePath: "a.go", Content: "package a"}}}}
	svc := New(hybrid, &fakeCategory{}, &fakeEmbedder{}, &fakeRefresher{})

	out, err := svc.SearchFormatted(context.Background(), "alice", "q", 5, nil)
	require.NoError(t, err)
	require.Contains(t, out, "文件: a.go")
}

func TestRefresh_DelegatesToOrchestrator(t *testing.T) {
	refresher := &fakeRefresher{}
	svc := New(&fakeHybrid{}, &fakeCategory{}, &fakeEmbedder{}, refresher)

	require.NoError(t, svc.Refresh("alice", "/tmp/ws"))
	require.True(t, refresher.called)
}

func TestHookAdapter_DelegatesToSearchHook(t *testing.T) {
	hybrid := &fakeHybrid{results: []models.SearchResult{{Chunk: models.Chunk{FilePath: "a.go", Content: "x"}}}}
	svc := New(hybrid, &fakeCategory{available: true}, &fakeEmbedder{}, &fakeRefresher{})
	hook := NewHookAdapter(svc)

	out, err := hook.Search("alice", "how does auth work")
	require.NoError(t, err)
	require.Contains(t, out, "a.go")
}

func TestSearchHook_ReturnsNoContextWhenVectorStoreUnavailable(t *testing.T) {
	hybrid := &fakeHybrid{results: []models.SearchResult{{Chunk: models.Chunk{FilePath: "a.go", Content: "x"}}}}
	svc := New(hybrid, &fakeCategory{available: false}, &fakeEmbedder{}, &fakeRefresher{})

	out, err := svc.SearchHook("alice", "how does auth work")
	require.NoError(t, err)
	require.Empty(t, out)
}
