package fuser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

type fakeVector struct {
	results []models.SearchResult
	err     error
}

func (f *fakeVector) SimilaritySearch(ctx context.Context, userID, query string, embedding []float32, topK int, fileType *models.FileCategory) ([]models.SearchResult, error) {
	return f.results, f.err
}

type fakeLexical struct {
	results []models.SearchResult
	err     error
}

func (f *fakeLexical) FullTextSearch(ctx context.Context, userID, query string, limit int) ([]models.SearchResult, error) {
	return f.results, f.err
}

type fakeEmbedder struct{ err error }

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

func result(path string, start, end int, source string) models.SearchResult {
	return models.SearchResult{
		Chunk:  models.Chunk{FilePath: path, Range: models.Range{StartLine: start, EndLine: end}},
		Source: source,
	}
}

func TestFuser_DedupsKeepingVectorFirst(t *testing.T) {
	v := &fakeVector{results: []models.SearchResult{result("a.go", 1, 10, "vector")}}
	l := &fakeLexical{results: []models.SearchResult{result("a.go", 1, 10, "fts"), result("b.go", 1, 5, "fts")}}

	f := New(v, l, &fakeEmbedder{})
	out, err := f.Search(context.Background(), "alice", "query", 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "vector", out[0].Source)
}

func TestFuser_TruncatesToNFinal(t *testing.T) {
	var vecResults []models.SearchResult
	for i := 0; i < 10; i++ {
		vecResults = append(vecResults, result("f.go", i, i, "vector"))
	}
	v := &fakeVector{results: vecResults}
	l := &fakeLexical{}

	f := New(v, l, &fakeEmbedder{})
	out, err := f.Search(context.Background(), "alice", "query", 4)
	require.NoError(t, err)
	require.Len(t, out, 4)
}

func TestFuser_VectorFailureDegradesToLexicalOnly(t *testing.T) {
	v := &fakeVector{err: errors.New("qdrant down")}
	l := &fakeLexical{results: []models.SearchResult{result("a.go", 1, 1, "fts")}}

	f := New(v, l, &fakeEmbedder{})
	out, err := f.Search(context.Background(), "alice", "query", 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "fts", out[0].Source)
}

func TestFuser_BothFailuresYieldEmptyNotError(t *testing.T) {
	v := &fakeVector{err: errors.New("down")}
	l := &fakeLexical{err: errors.New("down")}

	f := New(v, l, &fakeEmbedder{})
	out, err := f.Search(context.Background(), "alice", "query", 5)
	require.NoError(t, err)
	require.Empty(t, out)
}
