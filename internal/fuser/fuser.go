// Package fuser implements the hybrid search fuser: an embeddings
// sub-query and a lexical sub-query run independently, their results are
// quota-split, concatenated vector-first, deduplicated by location keeping
// the first occurrence, and truncated to the caller's requested count.
package fuser

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// VectorSearcher is the subset of the vector store the fuser depends on.
type VectorSearcher interface {
	SimilaritySearch(ctx context.Context, userID, query string, embedding []float32, topK int, fileType *models.FileCategory) ([]models.SearchResult, error)
}

// LexicalSearcher is the subset of the lexical store the fuser depends on.
type LexicalSearcher interface {
	FullTextSearch(ctx context.Context, userID, query string, limit int) ([]models.SearchResult, error)
}

// Embedder produces the query embedding fed to the vector sub-query.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Fuser runs the hybrid search algorithm.
type Fuser struct {
	vector   VectorSearcher
	lexical  LexicalSearcher
	embedder Embedder
}

// New builds a Fuser over the given sub-stores and embedder.
func New(vector VectorSearcher, lexical LexicalSearcher, embedder Embedder) *Fuser {
	return &Fuser{vector: vector, lexical: lexical, embedder: embedder}
}

// Search runs the vector and lexical sub-queries in parallel, fuses them by
// the fixed 50/25/25 quota split, and returns at most nFinal results.
//
// A failing sub-query does not fail the search: it contributes an empty
// slice, so a hybrid search degrades to single-source when one backend is
// unavailable rather than erroring out entirely.
func (f *Fuser) Search(ctx context.Context, userID, query string, nFinal int) ([]models.SearchResult, error) {
	if nFinal <= 0 {
		nFinal = 5
	}

	embeddingsN := maxInt(1, nFinal/2)
	ftsN := maxInt(1, nFinal/4)
	// recentN is the reserved-but-unimplemented "recently indexed" slot;
	// no recency source exists yet, so its quota is simply not filled.
	recentN := nFinal - embeddingsN - ftsN
	_ = recentN

	var vectorResults, lexicalResults []models.SearchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		embedding, err := f.embedder.Embed(gctx, query)
		if err != nil {
			return nil
		}
		results, err := f.vector.SimilaritySearch(gctx, userID, query, embedding, embeddingsN, nil)
		if err != nil {
			return nil
		}
		vectorResults = results
		return nil
	})
	g.Go(func() error {
		results, err := f.lexical.FullTextSearch(gctx, userID, query, ftsN)
		if err != nil {
			return nil
		}
		lexicalResults = results
		return nil
	})
	_ = g.Wait()

	merged := dedup(append(append([]models.SearchResult{}, vectorResults...), lexicalResults...))
	if len(merged) > nFinal {
		merged = merged[:nFinal]
	}
	return merged, nil
}

type resultKey struct {
	filePath  string
	startLine int
	endLine   int
}

// dedup removes duplicate hits by (file_path, start_line, end_line),
// keeping the first occurrence. Vector results are concatenated first, so
// ties favor the vector-sourced hit.
func dedup(results []models.SearchResult) []models.SearchResult {
	seen := make(map[resultKey]bool, len(results))
	out := make([]models.SearchResult, 0, len(results))
	for _, r := range results {
		key := resultKey{r.Chunk.FilePath, r.Chunk.Range.StartLine, r.Chunk.Range.EndLine}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
