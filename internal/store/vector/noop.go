package vector

import (
	"context"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// NoopStore is installed when Qdrant is unreachable at boot. Writes are
// silently accepted (so refresh still runs and populates the lexical
// store), and reads return empty results rather than an error, so a
// hybrid search degrades to lexical-only instead of failing outright.
type NoopStore struct{}

// NewNoopStore constructs the degraded vector store.
func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) Available() bool { return false }

func (n *NoopStore) Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	return nil
}

func (n *NoopStore) SimilaritySearch(ctx context.Context, userID, query string, embedding []float32, topK int, fileType *models.FileCategory) ([]models.SearchResult, error) {
	return nil, nil
}

func (n *NoopStore) DeleteByFilePath(ctx context.Context, userID, filePath string) error { return nil }

func (n *NoopStore) DeleteByUserID(ctx context.Context, userID string) error { return nil }
