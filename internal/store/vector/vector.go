// Package vector adapts Qdrant as the dense similarity store, with a
// no-op fallback installed when Qdrant is unreachable at boot so the rest
// of the system degrades gracefully instead of failing every request.
package vector

import (
	"context"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// Store is the vector store contract the orchestrator, fuser, and
// category-filtered search all depend on.
type Store interface {
	Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	SimilaritySearch(ctx context.Context, userID, query string, embedding []float32, topK int, fileType *models.FileCategory) ([]models.SearchResult, error)
	DeleteByFilePath(ctx context.Context, userID, filePath string) error
	DeleteByUserID(ctx context.Context, userID string) error
	// Available reports whether the store is backed by a live connection.
	// Consulted on the before-model hook path (knowledge.Service.SearchHook)
	// so context injection is skipped while the store is degraded.
	Available() bool
}
