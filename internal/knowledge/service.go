// Package knowledge wires the hybrid fuser, category-filtered vector
// search, the context formatter, and the refresh orchestrator into the one
// surface the external collaborators (HTTP controllers, the MCP tool, the
// before-model hook) depend on.
package knowledge

import (
	"context"
	"fmt"

	"github.com/jamaly87/codebase-semantic-search/internal/formatter"
	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// hookTopK is the fixed result count the before-model hook searches with.
const hookTopK = 3

// HybridSearcher runs the quota-split vector+lexical fusion.
type HybridSearcher interface {
	Search(ctx context.Context, userID, query string, nFinal int) ([]models.SearchResult, error)
}

// CategorySearcher is the vector store's direct search path, used when a
// caller names a file_type and the fuser is bypassed entirely. Available
// reports whether it is backed by a live connection, so callers that must
// not run on a degraded store (the before-model hook) can check first.
type CategorySearcher interface {
	SimilaritySearch(ctx context.Context, userID, query string, embedding []float32, topK int, fileType *models.FileCategory) ([]models.SearchResult, error)
	Available() bool
}

// Embedder produces the query embedding for category-filtered search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Refresher runs an incremental reindex for one tenant.
type Refresher interface {
	Refresh(ctx context.Context, userID, root string) (models.RefreshResult, error)
}

// Service is the top-level knowledge base facade.
type Service struct {
	hybrid   HybridSearcher
	category CategorySearcher
	embedder Embedder
	refresh  Refresher
}

// New builds the facade over its collaborators.
func New(hybrid HybridSearcher, category CategorySearcher, embedder Embedder, refresh Refresher) *Service {
	return &Service{hybrid: hybrid, category: category, embedder: embedder, refresh: refresh}
}

// Search runs a hybrid fused search. When fileType is set, it bypasses the
// fuser and searches the vector store directly with that filter.
func (s *Service) Search(ctx context.Context, userID, query string, topK int, fileType *models.FileCategory) ([]models.SearchResult, error) {
	if fileType == nil {
		return s.hybrid.Search(ctx, userID, query, topK)
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return s.category.SimilaritySearch(ctx, userID, query, embedding, topK, fileType)
}

// SearchFormatted runs Search and renders the result through the context
// formatter, for callers (the MCP tool) that want a ready-to-inject string.
func (s *Service) SearchFormatted(ctx context.Context, userID, query string, topK int, fileType *models.FileCategory) (string, error) {
	results, err := s.Search(ctx, userID, query, topK, fileType)
	if err != nil {
		return "", err
	}
	return formatter.FormatResults(results), nil
}

// SearchHook adapts SearchFormatted to the before-model hook's narrower
// Searcher contract (no file_type, no explicit top_k). It returns no
// context, rather than a degraded lexical-only result, when the vector
// store has no live connection.
func (s *Service) SearchHook(userID, query string) (string, error) {
	if !s.category.Available() {
		return "", nil
	}
	return s.SearchFormatted(context.Background(), userID, query, hookTopK, nil)
}

// Refresh adapts the orchestrator's Refresh to the HTTP handler's
// synchronous Refresher contract.
func (s *Service) Refresh(userID, workspacePath string) error {
	_, err := s.refresh.Refresh(context.Background(), userID, workspacePath)
	return err
}

// HookAdapter narrows Service to agenthook.Searcher's single-query-string
// contract, named distinctly from Service.Search since the two shapes
// can't share one method name.
type HookAdapter struct {
	svc *Service
}

// NewHookAdapter wraps svc for before-model-hook use.
func NewHookAdapter(svc *Service) *HookAdapter {
	return &HookAdapter{svc: svc}
}

func (h *HookAdapter) Search(userID, query string) (string, error) {
	return h.svc.SearchHook(userID, query)
}
