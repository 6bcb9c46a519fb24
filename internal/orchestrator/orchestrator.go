// Package orchestrator drives an incremental refresh of one tenant's
// workspace: scan the filesystem, diff against the last known state per
// file, and reconcile the vector and lexical stores so they end up exactly
// matching what is on disk, structured as a per-file state machine instead
// of a single all-chunks-then-one-upsert pass.
package orchestrator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jamaly87/codebase-semantic-search/internal/classify"
	"github.com/jamaly87/codebase-semantic-search/internal/models"
	"github.com/jamaly87/codebase-semantic-search/internal/scanner"
	"github.com/jamaly87/codebase-semantic-search/internal/splitter"
)

// VectorStore is the subset of the vector store the orchestrator writes to.
type VectorStore interface {
	Add(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	DeleteByFilePath(ctx context.Context, userID, filePath string) error
}

// LexicalStore is the subset of the lexical store the orchestrator writes to.
type LexicalStore interface {
	BatchInsert(ctx context.Context, chunks []models.Chunk) error
	DeleteByFilePath(ctx context.Context, userID, filePath string) error
}

// StateStore tracks per-file index state so a refresh can tell insert from
// update from skip without re-embedding unchanged files.
type StateStore interface {
	Get(ctx context.Context, userID, filePath string) (models.FileIndexState, bool, error)
	Upsert(ctx context.Context, st models.FileIndexState) error
	Delete(ctx context.Context, userID, filePath string) error
	ListPaths(ctx context.Context, userID string) ([]string, error)
}

// Embedder batch-embeds chunk contents, in input order.
type Embedder interface {
	ProcessTexts(texts []string) ([][]float32, error)
}

// Scanner is the subset of scanner.Scanner the orchestrator depends on.
type Scanner interface {
	Scan(root string) (*scanner.Result, error)
}

// Splitter is the subset of splitter.Pipeline the orchestrator depends on.
type Splitter interface {
	Split(path, language string, content []byte) ([]models.Chunk, error)
}

// Orchestrator runs Refresh over a tenant's workspace.
type Orchestrator struct {
	scanner  Scanner
	splitter Splitter
	vector   VectorStore
	lexical  LexicalStore
	state    StateStore
	embedder Embedder
	// concurrency bounds how many files are processed in parallel.
	concurrency int
}

// New builds an Orchestrator from its collaborators. concurrency <= 0
// defaults to 4.
func New(sc Scanner, sp Splitter, vector VectorStore, lexical LexicalStore, state StateStore, embedder Embedder, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Orchestrator{scanner: sc, splitter: sp, vector: vector, lexical: lexical, state: state, embedder: embedder, concurrency: concurrency}
}

// Refresh reconciles the stores for one tenant's workspace root against
// what is currently on disk: every scanned file is classified as added,
// updated, or skipped by comparing its content hash against the state
// store, and every tracked file no longer present on disk is deleted.
// A per-file failure increments Errors and never aborts the run. If an
// updated file fails after its old entries and state row were removed, it
// is left untracked and the next refresh indexes it again as added.
func (o *Orchestrator) Refresh(ctx context.Context, userID, root string) (models.RefreshResult, error) {
	started := time.Now()
	result := models.RefreshResult{UserID: userID, Root: root, StartedAt: started}

	scanned, err := o.scanner.Scan(root)
	if err != nil {
		return result, fmt.Errorf("failed to scan workspace: %w", err)
	}

	var counters models.RefreshCounters
	var mu countersMutex
	mu.c = &counters

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	seen := make(map[string]bool, len(scanned.Files))
	for _, path := range scanned.Files {
		path := path
		relPath, relErr := relativeTo(root, path)
		if relErr != nil {
			mu.incr(func(c *models.RefreshCounters) { c.Errors++ })
			continue
		}
		seen[relPath] = true

		g.Go(func() error {
			action, err := o.refreshFile(gctx, userID, root, relPath, path)
			mu.incr(func(c *models.RefreshCounters) {
				switch {
				case err != nil:
					c.Errors++
				case action == actionAdded:
					c.Added++
				case action == actionUpdated:
					c.Updated++
				default:
					c.Skipped++
				}
			})
			return nil
		})
	}
	_ = g.Wait()

	tracked, err := o.state.ListPaths(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to list tracked files: %w", err)
	}
	for _, relPath := range tracked {
		if seen[relPath] {
			continue
		}
		if err := o.deleteFile(ctx, userID, relPath); err != nil {
			counters.Errors++
			continue
		}
		counters.Deleted++
	}

	result.Counters = counters
	result.Duration = time.Since(started)
	return result, nil
}

type refreshAction int

const (
	actionSkipped refreshAction = iota
	actionAdded
	actionUpdated
)

// refreshFile classifies and, if needed, reindexes one file. filePath is
// the absolute path on disk; relPath is what is stored and compared in the
// state store so it survives a workspace root being mounted elsewhere.
func (o *Orchestrator) refreshFile(ctx context.Context, userID, root, relPath, filePath string) (refreshAction, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return actionSkipped, fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return actionSkipped, fmt.Errorf("failed to stat %s: %w", relPath, err)
	}

	hash := contentHash(content)
	prior, existed, err := o.state.Get(ctx, userID, relPath)
	if err != nil {
		return actionSkipped, fmt.Errorf("failed to read prior state for %s: %w", relPath, err)
	}
	if existed && prior.ContentHash == hash {
		return actionSkipped, nil
	}

	category, language := classify.Classify(filePath)
	chunks, err := o.splitter.Split(relPath, language, content)
	if err != nil {
		return actionSkipped, fmt.Errorf("failed to split %s: %w", relPath, err)
	}
	for i := range chunks {
		chunks[i].UserID = userID
		chunks[i].Category = category
		chunks[i].ContentHash = hash
		chunks[i].ChunkIndex = i
		chunks[i].CreatedAt = started()
		if chunks[i].ID == "" {
			chunks[i].ID = models.NewChunkID()
		}
	}

	if existed {
		if err := o.deleteFile(ctx, userID, relPath); err != nil {
			return actionSkipped, err
		}
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}
		vectors, err := o.embedder.ProcessTexts(texts)
		if err != nil {
			return actionSkipped, fmt.Errorf("failed to embed chunks for %s: %w", relPath, err)
		}
		if err := o.vector.Add(ctx, chunks, vectors); err != nil {
			return actionSkipped, fmt.Errorf("failed to upsert vectors for %s: %w", relPath, err)
		}
		if err := o.lexical.BatchInsert(ctx, chunks); err != nil {
			return actionSkipped, fmt.Errorf("failed to index fts for %s: %w", relPath, err)
		}
	}

	st := models.FileIndexState{
		UserID:         userID,
		FilePath:       relPath,
		ContentHash:    hash,
		FileSize:       info.Size(),
		LastModifiedAt: info.ModTime().UTC(),
	}
	if err := o.state.Upsert(ctx, st); err != nil {
		return actionSkipped, fmt.Errorf("failed to persist state for %s: %w", relPath, err)
	}

	if existed {
		return actionUpdated, nil
	}
	return actionAdded, nil
}

// deleteFile removes one file's chunks from both stores and its state row.
// Used both for reindexing an updated file and for files removed from disk.
func (o *Orchestrator) deleteFile(ctx context.Context, userID, relPath string) error {
	if err := o.vector.DeleteByFilePath(ctx, userID, relPath); err != nil {
		return fmt.Errorf("failed to delete vectors for %s: %w", relPath, err)
	}
	if err := o.lexical.DeleteByFilePath(ctx, userID, relPath); err != nil {
		return fmt.Errorf("failed to delete fts entries for %s: %w", relPath, err)
	}
	if err := o.state.Delete(ctx, userID, relPath); err != nil {
		return fmt.Errorf("failed to delete state for %s: %w", relPath, err)
	}
	return nil
}

func contentHash(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// relativeTo returns path relative to root, slash-separated, so state rows
// are stable across different absolute mount points for the same workspace.
func relativeTo(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func started() time.Time {
	return time.Now().UTC()
}

// countersMutex serializes concurrent counter increments from parallel
// file-refresh goroutines.
type countersMutex struct {
	mu sync.Mutex
	c  *models.RefreshCounters
}

func (m *countersMutex) incr(f func(*models.RefreshCounters)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(m.c)
}
