// Package bootstrap wires the concrete implementations of every
// collaborator package into one Dependencies bundle, the single place a
// cmd/ entrypoint needs to read to assemble the knowledge service.
package bootstrap

import (
	"context"
	"log"

	"github.com/jamaly87/codebase-semantic-search/internal/embeddings"
	"github.com/jamaly87/codebase-semantic-search/internal/fuser"
	"github.com/jamaly87/codebase-semantic-search/internal/knowledge"
	"github.com/jamaly87/codebase-semantic-search/internal/orchestrator"
	"github.com/jamaly87/codebase-semantic-search/internal/scanner"
	"github.com/jamaly87/codebase-semantic-search/internal/splitter"
	"github.com/jamaly87/codebase-semantic-search/internal/store/lexical"
	"github.com/jamaly87/codebase-semantic-search/internal/store/state"
	"github.com/jamaly87/codebase-semantic-search/internal/store/vector"
	"github.com/jamaly87/codebase-semantic-search/internal/tenant"
	"github.com/jamaly87/codebase-semantic-search/pkg/config"
)

// Dependencies bundles the assembled knowledge service plus the tenant
// resolver the external collaborators need, and whatever needs closing on
// shutdown.
type Dependencies struct {
	Knowledge *knowledge.Service
	Tenant    *tenant.Resolver

	lexical *lexical.Store
	state   *state.Store
	vector  closer
}

// closer is the minimal interface the vector store implementations satisfy
// when they hold a live connection; NoopStore has nothing to close.
type closer interface {
	Close() error
}

// Build connects every backing store, installing graceful-degradation
// fallbacks where a backend is unreachable, and returns the fully wired
// Dependencies bundle.
func Build(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	embeddingsClient := embeddings.NewClient(&cfg.Embeddings)
	batcher := embeddings.NewBatcher(embeddingsClient, cfg.Embeddings.BatchSize, cfg.Indexing.ParallelWorkers)

	vectorStore, vectorCloser := buildVectorStore(ctx, cfg)

	lexicalStore, err := lexical.New(cfg.Lexical.Path)
	if err != nil {
		return nil, err
	}

	stateStore, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, err
	}

	astSplitter, err := splitter.NewASTJavaSplitter()
	if err != nil {
		log.Printf("AST Java splitter unavailable, falling back to token splitter for .java files: %v", err)
		astSplitter = nil
	}
	splitCfg := splitter.Config{
		TokenChunkSize:    cfg.Chunking.TokenChunkSize,
		TokenMinChunkSize: cfg.Chunking.TokenMinChunkSize,
		TokenOverlap:      cfg.Chunking.TokenOverlap,
		MarkdownChunkSize: cfg.Chunking.MarkdownChunkSize,
		MarkdownOverlap:   cfg.Chunking.MarkdownOverlap,
		SentenceChunkSize: cfg.Chunking.SentenceChunkSize,
		SentenceOverlap:   cfg.Chunking.SentenceOverlap,
	}
	var pipeline splitter.Splitter = splitter.NewPipeline(splitCfg, astSplitter)

	sc := scanner.New(int64(cfg.Indexing.MaxFileSizeMB) * 1024 * 1024)

	orch := orchestrator.New(sc, pipeline, vectorStore, lexicalStore, stateStore, batcher, cfg.Indexing.ParallelWorkers)
	hybrid := fuser.New(vectorStore, lexicalStore, embeddingsClient)

	svc := knowledge.New(hybrid, vectorStore, embeddingsClient, orch)
	// The agent-framework config bag is supplied per-process by whatever
	// framework embeds this service; none is known at boot here.
	resolver := tenant.New(nil)

	return &Dependencies{
		Knowledge: svc,
		Tenant:    resolver,
		lexical:   lexicalStore,
		state:     stateStore,
		vector:    vectorCloser,
	}, nil
}

func buildVectorStore(ctx context.Context, cfg *config.Config) (vector.Store, closer) {
	store, err := vector.NewQdrantStore(ctx, cfg.VectorDB)
	if err != nil {
		log.Printf("Qdrant unreachable, falling back to no-op vector store: %v", err)
		return vector.NewNoopStore(), nil
	}
	return store, store
}

// Close releases every backing store's resources.
func (d *Dependencies) Close() {
	if d.vector != nil {
		if err := d.vector.Close(); err != nil {
			log.Printf("failed to close vector store: %v", err)
		}
	}
	if err := d.lexical.Close(); err != nil {
		log.Printf("failed to close lexical store: %v", err)
	}
	if err := d.state.Close(); err != nil {
		log.Printf("failed to close state store: %v", err)
	}
}
