// Package splitter implements the language-aware chunk splitter pipeline:
// a factory selects an AST-symbol, token, recursive-character, or
// sentence-boundary splitter per file extension, each with a declared
// fallback chain so a parse failure never aborts indexing of a file.
package splitter

import (
	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// Splitter turns one file's raw bytes into an ordered list of chunks.
// Implementations never mutate content and never return a partial chunk
// list alongside a non-nil error.
type Splitter interface {
	Split(path string, language string, content []byte) ([]models.Chunk, error)
}

// Config bundles the tunables each splitter implementation reads from.
type Config struct {
	TokenChunkSize      int
	TokenMinChunkSize   int
	TokenOverlap        int
	MarkdownChunkSize   int
	MarkdownOverlap     int
	SentenceChunkSize   int
	SentenceOverlap     int
}

// DefaultConfig returns the token/char budgets used for each splitter kind
// when no override is configured.
func DefaultConfig() Config {
	return Config{
		TokenChunkSize:    2000,
		TokenMinChunkSize: 100,
		TokenOverlap:      200,
		MarkdownChunkSize: 500,
		MarkdownOverlap:   50,
		SentenceChunkSize: 500,
		SentenceOverlap:   50,
	}
}

// Pipeline is the factory: given a file's language/extension it returns the
// splitter to try first, plus its fallback chain.
type Pipeline struct {
	cfg     Config
	ast     Splitter
	token   Splitter
	markup  Splitter
	sentenc Splitter
}

// NewPipeline builds the full splitter factory. astSplitter may be nil if
// Tree-sitter initialization failed; the pipeline then routes Java straight
// to the token splitter.
func NewPipeline(cfg Config, astSplitter Splitter) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		ast:     astSplitter,
		token:   NewTokenSplitter(cfg.TokenChunkSize, cfg.TokenMinChunkSize, cfg.TokenOverlap),
		markup:  NewMarkdownSplitter(cfg.MarkdownChunkSize, cfg.MarkdownOverlap),
		sentenc: NewSentenceSplitter(cfg.SentenceChunkSize, cfg.SentenceOverlap),
	}
}

// Split picks a splitter by extension/language and applies it, falling back
// down the chain on error. AST parse failures always recover via the token
// splitter per spec; they never escape this method.
func (p *Pipeline) Split(path, language string, content []byte) ([]models.Chunk, error) {
	chain := p.chainFor(language)
	var lastErr error
	for _, s := range chain {
		if s == nil {
			continue
		}
		chunks, err := s.Split(path, language, content)
		if err == nil {
			return chunks, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (p *Pipeline) chainFor(language string) []Splitter {
	switch language {
	case "java":
		return []Splitter{p.ast, p.token}
	case "markdown":
		return []Splitter{p.markup, p.token}
	case "text", "doc", "docx", "pdf":
		return []Splitter{p.sentenc, p.token}
	default:
		return []Splitter{p.token}
	}
}
