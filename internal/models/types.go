package models

import (
	"time"

	"github.com/google/uuid"
)

// FileCategory classifies a file for routing and filtered search.
type FileCategory string

const (
	CategoryCode     FileCategory = "CODE"
	CategoryDocument FileCategory = "DOCUMENT"
	CategoryConfig   FileCategory = "CONFIG"
	CategoryOther    FileCategory = "OTHER"
)

// SymbolKind names the kind of symbol a chunk was extracted from. Only
// populated for AST-derived chunks; zero value for token/markdown/sentence
// chunks.
type SymbolKind string

const (
	SymbolClass      SymbolKind = "Class"
	SymbolInterface  SymbolKind = "Interface"
	SymbolMethod     SymbolKind = "Method"
	SymbolField      SymbolKind = "Field"
	SymbolEnum       SymbolKind = "Enum"
	SymbolAnnotation SymbolKind = "Annotation"
)

// Symbol describes the AST symbol a chunk was carved from.
type Symbol struct {
	Name   string     `json:"name,omitempty"`
	Kind   SymbolKind `json:"kind,omitempty"`
	Parent string     `json:"parent,omitempty"`
}

// Range is an inclusive 1-based line range.
type Range struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Chunk is the unit of retrieval: one piece of a file, scoped to a tenant.
type Chunk struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	FilePath string       `json:"file_path"`
	Category FileCategory `json:"category"`
	Language string       `json:"language,omitempty"`
	// Content is the vector-enriched projection ("文件: ... | 类型: ... |
	// 符号: ... | 所属: ...\n<raw>"), embedded and shown in formatted results.
	Content string `json:"content"`
	// FTSContent is the independent lexical-index projection
	// ("<basename>\n<symbolName> <symbolKind> <parentSymbol>\n<raw>"),
	// built so the basename carries extra term-frequency weight in bleve.
	FTSContent  string    `json:"fts_content,omitempty"`
	Symbol      Symbol    `json:"symbol,omitempty"`
	Range       Range     `json:"range"`
	ContentHash string    `json:"content_hash"`
	ChunkIndex  int       `json:"chunk_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewChunkID generates a fresh chunk identifier.
func NewChunkID() string {
	return uuid.New().String()
}

// FileIndexState is the per-file bookkeeping row used to decide whether a
// file needs reindexing during refresh.
type FileIndexState struct {
	UserID         string    `json:"user_id"`
	FilePath       string    `json:"file_path"`
	ContentHash    string    `json:"content_hash"`
	FileSize       int64     `json:"file_size"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}

// SearchResult pairs a chunk with the score it was retrieved at.
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
	// Source records which sub-query contributed this hit, for
	// diagnostics and dedup tie-breaking ("vector" or "fts").
	Source string `json:"source,omitempty"`
}

// RefreshCounters reports what a refresh run did.
type RefreshCounters struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
	Errors  int `json:"errors"`
}

// RefreshResult is the outcome of one orchestrator.Refresh call.
type RefreshResult struct {
	UserID    string          `json:"user_id"`
	Root      string          `json:"root"`
	Counters  RefreshCounters `json:"counters"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
}
