package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the knowledge index server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Indexing   IndexingConfig   `yaml:"indexing"`
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	VectorDB   VectorDBConfig   `yaml:"vectordb"`
	Lexical    LexicalConfig    `yaml:"lexical"`
	State      StateConfig      `yaml:"state"`
	Logging    LoggingConfig    `yaml:"logging"`
	Ignore     IgnoreConfig     `yaml:"ignore_patterns"`
	Languages  LanguagesConfig  `yaml:"supported_languages"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ChunkingConfig tunes the splitter pipeline's per-kind size budgets.
type ChunkingConfig struct {
	TokenChunkSize    int `yaml:"token_chunk_size"`
	TokenMinChunkSize int `yaml:"token_min_chunk_size"`
	TokenOverlap      int `yaml:"token_overlap"`
	MarkdownChunkSize int `yaml:"markdown_chunk_size"`
	MarkdownOverlap   int `yaml:"markdown_overlap"`
	SentenceChunkSize int `yaml:"sentence_chunk_size"`
	SentenceOverlap   int `yaml:"sentence_overlap"`
}

type IndexingConfig struct {
	MaxFileSizeMB   int  `yaml:"max_file_size_mb"`
	ParallelWorkers int  `yaml:"parallel_workers"`
	Incremental     bool `yaml:"incremental"`
}

type SearchConfig struct {
	MaxResults        int     `yaml:"max_results"`
	MinScoreThreshold float64 `yaml:"min_score_threshold"`
}

type EmbeddingsConfig struct {
	Model         string `yaml:"model"`
	OllamaURL     string `yaml:"ollama_url"`
	BatchSize     int    `yaml:"batch_size"`
	Dimensions    int    `yaml:"dimensions"`     // Target MRL dimension (64, 128, 256, 512, 768)
	FullDimension int    `yaml:"full_dimension"` // Full embedding dimension from model (768 for nomic)
	ContextLength int    `yaml:"context_length"`
	Normalize     bool   `yaml:"normalize"`
	UseMRL        bool   `yaml:"use_mrl"` // Enable MRL dimension truncation
}

type VectorDBConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	CollectionName string `yaml:"collection_name"`
	DistanceMetric string `yaml:"distance_metric"`
	VectorSize     int    `yaml:"vector_size"`
	OnDiskPayload  bool   `yaml:"on_disk_payload"`
}

// LexicalConfig configures the bleve-backed full-text store. Path == ""
// means an in-memory index (used in tests and single-process demos); any
// other value is a directory bleve persists to.
type LexicalConfig struct {
	Path string `yaml:"path"`
}

// StateConfig configures the sqlite-backed file_index_state store.
type StateConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Directory  string `yaml:"directory"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type IgnoreConfig struct {
	Patterns []string `yaml:"patterns"`
}

type LanguagesConfig struct {
	Java       LanguageConfig `yaml:"java"`
	TypeScript LanguageConfig `yaml:"typescript"`
	JavaScript LanguageConfig `yaml:"javascript"`
}

type LanguageConfig struct {
	Extensions []string `yaml:"extensions"`
	Parser     string   `yaml:"parser"`
}

// Load loads configuration from file or returns defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	cfg.Logging.Directory = expandPath(cfg.Logging.Directory)
	cfg.Lexical.Path = expandPath(cfg.Lexical.Path)
	cfg.State.Path = expandPath(cfg.State.Path)

	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "knowledge-index",
			Version: "0.0.1",
		},
		Chunking: ChunkingConfig{
			TokenChunkSize:    2000,
			TokenMinChunkSize: 100,
			TokenOverlap:      200,
			MarkdownChunkSize: 500,
			MarkdownOverlap:   50,
			SentenceChunkSize: 500,
			SentenceOverlap:   50,
		},
		Indexing: IndexingConfig{
			MaxFileSizeMB:   1,
			ParallelWorkers: runtime.NumCPU(),
			Incremental:     true,
		},
		Search: SearchConfig{
			MaxResults:        5,
			MinScoreThreshold: 0.5,
		},
		Embeddings: EmbeddingsConfig{
			Model:         "nomic-embed-text",
			OllamaURL:     "http://localhost:11434",
			BatchSize:     16,
			Dimensions:    256, // MRL target dimension (3x smaller, ~95% accuracy)
			FullDimension: 768, // Full dimension from nomic-embed-text
			ContextLength: 8192,
			Normalize:     true,
			UseMRL:        true,
		},
		VectorDB: VectorDBConfig{
			Host:           "localhost",
			Port:           6334,
			CollectionName: "copilot_knowledge",
			DistanceMetric: "cosine",
			VectorSize:     256, // Match MRL dimension
			OnDiskPayload:  true,
		},
		Lexical: LexicalConfig{
			Path: "~/.knowledge-index/fts",
		},
		State: StateConfig{
			Path: "~/.knowledge-index/state.db",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Directory:  "~/.knowledge-index/logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Ignore: IgnoreConfig{
			Patterns: []string{
				"target/**",
				"build/**",
				"dist/**",
				"out/**",
				"node_modules/**",
				".pnp/**",
				"**/*.min.js",
				"**/*.bundle.js",
				".git/**",
				".idea/**",
				".vscode/**",
				"*.iml",
			},
		},
		Languages: LanguagesConfig{
			Java: LanguageConfig{
				Extensions: []string{".java"},
				Parser:     "tree-sitter-java",
			},
			TypeScript: LanguageConfig{
				Extensions: []string{".ts", ".tsx"},
				Parser:     "none",
			},
			JavaScript: LanguageConfig{
				Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
				Parser:     "none",
			},
		},
	}
}

func getConfigPath() string {
	if path := os.Getenv("KNOWLEDGE_INDEX_CONFIG"); path != "" {
		return path
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}

	home, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(home, ".knowledge-index", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		cfg.Embeddings.OllamaURL = url
	}
	if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
		cfg.Embeddings.Model = model
	}
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		cfg.VectorDB.Host = host
	}
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
