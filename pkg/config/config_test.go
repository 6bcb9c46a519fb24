package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_HasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 256, cfg.Embeddings.Dimensions)
	require.True(t, cfg.Embeddings.UseMRL)
	require.Equal(t, 6334, cfg.VectorDB.Port)
	require.Equal(t, 5, cfg.Search.MaxResults)
}

func TestApplyEnvOverrides_OverridesOllamaURL(t *testing.T) {
	t.Setenv("OLLAMA_URL", "http://example.test:11434")
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	require.Equal(t, "http://example.test:11434", cfg.Embeddings.OllamaURL)
}

func TestApplyEnvOverrides_OverridesQdrantHost(t *testing.T) {
	t.Setenv("QDRANT_HOST", "qdrant.internal")
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	require.Equal(t, "qdrant.internal", cfg.VectorDB.Host)
}

func TestExpandPath_ExpandsHomeDirectory(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got := expandPath("~/.knowledge-index/state.db")
	require.Contains(t, got, home)
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("search:\n  max_results: 10\n"), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, loadFromFile(cfg, path))
	require.Equal(t, 10, cfg.Search.MaxResults)
}
