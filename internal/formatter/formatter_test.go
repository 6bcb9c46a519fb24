package formatter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

func TestFormatResults_JoinsWithSeparator(t *testing.T) {
	out := FormatResults([]models.SearchResult{
		{Chunk: models.Chunk{FilePath: "a.go", Content: "package a"}},
		{Chunk: models.Chunk{FilePath: "b.go", Content: "package b"}},
	})
	require.Equal(t, "文件: a.go\n内容:\npackage a\n\n---\n\n文件: b.go\n内容:\npackage b", out)
}

func TestFormatResults_MissingPathRendersUnknown(t *testing.T) {
	out := FormatResults([]models.SearchResult{{Chunk: models.Chunk{Content: "x"}}})
	require.Equal(t, "文件: unknown\n内容:\nx", out)
}

func TestFormatResults_EmptyInputYieldsEmptyString(t *testing.T) {
	require.Equal(t, "", FormatResults(nil))
}
