// Package formatter renders search results into the plain-text context
// block handed to the calling model.
package formatter

import (
	"strings"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// FormatResults joins each result into a "文件: ...\n内容:\n..." block,
// separated by "\n\n---\n\n". A result with no file path renders as
// "unknown".
func FormatResults(results []models.SearchResult) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		path := r.Chunk.FilePath
		if path == "" {
			path = "unknown"
		}
		var b strings.Builder
		b.WriteString("文件: ")
		b.WriteString(path)
		b.WriteString("\n内容:\n")
		b.WriteString(r.Chunk.Content)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
