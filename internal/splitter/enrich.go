package splitter

import (
	"fmt"
	"path/filepath"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// enrichedContent prefixes a chunk's raw content with a natural-language
// metadata header before it is embedded, per the universal enrichment step
// of the splitter pipeline. The lexical index is built from ftsContent.
func enrichedContent(path string, symbol models.Symbol, raw string) string {
	parent := symbol.Parent
	if parent == "" {
		parent = "-"
	}
	name := symbol.Name
	if name == "" {
		name = filepath.Base(path)
	}
	kind := symbol.Kind
	if kind == "" {
		kind = "Block"
	}
	return fmt.Sprintf("文件: %s | 类型: %s | 符号: %s | 所属: %s\n%s", path, kind, name, parent, raw)
}

// ftsContent builds the lexical-index projection independently of
// enrichedContent: the basename leads so it carries extra term-frequency
// weight in the bleve index, followed by the symbol line and the raw body.
func ftsContent(path string, symbol models.Symbol, raw string) string {
	name := symbol.Name
	if name == "" {
		name = filepath.Base(path)
	}
	kind := symbol.Kind
	if kind == "" {
		kind = "Block"
	}
	parent := symbol.Parent
	if parent == "" {
		parent = "-"
	}
	return fmt.Sprintf("%s\n%s %s %s\n%s", filepath.Base(path), name, kind, parent, raw)
}
