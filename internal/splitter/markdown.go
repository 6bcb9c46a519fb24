package splitter

import (
	"strings"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// separators is the recursive-character splitting hierarchy: try the
// coarsest separator first, and only fall back to a finer one for pieces
// that are still too large.
var separators = []string{"\n\n", "\n", "。", "！", "？", ". ", ", ", " "}

// MarkdownSplitter recursively splits on a hierarchy of separators,
// coarsest first, producing chunks near chunkSize runes with chunkOverlap
// runes of carry-over between adjacent chunks.
type MarkdownSplitter struct {
	chunkSize int
	overlap   int
}

func NewMarkdownSplitter(chunkSize, overlap int) *MarkdownSplitter {
	return &MarkdownSplitter{chunkSize: chunkSize, overlap: overlap}
}

func (m *MarkdownSplitter) Split(path, language string, content []byte) ([]models.Chunk, error) {
	pieces := recursiveSplit(string(content), separators, m.chunkSize)
	merged := mergeWithOverlap(pieces, m.chunkSize, m.overlap)

	var chunks []models.Chunk
	line := 1
	for i, piece := range merged {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		lineCount := strings.Count(piece, "\n") + 1
		chunks = append(chunks, finalizeChunk(path, language, models.Chunk{
			Content:    piece,
			Range:      models.Range{StartLine: line, EndLine: line + lineCount - 1},
			ChunkIndex: i,
		}))
		line += lineCount
	}
	return chunks, nil
}

// recursiveSplit splits text on the first separator that actually divides
// it into pieces no larger than chunkSize, recursing with the remaining
// separators on any piece still too large. The final separator (" ") is
// guaranteed to terminate because len(piece) strictly decreases or the
// piece has no more spaces, in which case the piece is returned as-is.
func recursiveSplit(text string, seps []string, chunkSize int) []string {
	if len([]rune(text)) <= chunkSize || len(seps) == 0 {
		return []string{text}
	}

	sep := seps[0]
	rest := seps[1:]

	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return recursiveSplit(text, rest, chunkSize)
	}

	var out []string
	for _, part := range parts {
		if len([]rune(part)) > chunkSize {
			out = append(out, recursiveSplit(part, rest, chunkSize)...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// mergeWithOverlap greedily packs adjacent small pieces back together up to
// chunkSize, carrying overlap runes from the end of one merged chunk into
// the start of the next.
func mergeWithOverlap(pieces []string, chunkSize, overlap int) []string {
	var merged []string
	var current strings.Builder

	flush := func() string {
		s := current.String()
		current.Reset()
		return s
	}

	for _, piece := range pieces {
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(piece)) > chunkSize {
			done := flush()
			merged = append(merged, done)
			current.WriteString(tailRunes(done, overlap))
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(piece)
	}
	if current.Len() > 0 {
		merged = append(merged, flush())
	}
	return merged
}

func tailRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) == 0 {
		return ""
	}
	if n > len(r) {
		n = len(r)
	}
	return string(r[len(r)-n:])
}
