package splitter

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// TokenSplitter is the default splitter: newline-respecting, token-aware
// windows sized against a real model tokenizer, with forward-merging of
// undersized trailing chunks.
type TokenSplitter struct {
	tokenizer    *tiktoken.Tiktoken
	chunkSize    int
	minChunkSize int
	overlap      int
}

// NewTokenSplitter builds a token splitter over the cl100k_base encoding,
// the same encoding family used by most modern chat models.
func NewTokenSplitter(chunkSize, minChunkSize, overlap int) *TokenSplitter {
	tokenizer, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// GetEncoding only fails for an unknown encoding name, which is a
		// programmer error, not a runtime condition callers recover from.
		panic(fmt.Sprintf("splitter: failed to load cl100k_base encoding: %v", err))
	}
	return &TokenSplitter{
		tokenizer:    tokenizer,
		chunkSize:    chunkSize,
		minChunkSize: minChunkSize,
		overlap:      overlap,
	}
}

func (t *TokenSplitter) Split(path, language string, content []byte) ([]models.Chunk, error) {
	lines := strings.Split(string(content), "\n")

	var chunks []models.Chunk
	var current []string
	var currentTokens int
	startLine := 1
	index := 0

	flush := func(start, end int) {
		text := strings.Join(current, "\n")
		if strings.TrimSpace(text) == "" {
			return
		}
		if t.countTokens(text) < t.minChunkSize && len(chunks) > 0 {
			// Merge undersized trailing content into the previous chunk
			// rather than emitting a near-empty chunk.
			prev := chunks[len(chunks)-1]
			prev.Content = prev.Content + "\n" + text
			prev.Range.EndLine = end
			chunks[len(chunks)-1] = prev
			return
		}
		chunks = append(chunks, models.Chunk{
			Content:    text,
			Range:      models.Range{StartLine: start, EndLine: end},
			ChunkIndex: index,
		})
		index++
	}

	for i, line := range lines {
		lineTokens := t.countTokens(line)
		if currentTokens+lineTokens > t.chunkSize && len(current) > 0 {
			flush(startLine, i)
			overlapLines := t.overlapTail(current)
			current = overlapLines
			currentTokens = t.countTokens(strings.Join(current, "\n"))
			startLine = i - len(overlapLines) + 1
			if startLine < 1 {
				startLine = 1
			}
		}
		current = append(current, line)
		currentTokens += lineTokens
	}
	if len(current) > 0 {
		flush(startLine, len(lines))
	}

	for i := range chunks {
		chunks[i] = finalizeChunk(path, language, chunks[i])
	}
	return chunks, nil
}

func (t *TokenSplitter) countTokens(text string) int {
	return len(t.tokenizer.Encode(text, nil, nil))
}

// overlapTail returns the trailing lines of a chunk worth roughly
// t.overlap tokens, used to seed the next window.
func (t *TokenSplitter) overlapTail(lines []string) []string {
	if t.overlap <= 0 || len(lines) == 0 {
		return nil
	}
	var tail []string
	budget := 0
	for i := len(lines) - 1; i >= 0 && budget < t.overlap; i-- {
		budget += t.countTokens(lines[i])
		tail = append([]string{lines[i]}, tail...)
	}
	return tail
}

func finalizeChunk(path, language string, c models.Chunk) models.Chunk {
	c.FilePath = path
	c.Language = language
	c.ContentHash = contentHash(c.Content)
	raw := c.Content
	c.FTSContent = ftsContent(path, c.Symbol, raw)
	c.Content = enrichedContent(path, c.Symbol, raw)
	return c
}

func contentHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
