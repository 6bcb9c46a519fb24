package splitter

import (
	"strings"

	"github.com/jamaly87/codebase-semantic-search/internal/models"
)

// sentenceEnd reports whether r ends a sentence, covering both
// Western and CJK terminators so plain-text/document content splits on
// natural boundaries rather than arbitrary character counts.
func sentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// SentenceSplitter aggregates sentences into chunks near chunkSize runes,
// used for plain-text and pre-extracted document bytes (.txt/.doc/.docx/.pdf
// per the Non-goal that rules out rich binary parsing).
type SentenceSplitter struct {
	chunkSize int
	overlap   int
}

func NewSentenceSplitter(chunkSize, overlap int) *SentenceSplitter {
	return &SentenceSplitter{chunkSize: chunkSize, overlap: overlap}
}

func (s *SentenceSplitter) Split(path, language string, content []byte) ([]models.Chunk, error) {
	sentences := splitSentences(string(content))

	var groups []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(sentence)) > s.chunkSize {
			groups = append(groups, current.String())
			overlap := tailRunes(current.String(), s.overlap)
			current.Reset()
			current.WriteString(overlap)
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		groups = append(groups, current.String())
	}

	var chunks []models.Chunk
	line := 1
	for i, group := range groups {
		if strings.TrimSpace(group) == "" {
			continue
		}
		lineCount := strings.Count(group, "\n") + 1
		chunks = append(chunks, finalizeChunk(path, language, models.Chunk{
			Content:    group,
			Range:      models.Range{StartLine: line, EndLine: line + lineCount - 1},
			ChunkIndex: i,
		}))
		line += lineCount
	}
	return chunks, nil
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if sentenceEnd(r) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}
