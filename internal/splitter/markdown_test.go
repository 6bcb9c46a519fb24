package splitter

import (
	"strings"
	"testing"
)

func TestMarkdownSplitter_RespectsParagraphBoundaries(t *testing.T) {
	s := NewMarkdownSplitter(40, 5)

	content := "# Title\n\nFirst paragraph with some words.\n\nSecond paragraph with more words here.\n\nThird paragraph wraps things up nicely."

	chunks, err := s.Split("README.md", "markdown", []byte(content))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			t.Errorf("unexpected blank chunk")
		}
	}
}

func TestMarkdownSplitter_OverlapCarriesBetweenChunks(t *testing.T) {
	s := NewMarkdownSplitter(20, 8)

	content := strings.Repeat("word ", 100)
	chunks, err := s.Split("notes.md", "markdown", []byte(content))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Content is "<header>\n<raw>"; the header holds no newline.
	raw := func(content string) string { return content[strings.Index(content, "\n")+1:] }
	first := []rune(raw(chunks[0].Content))
	tail := string(first[len(first)-8:])
	if !strings.HasPrefix(raw(chunks[1].Content), tail) {
		t.Errorf("expected chunk 1 to start with the last 8 runes of chunk 0 (%q), got %q", tail, raw(chunks[1].Content))
	}
}
