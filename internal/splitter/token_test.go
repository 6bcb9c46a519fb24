package splitter

import (
	"strings"
	"testing"
)

func TestTokenSplitter_SplitsLargeFileIntoMultipleChunks(t *testing.T) {
	s := NewTokenSplitter(50, 5, 10)

	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("line of go source code that takes up some tokens\n")
	}

	chunks, err := s.Split("big.go", "go", []byte(b.String()))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for large input, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Errorf("chunk %d has ChunkIndex %d, want stable emission order", i, c.ChunkIndex)
		}
		if c.ContentHash == "" {
			t.Errorf("chunk %d missing content hash", i)
		}
	}
}

func TestTokenSplitter_SmallFileIsSingleChunk(t *testing.T) {
	s := NewTokenSplitter(2000, 100, 200)

	chunks, err := s.Split("small.go", "go", []byte("package main\n\nfunc main() {}\n"))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small input, got %d", len(chunks))
	}
}

func TestTokenSplitter_BlankContentYieldsNoChunks(t *testing.T) {
	s := NewTokenSplitter(2000, 100, 200)

	chunks, err := s.Split("blank.go", "go", []byte("   \n\n  \n"))
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank content, got %d", len(chunks))
	}
}
