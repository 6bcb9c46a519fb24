package embeddings

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// EmbeddingGenerator interface for generating embeddings
type EmbeddingGenerator interface {
	GenerateEmbedding(text string) ([]float32, error)
	GenerateEmbeddings(texts []string) ([][]float32, error)
}

// Batcher handles batch processing of embeddings
type Batcher struct {
	client    EmbeddingGenerator
	batchSize int
	workers   int
}

// NewBatcher creates a new embedding batcher
func NewBatcher(client EmbeddingGenerator, batchSize, workers int) *Batcher {
	if workers <= 0 {
		workers = 1
	}
	return &Batcher{
		client:    client,
		batchSize: batchSize,
		workers:   workers,
	}
}

// ProcessTexts generates embeddings for a slice of chunk texts, preserving
// input order in the returned slice.
func (b *Batcher) ProcessTexts(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	log.Printf("Generating embeddings for %d chunks using %d workers...", len(texts), b.workers)
	startTime := time.Now()

	batches := b.createBatches(texts)
	log.Printf("Split into %d batches of ~%d chunks each", len(batches), b.batchSize)

	results := make([][][]float32, len(batches))
	errors := make([]error, len(batches))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, b.workers)

	for i, batch := range batches {
		wg.Add(1)
		go func(idx int, batch []string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			embeddings, err := b.client.GenerateEmbeddings(batch)
			results[idx] = embeddings
			errors[idx] = err
		}(i, batch)
	}

	wg.Wait()

	for i, err := range errors {
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i, err)
		}
	}

	var all [][]float32
	for _, batch := range results {
		all = append(all, batch...)
	}

	duration := time.Since(startTime)
	embeddingsPerSec := float64(len(texts)) / duration.Seconds()
	log.Printf("Generated %d embeddings in %v (%.1f embeddings/sec)",
		len(texts), duration, embeddingsPerSec)

	return all, nil
}

// createBatches splits texts into batches
func (b *Batcher) createBatches(texts []string) [][]string {
	var batches [][]string

	for i := 0; i < len(texts); i += b.batchSize {
		end := i + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[i:end])
	}

	return batches
}

// EstimateTime estimates the time to process a given number of chunks
func (b *Batcher) EstimateTime(numChunks int) time.Duration {
	// Based on nomic-embed-text performance: ~1000 embeddings/sec on CPU
	// With batch processing and parallel workers, we can achieve ~500-800 embeddings/sec
	embeddingsPerSecond := 600.0 // Conservative estimate

	seconds := float64(numChunks) / embeddingsPerSecond
	return time.Duration(seconds * float64(time.Second))
}
