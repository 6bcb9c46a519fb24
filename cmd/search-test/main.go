package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jamaly87/codebase-semantic-search/internal/bootstrap"
	"github.com/jamaly87/codebase-semantic-search/internal/models"
	"github.com/jamaly87/codebase-semantic-search/pkg/config"
)

func main() {
	query := flag.String("query", "", "Search query")
	userID := flag.String("user", "default", "Tenant user id")
	fileTypeFlag := flag.String("file_type", "", "Restrict to CODE, DOCUMENT, or CONFIG")
	topK := flag.Int("top_k", 5, "Number of results to return")
	flag.Parse()

	if *query == "" {
		*query = "JWT token validation"
	}

	slog.Info("Starting knowledge search test", "user", *userID, "query", *query)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		slog.Error("Failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	var fileType *models.FileCategory
	switch *fileTypeFlag {
	case "":
	case "CODE":
		cat := models.CategoryCode
		fileType = &cat
	case "DOCUMENT":
		cat := models.CategoryDocument
		fileType = &cat
	case "CONFIG":
		cat := models.CategoryConfig
		fileType = &cat
	default:
		slog.Error("Invalid file_type", "file_type", *fileTypeFlag)
		os.Exit(1)
	}

	start := time.Now()
	results, err := deps.Knowledge.Search(ctx, *userID, *query, *topK, fileType)
	if err != nil {
		slog.Error("Search failed", "error", err)
		os.Exit(1)
	}
	duration := time.Since(start)

	slog.Info("Search completed", "duration", duration, "results_found", len(results))

	if len(results) == 0 {
		slog.Warn("No results found")
		return
	}

	for i, result := range results {
		chunk := result.Chunk

		location := fmt.Sprintf("%s:%d-%d", chunk.FilePath, chunk.Range.StartLine, chunk.Range.EndLine)
		if chunk.Symbol.Name != "" {
			location += fmt.Sprintf(" (%s %s)", chunk.Symbol.Kind, chunk.Symbol.Name)
		}

		slog.Info("Search result",
			"rank", i+1,
			"location", location,
			"score", result.Score,
			"source", result.Source,
			"language", chunk.Language,
			"category", chunk.Category)
	}

	resultsPerSec := 0.0
	if duration.Seconds() > 0 {
		resultsPerSec = float64(len(results)) / duration.Seconds()
	}

	slog.Info("Search performance",
		"search_time", duration,
		"results_count", len(results),
		"results_per_sec", resultsPerSec)
}
