package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jamaly87/codebase-semantic-search/internal/bootstrap"
	"github.com/jamaly87/codebase-semantic-search/pkg/config"
)

func main() {
	repoPath, err := os.Getwd()
	if err != nil {
		slog.Error("Failed to get current directory", "error", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		repoPath = os.Args[1]
	}

	userID := "default"
	if len(os.Args) > 2 {
		userID = os.Args[2]
	}

	slog.Info("Starting workspace refresh", "workspace", repoPath, "user", userID)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("Configuration loaded",
		"model", cfg.Embeddings.Model,
		"batch_size", cfg.Embeddings.BatchSize,
		"workers", cfg.Indexing.ParallelWorkers)

	ctx := context.Background()
	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		slog.Error("Failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	slog.Info("Refresh starting")
	started := time.Now()

	if err := deps.Knowledge.Refresh(userID, repoPath); err != nil {
		slog.Error("Refresh failed", "error", err, "workspace", repoPath, "duration", time.Since(started))
		os.Exit(1)
	}

	slog.Info("Refresh completed successfully", "workspace", repoPath, "duration", time.Since(started))
}
