package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/recipebox/internal/config"
	"github.com/lehigh-university-libraries/recipebox/internal/extraction"
	"github.com/lehigh-university-libraries/recipebox/internal/pipeline"
	"github.com/lehigh-university-libraries/recipebox/internal/storage"
	"github.com/lehigh-university-libraries/recipebox/internal/transcribe"
)

// app holds the wired services shared by subcommands
type app struct {
	cfg      *config.Config
	store    *storage.SQLite
	pipeline *pipeline.Pipeline
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	slog.Debug("Configured extraction",
		"provider", cfg.Extraction.Provider,
		"model", cfg.Extraction.Model,
		"live", cfg.ExtractionLive(),
		"database", cfg.Storage.DatabasePath)

	return &app{
		cfg:      cfg,
		store:    store,
		pipeline: pipeline.New(transcribe.New(cfg), extraction.New(cfg)),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("Closing database failed", "err", err)
	}
}
