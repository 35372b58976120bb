package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	appsync "github.com/Nowaker/monarch-amazon-sync/internal/application/sync"
	"github.com/Nowaker/monarch-amazon-sync/internal/cli"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/config"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/logging"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

func main() {
	flags := cli.ParseSyncFlags()

	// Load configuration
	cfg := config.LoadOrEnv_WithPath(flags.ConfigPath)

	// Setup logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "sync")

	// Build the provider over the exported browser session
	jar, err := cli.LoadSessionJar(cfg)
	if err != nil {
		logger.Error("Failed to load session", slog.Any("error", err))
		os.Exit(1)
	}

	provider, err := cli.NewProvider(flags.Provider, cfg, jar, logger)
	if err != nil {
		logger.Error("Failed to create provider", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	opts := flags.ResolveOptions(cfg)

	cli.PrintHeader(provider.DisplayName(), opts.Year)
	cli.PrintConfiguration(provider.Name(), opts.Year, opts.MaxPages)

	if !flags.NoProgress {
		opts.OnProgress = newProgressRenderer()
	}

	orchestrator := appsync.NewOrchestrator(provider, store, logger)
	result, err := orchestrator.Run(context.Background(), opts)
	if err != nil {
		logger.Error("Sync failed", slog.Any("error", err))
		os.Exit(1)
	}

	cli.PrintSyncSummary(result, store)
}

// newProgressRenderer returns a callback that renders pipeline progress
// as a terminal bar. The page scan and the order download each get
// their own bar; a stage or total change starts a fresh one.
func newProgressRenderer() providers.ProgressFunc {
	var (
		bar   *progressbar.ProgressBar
		stage providers.Stage
		total int
	)

	return func(p providers.Progress) {
		if p.Stage == providers.StageComplete {
			if bar != nil {
				if err := bar.Finish(); err != nil {
					slog.Warn("Failed to finish progress bar", "error", err)
				}
				bar = nil
			}
			return
		}

		if bar == nil || p.Stage != stage || p.Total != total {
			stage = p.Stage
			total = p.Total
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription(fmt.Sprintf("%s %s", p.Provider, p.Stage)),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		if err := bar.Set(p.Complete); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}
