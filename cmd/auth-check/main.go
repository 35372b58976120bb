// Command auth-check probes every enabled provider and reports whether
// the exported browser session is still signed in. Exits non-zero when
// any provider needs a fresh login.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/cli"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/config"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/logging"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		timeout    = flag.Duration("timeout", 2*time.Minute, "Overall probe timeout")
		verbose    = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	cfg := config.LoadOrEnv_WithPath(*configPath)

	loggingCfg := cfg.Observability.Logging
	if *verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "auth-check")

	registry, err := cli.BuildRegistry(cfg, logger)
	if err != nil {
		logger.Error("Failed to build providers", slog.Any("error", err))
		os.Exit(1)
	}

	if len(registry.List()) == 0 {
		logger.Error("No providers enabled in config")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := registry.ProbeAll(ctx)

	exitCode := 0
	for _, name := range registry.List() {
		probe := results[name]

		provider, err := registry.Get(name)
		if err != nil {
			continue
		}

		cli.PrintAuthStatus(provider.DisplayName(), string(probe.Status), probe.StartingYear)
		if probe.Status != providers.AuthSuccess {
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}
