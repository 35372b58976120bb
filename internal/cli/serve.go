package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nowaker/monarch-amazon-sync/internal/api"
	"github.com/Nowaker/monarch-amazon-sync/internal/application/service"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/config"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/logging"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = config value, then 8080)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunServe runs the API server.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	// Set up logging
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Build the sync service when a browser session is available. The
	// API still serves stored orders without one; sync and auth
	// endpoints are simply not registered.
	var syncService *service.SyncService
	registry, err := BuildRegistry(cfg, logger)
	if err != nil {
		logger.Warn("sync endpoints disabled", slog.Any("error", err))
	} else {
		syncService = service.NewSyncService(registry, store, logger)
		syncService.StartBackgroundCleanup(5 * time.Minute)
		defer syncService.StopBackgroundCleanup()
	}

	// Create API config
	apiCfg := api.DefaultConfig()
	if cfg.API.Port > 0 {
		apiCfg.Port = cfg.API.Port
	}
	if flags.Port > 0 {
		apiCfg.Port = flags.Port
	}
	if len(cfg.API.AllowedOrigins) > 0 {
		apiCfg.AllowedOrigins = cfg.API.AllowedOrigins
	}

	// Create and start server
	server := api.NewServer(apiCfg, store, syncService, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}
