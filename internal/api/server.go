// Package api exposes synced orders and sync jobs over HTTP.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/api/handlers"
	"github.com/Nowaker/monarch-amazon-sync/internal/api/middleware"
	"github.com/Nowaker/monarch-amazon-sync/internal/application/service"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config      Config
	engine      *gin.Engine
	httpServer  *http.Server
	logger      *slog.Logger
	repo        storage.Repository
	syncService *service.SyncService
}

// NewServer creates a new API server.
// If syncService is nil, sync and auth endpoints will not be available.
func NewServer(cfg Config, repo storage.Repository, syncService *service.SyncService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:      cfg,
		engine:      gin.New(),
		logger:      logger,
		repo:        repo,
		syncService: syncService,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(middleware.Logging(s.logger, "/health"))

	s.engine.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Check)

	api := s.engine.Group("/api")

	// Orders
	ordersHandler := handlers.NewOrdersHandler(s.repo)
	api.GET("/orders", ordersHandler.List)
	api.GET("/orders/:id", ordersHandler.Get)

	// Items
	itemsHandler := handlers.NewItemsHandler(s.repo)
	api.GET("/items/search", itemsHandler.Search)

	// Sync runs (historical)
	runsHandler := handlers.NewRunsHandler(s.repo)
	api.GET("/runs", runsHandler.List)
	api.GET("/runs/:id", runsHandler.Get)

	// Stats
	statsHandler := handlers.NewStatsHandler(s.repo)
	api.GET("/stats", statsHandler.Get)

	// Live sync jobs and provider auth
	if s.syncService != nil {
		syncHandler := handlers.NewSyncHandler(s.syncService)
		api.POST("/sync", syncHandler.StartSync)
		api.GET("/sync", syncHandler.ListAllSyncs)
		api.GET("/sync/active", syncHandler.ListActiveSyncs)
		api.GET("/sync/:jobId", syncHandler.GetSyncStatus)
		api.DELETE("/sync/:jobId", syncHandler.CancelSync)

		authHandler := handlers.NewAuthHandler(s.syncService)
		api.GET("/auth", authHandler.List)
		api.GET("/auth/:provider", authHandler.Get)
	}
}

// Start starts the HTTP server and blocks until it is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.engine
}
