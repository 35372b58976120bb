package sync

import (
	"log/slog"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/domain/validator"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/storage"
)

// Options holds sync configuration for a single run.
type Options struct {
	// Year filters order history to one year. Zero syncs the
	// provider's default view, which is the current year.
	Year int

	// MaxPages caps the listing scan. Zero scans every page the
	// provider reports.
	MaxPages int

	// OnProgress, when non-nil, observes the run as it moves through
	// its stages.
	OnProgress providers.ProgressFunc
}

// Result holds the outcome of one sync run. OrdersFound counts orders
// discovered by the listing scan; OrdersDropped counts those that were
// discovered but not persisted, whether the detail fetch failed or the
// save did.
type Result struct {
	Provider      string
	Year          int
	RunID         int64
	OrdersFound   int
	OrdersSynced  int
	OrdersDropped int
	Findings      []validator.Finding
	Errors        []error
}

// Orchestrator runs the sync process for one provider: auth gate,
// order fetch, validation, persistence, run bookkeeping.
type Orchestrator struct {
	provider providers.Provider
	storage  storage.Repository
	logger   *slog.Logger
}

// NewOrchestrator creates a new sync orchestrator. store may be nil,
// in which case orders are fetched and validated but nothing is
// persisted and no run is tracked.
func NewOrchestrator(provider providers.Provider, store storage.Repository, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		provider: provider,
		storage:  store,
		logger:   logger,
	}
}
