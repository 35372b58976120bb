package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/domain/validator"
)

// ErrAuthRequired marks a sync that was refused because the provider
// session failed its auth probe. Callers can surface it as a re-login
// prompt instead of a generic failure.
var ErrAuthRequired = errors.New("provider session is not authenticated")

// Run executes one full sync: probe auth, scan listings, download
// details, validate, persist. The returned Result is non-nil exactly
// when err is nil.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		Provider: o.provider.Name(),
		Year:     opts.Year,
		Errors:   make([]error, 0),
	}

	o.logger.Debug("Starting sync",
		"provider", o.provider.DisplayName(),
		"year", opts.Year,
		"max_pages", opts.MaxPages,
	)

	// 1. Gate on the auth probe. Scanning with a dead session would
	// parse login redirects as order history, so anything short of
	// success is fatal before the first listing page.
	probe := o.provider.ProbeAuth(ctx)
	if probe.Status != providers.AuthSuccess {
		return nil, fmt.Errorf("%s auth probe returned %q: %w", o.provider.Name(), probe.Status, ErrAuthRequired)
	}

	o.logger.Debug("Auth probe passed", "starting_year", probe.StartingYear)

	// 2. Start run tracking. Tracking failure shouldn't block the sync.
	if o.storage != nil {
		runID, err := o.storage.StartSyncRun(o.provider.Name(), opts.Year)
		if err != nil {
			o.logger.Warn("Failed to start sync run tracking", "error", err)
		} else {
			result.RunID = runID
		}
	}

	// 3. Fetch orders from the provider.
	orders, found, err := o.fetchOrders(ctx, opts)
	if err != nil {
		o.failRun(result.RunID, err)
		return nil, err
	}
	result.OrdersFound = found
	result.OrdersDropped = found - len(orders)

	// 4. Validate the batch. Findings are diagnostics, never fatal:
	// heuristic extraction against drifted markup produces odd data,
	// and odd data is still worth keeping.
	validation := validator.ValidateOrders(orders)
	result.Findings = validation.Findings
	for _, finding := range validation.Findings {
		o.logger.Warn("Validation finding",
			"order_id", finding.OrderID,
			"code", finding.Code,
			"detail", finding.Detail,
		)
	}

	// 5. Persist each surviving order. A failed save drops that order
	// and nothing else.
	for _, order := range orders {
		if err := o.recordOrder(order, opts, result.RunID); err != nil {
			o.logger.Error("Failed to save order", "order_id", order.ID, "error", err)
			result.OrdersDropped++
			result.Errors = append(result.Errors, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		result.OrdersSynced++
	}

	// 6. Complete run tracking.
	if o.storage != nil && result.RunID > 0 {
		if err := o.storage.CompleteSyncRun(result.RunID, result.OrdersFound, result.OrdersSynced, result.OrdersDropped); err != nil {
			o.logger.Warn("Failed to complete sync run tracking", "error", err)
		}
	}

	o.logger.Info("Sync complete",
		"provider", o.provider.Name(),
		"found", result.OrdersFound,
		"synced", result.OrdersSynced,
		"dropped", result.OrdersDropped,
	)

	return result, nil
}

// fetchOrders runs the provider pipeline and reports how many orders
// the listing scan discovered. The pipeline returns only orders whose
// detail fetch succeeded, so the discovered count is observed from the
// download-stage progress totals rather than the result length.
func (o *Orchestrator) fetchOrders(ctx context.Context, opts Options) ([]providers.Order, int, error) {
	found := 0
	onProgress := func(p providers.Progress) {
		if p.Stage == providers.StageDownload && p.Total > found {
			found = p.Total
		}
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}

	orders, err := o.provider.FetchOrders(ctx, providers.FetchOptions{
		Year:       opts.Year,
		MaxPages:   opts.MaxPages,
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	if len(orders) > found {
		found = len(orders)
	}

	o.logger.Debug("Fetched orders", "found", found, "fetched", len(orders))

	return orders, found, nil
}

// failRun marks the tracked run as failed. Safe to call with runID 0.
func (o *Orchestrator) failRun(runID int64, cause error) {
	if o.storage == nil || runID == 0 {
		return
	}
	if err := o.storage.FailSyncRun(runID, cause.Error()); err != nil {
		o.logger.Warn("Failed to mark sync run as failed", "error", err)
	}
}
