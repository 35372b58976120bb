package scrape

import (
	"context"
	"log/slog"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

// Pipeline bundles everything one provider needs for a full order
// sync. Provider packages build one per FetchOrders call and delegate
// to Run, keeping the listing-then-download control flow in exactly
// one place.
type Pipeline struct {
	Provider    string
	Fetcher     DocumentFetcher
	Listing     ListingSource
	Detail      DetailFunc
	Concurrency int
	Logger      *slog.Logger
}

// Run executes the listing scan followed by the bounded detail fetch,
// reporting progress through opts.OnProgress. A listing failure is
// fatal for the provider; detail failures only shrink the result set.
// The final progress snapshot always reports every discovered order as
// complete, even when some were dropped.
func (p Pipeline) Run(ctx context.Context, opts providers.FetchOptions) ([]providers.Order, error) {
	report := func(stage providers.Stage, total, complete int) {
		if opts.OnProgress == nil {
			return
		}
		opts.OnProgress(providers.Progress{
			Provider: p.Provider,
			Stage:    stage,
			Total:    total,
			Complete: complete,
		})
	}

	orders, err := CollectOrders(ctx, p.Fetcher, p.Listing, opts.MaxPages, func(page, totalPages int) {
		report(providers.StagePageScan, totalPages, page)
	})
	if err != nil {
		return nil, err
	}

	p.Logger.Info("listing scan complete",
		slog.String("provider", p.Provider),
		slog.Int("orders", len(orders)),
	)

	report(providers.StageDownload, len(orders), 0)

	results := FetchDetails(ctx, orders, p.Concurrency, p.Detail, p.Logger, func(total, complete int) {
		report(providers.StageDownload, total, complete)
	})

	report(providers.StageComplete, len(orders), len(orders))

	if dropped := len(orders) - len(results); dropped > 0 {
		p.Logger.Warn("sync finished with dropped orders",
			slog.String("provider", p.Provider),
			slog.Int("dropped", dropped),
		)
	}

	return results, nil
}
