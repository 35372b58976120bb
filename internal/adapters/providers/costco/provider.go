// Package costco implements the order provider for Costco's order
// status pages.
//
// Costco serves one listing page per year, so the pagination driver
// never advances past page 1. In-warehouse receipts appear in the same
// listing with a warehouse flag in the detail link; the flag is
// carried through to the detail URL.
package costco

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/scrape"
)

const defaultConcurrency = 4

// Provider implements providers.Provider for Costco.
type Provider struct {
	fetcher     scrape.DocumentFetcher
	concurrency int
	logger      *slog.Logger
}

// Config holds construction options for the Costco provider.
type Config struct {
	// Fetcher performs the authenticated page fetches.
	Fetcher scrape.DocumentFetcher

	// Concurrency caps detail fetches in flight. Defaults to 4.
	Concurrency int
}

// NewProvider creates a new Costco provider around an authenticated
// fetcher.
func NewProvider(logger *slog.Logger, cfg Config) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Provider{
		fetcher:     cfg.Fetcher,
		concurrency: concurrency,
		logger:      logger.With(slog.String("provider", "costco")),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "costco"
}

// DisplayName returns the human-readable provider name
func (p *Provider) DisplayName() string {
	return "Costco"
}

// ProbeAuth fetches the order status page and checks whether it still
// renders for a signed-in session. Fetch errors come back as
// AuthFailure, never as an error.
func (p *Provider) ProbeAuth(ctx context.Context) providers.AuthProbe {
	doc, err := p.fetcher.Fetch(ctx, listingURL(time.Now().Year(), 0))
	if err != nil {
		p.logger.Warn("auth probe failed", slog.String("error", err.Error()))
		return providers.AuthProbe{Status: providers.AuthFailure}
	}

	if signedOut(doc) {
		return providers.AuthProbe{Status: providers.AuthNotLoggedIn}
	}

	probe := providers.AuthProbe{Status: providers.AuthSuccess, StartingYear: time.Now().Year()}
	if year, ok := scrape.EarliestYear(doc, yearOptionSelector); ok {
		probe.StartingYear = year
	}
	return probe
}

// FetchOrders scans the year's single listing page and downloads each
// order's transactions with bounded concurrency.
func (p *Provider) FetchOrders(ctx context.Context, opts providers.FetchOptions) ([]providers.Order, error) {
	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}

	pipeline := scrape.Pipeline{
		Provider: p.Name(),
		Fetcher:  p.fetcher,
		Listing: scrape.ListingSource{
			PageURL: func(startIndex int) string {
				return listingURL(year, startIndex)
			},
			Parse: func(doc *goquery.Document) []providers.Order {
				return parseListing(doc, p.logger)
			},
			// Costco's order status shows a whole year at once.
			PageCount: nil,
		},
		Detail:      p.FetchOrderTransactions,
		Concurrency: p.concurrency,
		Logger:      p.logger,
	}

	return pipeline.Run(ctx, opts)
}

// FetchOrderTransactions enriches one order with the items and
// transactions parsed from its detail page.
func (p *Provider) FetchOrderTransactions(ctx context.Context, order providers.Order) (providers.Order, error) {
	doc, err := p.fetcher.Fetch(ctx, detailURL(order))
	if err != nil {
		return providers.Order{}, fmt.Errorf("order %s: %w", order.ID, err)
	}

	order.Transactions = parseDetail(doc, order.ID, p.logger)
	return order, nil
}
