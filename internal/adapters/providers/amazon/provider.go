// Package amazon implements the order provider for Amazon's order
// history pages.
//
// Listing pages are the year-filtered order history; detail pages are
// per-order. Amazon is the only storefront here that actually
// paginates its listing, so the page count is read from the pagination
// control on page 1.
package amazon

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

// Provider implements providers.Provider for Amazon.
type Provider struct {
	fetcher     scrape.DocumentFetcher
	concurrency int
	logger      *slog.Logger
}

// Config holds construction options for the Amazon provider.
type Config struct {
	// Fetcher performs the authenticated page fetches.
	Fetcher scrape.DocumentFetcher

	// Concurrency caps detail fetches in flight. Defaults to 4.
	Concurrency int
}

// NewProvider creates a new Amazon provider around an authenticated
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
		logger:      logger.With(slog.String("provider", "amazon")),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "amazon"
}

// DisplayName returns the human-readable provider name
func (p *Provider) DisplayName() string {
	return "Amazon"
}

// ProbeAuth fetches the order history page and checks whether it still
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

// FetchOrders scans the year's listing pages and downloads each
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
			PageCount: pageCount,
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
