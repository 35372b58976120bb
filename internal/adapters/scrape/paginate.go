package scrape

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

// PageSize is how many listing records a storefront shows per page.
// The start-index query parameter grows by this much page over page.
const PageSize = 10

// ListingSource describes one provider's order history listing: how to
// address a page, how to read its records, and how to tell how many
// pages exist. Parse and PageCount are pure functions over the parsed
// document so they stay testable without any network.
type ListingSource struct {
	// PageURL returns the listing URL for a record offset. Offsets are
	// multiples of PageSize, starting at 0.
	PageURL func(startIndex int) string

	// Parse extracts the listing records from one page.
	Parse func(doc *goquery.Document) []providers.Order

	// PageCount reports the number of listing pages according to the
	// first page's document. Nil, or a non-positive return, means a
	// single page.
	PageCount func(doc *goquery.Document) int
}

// CollectOrders walks a provider's listing pages in order and
// concatenates their records. Page 1 decides the page count, later
// pages are fetched sequentially with a growing start index, and
// maxPages caps the scan when positive. Any page failure aborts the
// whole scan: a listing with holes cannot be trusted downstream.
func CollectOrders(ctx context.Context, fetcher DocumentFetcher, src ListingSource, maxPages int, onPage func(page, totalPages int)) ([]providers.Order, error) {
	doc, err := fetcher.Fetch(ctx, src.PageURL(0))
	if err != nil {
		return nil, fmt.Errorf("listing page 1: %w", err)
	}

	pages := 1
	if src.PageCount != nil {
		if n := src.PageCount(doc); n > 0 {
			pages = n
		}
	}
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	orders := src.Parse(doc)
	if onPage != nil {
		onPage(1, pages)
	}

	for page := 2; page <= pages; page++ {
		doc, err := fetcher.Fetch(ctx, src.PageURL((page-1)*PageSize))
		if err != nil {
			return nil, fmt.Errorf("listing page %d: %w", page, err)
		}
		orders = append(orders, src.Parse(doc)...)
		if onPage != nil {
			onPage(page, pages)
		}
	}

	return orders, nil
}
