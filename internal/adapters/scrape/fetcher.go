// Package scrape provides the provider-agnostic half of the order
// pipeline: authenticated page fetching, listing pagination, and the
// bounded-concurrency detail download.
//
// Provider packages supply URLs and extraction rules; everything here
// behaves identically for all of them.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// DocumentFetcher fetches a URL and returns the parsed document.
// *Fetcher satisfies it; tests substitute canned documents.
type DocumentFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// FetcherConfig controls the HTTP behavior of a Fetcher.
type FetcherConfig struct {
	// Jar carries the authenticated session cookies. The pipeline
	// never sees credentials in any other form.
	Jar http.CookieJar

	// UserAgent sent with every request. Defaults to a desktop browser
	// string; storefronts serve different markup to obvious bots.
	UserAgent string

	// Timeout bounds a single request attempt. Defaults to 30s.
	Timeout time.Duration

	// RetryMax is how many times a failed request is retried.
	// Defaults to 3.
	RetryMax int

	// RequestsPerSecond throttles outgoing fetches across all
	// goroutines sharing the Fetcher. Defaults to 2.
	RequestsPerSecond float64
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// Fetcher performs authenticated GETs against provider pages and hands
// back parsed documents. Safe for concurrent use; the rate limiter
// serializes bursts across goroutines.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

// NewFetcher builds a Fetcher around a retrying HTTP client that
// carries the session jar and rate-limits every outgoing request.
func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.HTTPClient.Jar = cfg.Jar

	return &Fetcher{
		client:    retryClient.StandardClient(),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// Fetch GETs pageURL and parses the response body. Network failures
// and non-2xx statuses surface as errors; the caller decides whether
// that kills the sync or just one order.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing response from %s: %w", pageURL, err)
	}

	f.logger.Debug("fetched page",
		slog.String("url", pageURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	return doc, nil
}
