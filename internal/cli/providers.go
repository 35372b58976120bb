package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers/amazon"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers/costco"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers/walmart"
	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/scrape"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/config"
)

// LoadSessionJar loads the browser cookie export every provider shares.
func LoadSessionJar(cfg *config.Config) (http.CookieJar, error) {
	jar, err := scrape.LoadSession(cfg.Session.CookieFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load session cookies from %s: %w", cfg.Session.CookieFile, err)
	}
	return jar, nil
}

// NewAmazonProvider creates a new Amazon provider. Each provider gets
// its own fetcher so per-provider rate limits apply independently,
// while the cookie jar is shared.
func NewAmazonProvider(cfg *config.Config, jar http.CookieJar, logger *slog.Logger) providers.Provider {
	fetcher := scrape.NewFetcher(scrape.FetcherConfig{
		Jar:               jar,
		RequestsPerSecond: cfg.Providers.Amazon.RateLimit,
	}, logger)

	return amazon.NewProvider(logger, amazon.Config{
		Fetcher:     fetcher,
		Concurrency: cfg.Providers.Amazon.Concurrency,
	})
}

// NewCostcoProvider creates a new Costco provider
func NewCostcoProvider(cfg *config.Config, jar http.CookieJar, logger *slog.Logger) providers.Provider {
	fetcher := scrape.NewFetcher(scrape.FetcherConfig{
		Jar:               jar,
		RequestsPerSecond: cfg.Providers.Costco.RateLimit,
	}, logger)

	return costco.NewProvider(logger, costco.Config{
		Fetcher:     fetcher,
		Concurrency: cfg.Providers.Costco.Concurrency,
	})
}

// NewWalmartProvider creates a new Walmart provider
func NewWalmartProvider(cfg *config.Config, jar http.CookieJar, logger *slog.Logger) providers.Provider {
	fetcher := scrape.NewFetcher(scrape.FetcherConfig{
		Jar:               jar,
		RequestsPerSecond: cfg.Providers.Walmart.RateLimit,
	}, logger)

	return walmart.NewProvider(logger, walmart.Config{
		Fetcher:     fetcher,
		Concurrency: cfg.Providers.Walmart.Concurrency,
	})
}

// NewProvider builds one provider by name regardless of the enabled
// flags, for single-provider commands.
func NewProvider(name string, cfg *config.Config, jar http.CookieJar, logger *slog.Logger) (providers.Provider, error) {
	switch name {
	case "amazon":
		return NewAmazonProvider(cfg, jar, logger), nil
	case "costco":
		return NewCostcoProvider(cfg, jar, logger), nil
	case "walmart":
		return NewWalmartProvider(cfg, jar, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

// BuildRegistry registers every enabled provider over a shared cookie
// session. Providers disabled in config are simply never registered.
func BuildRegistry(cfg *config.Config, logger *slog.Logger) (*providers.Registry, error) {
	jar, err := LoadSessionJar(cfg)
	if err != nil {
		return nil, err
	}

	registry := providers.NewRegistry(logger)

	if cfg.Providers.Amazon.Enabled {
		if err := registry.Register(NewAmazonProvider(cfg, jar, logger)); err != nil {
			return nil, err
		}
	}
	if cfg.Providers.Costco.Enabled {
		if err := registry.Register(NewCostcoProvider(cfg, jar, logger)); err != nil {
			return nil, err
		}
	}
	if cfg.Providers.Walmart.Enabled {
		if err := registry.Register(NewWalmartProvider(cfg, jar, logger)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
