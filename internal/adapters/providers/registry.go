package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry manages all registered providers
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewRegistry creates a new provider registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(provider Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = provider
	r.logger.Info("registered provider",
		slog.String("provider", name),
		slog.String("display_name", provider.DisplayName()),
	)

	return nil
}

// Get returns a provider by name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

// List returns all registered provider names, sorted for stable output
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns all registered providers
func (r *Registry) GetAll() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.providers))
	for _, provider := range r.providers {
		providers = append(providers, provider)
	}
	return providers
}

// ProbeAll runs auth probes against every registered provider
// concurrently and collects the results by provider name.
func (r *Registry) ProbeAll(ctx context.Context) map[string]AuthProbe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]AuthProbe)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, provider := range r.providers {
		wg.Add(1)
		go func(n string, p Provider) {
			defer wg.Done()
			probe := p.ProbeAuth(ctx)
			mu.Lock()
			results[n] = probe
			mu.Unlock()

			if probe.Status == AuthSuccess {
				r.logger.Debug("auth probe passed",
					slog.String("provider", n),
					slog.Int("starting_year", probe.StartingYear),
				)
			} else {
				r.logger.Warn("auth probe did not succeed",
					slog.String("provider", n),
					slog.String("status", string(probe.Status)),
				)
			}
		}(name, provider)
	}

	wg.Wait()
	return results
}
