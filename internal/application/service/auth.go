package service

import (
	"context"

	"github.com/Nowaker/monarch-amazon-sync/internal/adapters/providers"
)

// Auth snapshot handling. Probes run on demand and the last result is
// cached per provider, so status endpoints can always answer without
// waiting on a storefront round trip.

// AuthStatuses returns the last known probe for every registered
// provider. A provider that has never been probed reports AuthPending.
func (s *SyncService) AuthStatuses() map[string]providers.AuthProbe {
	s.authMutex.RLock()
	defer s.authMutex.RUnlock()

	statuses := make(map[string]providers.AuthProbe)
	for _, name := range s.registry.List() {
		probe, ok := s.authProbes[name]
		if !ok {
			probe = providers.AuthProbe{Status: providers.AuthPending}
		}
		statuses[name] = probe
	}
	return statuses
}

// RefreshAuthStatuses probes every registered provider concurrently
// and caches the results.
func (s *SyncService) RefreshAuthStatuses(ctx context.Context) map[string]providers.AuthProbe {
	results := s.registry.ProbeAll(ctx)

	s.authMutex.Lock()
	for name, probe := range results {
		s.authProbes[name] = probe
	}
	s.authMutex.Unlock()

	return results
}

// RefreshAuthStatus probes a single provider and caches the result.
func (s *SyncService) RefreshAuthStatus(ctx context.Context, name string) (providers.AuthProbe, error) {
	provider, err := s.registry.Get(name)
	if err != nil {
		return providers.AuthProbe{}, err
	}

	probe := provider.ProbeAuth(ctx)

	s.authMutex.Lock()
	s.authProbes[name] = probe
	s.authMutex.Unlock()

	return probe, nil
}
