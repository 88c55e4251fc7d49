package search

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/openfacet/facetstore/pkg/log"
)

// Registry hands out one live Client per tenant. Clients are built lazily on
// first use from the resolver's settings and reused until Shutdown. Concurrent
// first use of the same tenant serializes only the construction critical
// section; lookups for other tenants never block on it.
type Registry struct {
	resolver SettingsResolver
	logger   *slog.Logger

	clients sync.Map // tenant -> *Client
	group   singleflight.Group
}

// NewRegistry creates a registry backed by the given settings resolver.
func NewRegistry(resolver SettingsResolver) *Registry {
	return &Registry{
		resolver: resolver,
		logger:   log.Logger("search.registry"),
	}
}

// Client returns the tenant's client, constructing it on first use. A failed
// construction is not cached; the next call retries.
func (r *Registry) Client(tenant string) (*Client, error) {
	if v, ok := r.clients.Load(tenant); ok {
		return v.(*Client), nil
	}

	v, err, _ := r.group.Do(tenant, func() (any, error) {
		// A loser of an earlier race may land here after the winner stored.
		if v, ok := r.clients.Load(tenant); ok {
			return v, nil
		}

		settings, err := r.resolver.TenantSettings(tenant)
		if err != nil {
			return nil, opError(KindConfig, "resolve settings", tenant, "", err)
		}

		cfg, err := decodeSettings(settings)
		if err != nil {
			return nil, opError(KindConfig, "decode settings", tenant, "", err)
		}

		client, err := newClient(tenant, cfg)
		if err != nil {
			return nil, opError(KindConfig, "create client", tenant, "", err)
		}

		r.clients.Store(tenant, client)
		r.logger.Info("search client created", "tenant", tenant, "address", cfg.Address())
		return client, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Client), nil
}

// Shutdown closes every constructed client. Best effort; close errors are
// logged, not propagated.
func (r *Registry) Shutdown() {
	r.clients.Range(func(key, value any) bool {
		if err := value.(*Client).Close(); err != nil {
			r.logger.Error("failed to close search client", "tenant", key, "error", err)
		}
		r.clients.Delete(key)
		return true
	})
}
