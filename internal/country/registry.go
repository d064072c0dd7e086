package country

import (
	"context"
	"errors"
	"strings"

	"github.com/crossbay/backend-quote/internal/cache"
)

// Provider defines the reference-data access the registry depends on.
type Provider interface {
	GetCountry(ctx context.Context, code string) (Config, error)
	ListCountries(ctx context.Context) ([]Config, error)
}

// Registry provides read-only, cached access to country configuration.
// Configuration is owned by an external store; the registry only reads.
type Registry struct {
	Source Provider
	Cache  *cache.JSON
}

// Get resolves the configuration for a country code, serving from cache when possible.
func (r *Registry) Get(ctx context.Context, code string) (Config, error) {
	if r == nil || r.Source == nil {
		return Config{}, errors.New("country registry not configured")
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return Config{}, ErrNotFound
	}
	key := "country:" + normalized
	var cached Config
	if ok, err := r.Cache.Get(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	cfg, err := r.Source.GetCountry(ctx, normalized)
	if err != nil {
		return Config{}, err
	}
	_ = r.Cache.Set(ctx, key, cfg)
	return cfg, nil
}

// List returns all configured countries. The list itself is not cached; it is
// an operator-facing view and freshness matters more than latency there.
func (r *Registry) List(ctx context.Context) ([]Config, error) {
	if r == nil || r.Source == nil {
		return nil, errors.New("country registry not configured")
	}
	return r.Source.ListCountries(ctx)
}

// FindByCurrency returns the first configured country using the given
// currency code. Display conversion uses it when an override or user
// preference names a currency rather than a country.
func (r *Registry) FindByCurrency(ctx context.Context, currencyCode string) (Config, error) {
	normalized := strings.ToUpper(strings.TrimSpace(currencyCode))
	if normalized == "" {
		return Config{}, ErrNotFound
	}
	countries, err := r.List(ctx)
	if err != nil {
		return Config{}, err
	}
	for _, cfg := range countries {
		if strings.EqualFold(cfg.Currency, normalized) {
			return cfg, nil
		}
	}
	return Config{}, ErrNotFound
}

// Refresh drops the cached entry for a code so the next Get re-reads the store.
func (r *Registry) Refresh(ctx context.Context, code string) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil
	}
	return r.Cache.Delete(ctx, "country:"+normalized)
}
