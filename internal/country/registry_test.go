package country_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/crossbay/backend-quote/internal/cache"
	"github.com/crossbay/backend-quote/internal/country"
)

type stubProvider struct {
	getCalls int
	config   country.Config
	err      error
}

func (s *stubProvider) GetCountry(ctx context.Context, code string) (country.Config, error) {
	s.getCalls++
	if s.err != nil {
		return country.Config{}, s.err
	}
	return s.config, nil
}

func (s *stubProvider) ListCountries(ctx context.Context) ([]country.Config, error) {
	return []country.Config{s.config}, nil
}

func TestRegistryCachesLookups(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	provider := &stubProvider{config: country.Config{Code: "IN", Currency: "INR", RateFromBase: 83, VATPercent: 18}}
	reg := &country.Registry{Source: provider, Cache: cache.NewJSON(rdb, time.Minute)}

	first, err := reg.Get(context.Background(), "in")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := reg.Get(context.Background(), "IN")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if provider.getCalls != 1 {
		t.Fatalf("expected 1 store call, got %d", provider.getCalls)
	}
	if first != second {
		t.Fatalf("cached config diverged: %+v vs %+v", first, second)
	}
}

func TestRegistryRefreshDropsCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	provider := &stubProvider{config: country.Config{Code: "US", Currency: "USD", RateFromBase: 1}}
	reg := &country.Registry{Source: provider, Cache: cache.NewJSON(rdb, time.Minute)}

	if _, err := reg.Get(context.Background(), "US"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := reg.Refresh(context.Background(), "US"); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := reg.Get(context.Background(), "US"); err != nil {
		t.Fatalf("get after refresh: %v", err)
	}
	if provider.getCalls != 2 {
		t.Fatalf("expected refresh to force a store read, got %d calls", provider.getCalls)
	}
}

func TestRegistryRejectsEmptyCode(t *testing.T) {
	provider := &stubProvider{}
	reg := &country.Registry{Source: provider}
	if _, err := reg.Get(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty code")
	}
	if provider.getCalls != 0 {
		t.Fatalf("store should not be called for empty code")
	}
}
