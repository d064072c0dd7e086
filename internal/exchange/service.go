package exchange

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/crossbay/backend-quote/internal/cache"
	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/currency"
	"github.com/crossbay/backend-quote/internal/obs"
	"github.com/crossbay/backend-quote/internal/shiprate"
)

// Rate provenance values.
const (
	SourceRoute         = "route"
	SourceCountryConfig = "countryConfig"
)

// Confidence levels attached to a resolved rate.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceNone   = "none"
)

// MaxRate bounds any resolved exchange rate; values beyond it indicate
// corrupted configuration.
const MaxRate = 1000

// Result is an ephemeral resolved exchange rate. Confidence "none" marks the
// identity fallback so callers can surface a warning.
type Result struct {
	Rate       float64 `json:"rate"`
	Source     string  `json:"source,omitempty"`
	Confidence string  `json:"confidence"`
}

// Fallback reports whether the result is the degraded identity rate.
func (r Result) Fallback() bool { return r.Confidence == ConfidenceNone }

// Service resolves conversion rates between countries, preferring route-level
// rates over the generic country-config derivation, with a short-TTL cache.
type Service struct {
	Countries     *country.Registry
	Routes        shiprate.RouteProvider
	Cache         *cache.JSON
	MarkupPercent float64
	// BaseCurrency is the currency assumed for countries with no
	// configuration. Defaults to USD.
	BaseCurrency string
	Logger       zerolog.Logger
}

// GetRate resolves the conversion rate from origin to destination country.
// Lookup failure degrades to rate=1 with confidence "none"; it never errors,
// so display paths cannot crash on a missing rate.
func (s *Service) GetRate(ctx context.Context, origin, destination string) Result {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	if s == nil || s.Countries == nil || origin == "" || destination == "" {
		return s.fallback(origin, destination, errors.New("exchange service not configured"))
	}
	if origin == destination {
		return Result{Rate: 1, Source: SourceCountryConfig, Confidence: ConfidenceHigh}
	}

	key := "fx:" + origin + ":" + destination
	var cached Result
	if ok, err := s.Cache.Get(ctx, key, &cached); err == nil && ok {
		countCache("hit")
		return cached
	}
	countCache("miss")

	result, err := s.resolve(ctx, origin, destination)
	if err != nil {
		return s.fallback(origin, destination, err)
	}
	result.Rate = applyMarkup(result.Rate, s.MarkupPercent)
	if !validRate(result.Rate) {
		return s.fallback(origin, destination, errors.New("resolved rate out of bounds"))
	}
	_ = s.Cache.Set(ctx, key, result)
	countLookup(result.Source)
	return result
}

// Convert converts an amount from the origin country's currency into the
// destination's, applying the destination currency's rounding convention.
func (s *Service) Convert(ctx context.Context, amount float64, origin, destination string) (float64, Result) {
	result := s.GetRate(ctx, origin, destination)
	converted := amount * result.Rate
	code := s.currencyOf(ctx, destination)
	return currency.Round(converted, code), result
}

// CurrencyOf resolves the currency code for a country, falling back to USD.
func (s *Service) CurrencyOf(ctx context.Context, code string) string {
	return s.currencyOf(ctx, code)
}

func (s *Service) resolve(ctx context.Context, origin, destination string) (Result, error) {
	if s.Routes != nil {
		route, err := s.Routes.RouteFor(ctx, origin, destination)
		if err == nil && route.Active && validRate(route.ExchangeRate) {
			return Result{Rate: route.ExchangeRate, Source: SourceRoute, Confidence: ConfidenceHigh}, nil
		}
		if err != nil && !errors.Is(err, shiprate.ErrRouteNotFound) {
			s.Logger.Warn().Err(err).Str("origin", origin).Str("destination", destination).
				Msg("route rate lookup failed")
		}
	}
	originCfg, err := s.Countries.Get(ctx, origin)
	if err != nil {
		return Result{}, err
	}
	destCfg, err := s.Countries.Get(ctx, destination)
	if err != nil {
		return Result{}, err
	}
	if originCfg.RateFromBase <= 0 || destCfg.RateFromBase <= 0 {
		return Result{}, errors.New("country rate-from-base not configured")
	}
	rate := destCfg.RateFromBase / originCfg.RateFromBase
	return Result{Rate: rate, Source: SourceCountryConfig, Confidence: ConfidenceMedium}, nil
}

func (s *Service) fallback(origin, destination string, cause error) Result {
	if s != nil {
		s.Logger.Warn().Err(cause).
			Str("origin", origin).
			Str("destination", destination).
			Msg("exchange rate unavailable, using identity rate")
	}
	if obs.RateFallbackTotal != nil {
		obs.RateFallbackTotal.Inc()
	}
	return Result{Rate: 1, Confidence: ConfidenceNone}
}

func (s *Service) currencyOf(ctx context.Context, code string) string {
	if s != nil && s.Countries != nil {
		if cfg, err := s.Countries.Get(ctx, code); err == nil && strings.TrimSpace(cfg.Currency) != "" {
			return cfg.Currency
		}
	}
	if s != nil && strings.TrimSpace(s.BaseCurrency) != "" {
		return strings.ToUpper(strings.TrimSpace(s.BaseCurrency))
	}
	return "USD"
}

// Warm resolves every pair so the cache is hot before display traffic needs
// it. Returns the number of pairs that resolved without falling back.
func (s *Service) Warm(ctx context.Context, pairs [][2]string) int {
	warmed := 0
	for _, pair := range pairs {
		if ctx.Err() != nil {
			return warmed
		}
		if result := s.GetRate(ctx, pair[0], pair[1]); !result.Fallback() {
			warmed++
		}
	}
	return warmed
}

func applyMarkup(rate, markupPercent float64) float64 {
	if markupPercent <= 0 {
		return rate
	}
	return rate + rate*markupPercent/100
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0) && rate > 0 && rate <= MaxRate
}

func countCache(result string) {
	if obs.RateCacheTotal != nil {
		obs.RateCacheTotal.WithLabelValues(result).Inc()
	}
}

func countLookup(source string) {
	if obs.RateLookupsTotal != nil {
		obs.RateLookupsTotal.WithLabelValues(source).Inc()
	}
}
