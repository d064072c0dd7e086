package display_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/crossbay/backend-quote/internal/cache"
	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/display"
	"github.com/crossbay/backend-quote/internal/exchange"
	"github.com/crossbay/backend-quote/internal/shiprate"
)

type countries struct{}

func (countries) GetCountry(ctx context.Context, code string) (country.Config, error) {
	switch code {
	case "US":
		return country.Config{Code: "US", Currency: "USD", RateFromBase: 1}, nil
	case "IN":
		return country.Config{Code: "IN", Currency: "INR", RateFromBase: 83}, nil
	case "GB":
		return country.Config{Code: "GB", Currency: "GBP", RateFromBase: 0.78}, nil
	}
	return country.Config{}, country.ErrNotFound
}

func (countries) ListCountries(ctx context.Context) ([]country.Config, error) {
	return []country.Config{
		{Code: "US", Currency: "USD", RateFromBase: 1},
		{Code: "IN", Currency: "INR", RateFromBase: 83},
		{Code: "GB", Currency: "GBP", RateFromBase: 0.78},
	}, nil
}

type noRoutes struct{}

func (noRoutes) RouteFor(ctx context.Context, origin, destination string) (shiprate.Route, error) {
	return shiprate.Route{}, shiprate.ErrRouteNotFound
}

func newFormatter(t *testing.T) *display.Formatter {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	rates := &exchange.Service{
		Countries: &country.Registry{Source: countries{}},
		Routes:    noRoutes{},
		Cache:     cache.NewJSON(rdb, time.Minute),
		Logger:    zerolog.Nop(),
	}
	return &display.Formatter{Rates: rates, DefaultCurrency: "USD", Logger: zerolog.Nop()}
}

func ptr(v float64) *float64 { return &v }

func TestFormatPriceNilAmount(t *testing.T) {
	f := newFormatter(t)
	price := f.FormatPrice(context.Background(), nil, display.Options{})
	require.Equal(t, "N/A", price.Formatted)
	require.Equal(t, "USD", price.Currency)
	require.Zero(t, price.Amount)
}

func TestFormatPriceSameCurrencySkipsConversion(t *testing.T) {
	f := newFormatter(t)
	price := f.FormatPrice(context.Background(), ptr(1250.5), display.Options{
		OriginCountry:      "US",
		DestinationCountry: "US",
	})
	require.Equal(t, "$1,250.5", price.Formatted)
	require.Equal(t, "USD", price.Currency)
	require.InDelta(t, 1, price.ExchangeRate, 1e-9)
	require.Empty(t, price.Warning)
}

func TestFormatPriceConvertsToDestinationCurrency(t *testing.T) {
	f := newFormatter(t)
	price := f.FormatPrice(context.Background(), ptr(100), display.Options{
		OriginCountry:      "US",
		DestinationCountry: "IN",
	})
	require.Equal(t, "INR", price.Currency)
	require.Equal(t, "₨8,300", price.Formatted)
	require.InDelta(t, 8300, price.Amount, 1e-9)
	require.Empty(t, price.Warning)
}

func TestFormatPriceOverrideBeatsPreferenceAndDestination(t *testing.T) {
	f := newFormatter(t)
	price := f.FormatPrice(context.Background(), ptr(100), display.Options{
		OriginCountry:      "US",
		DestinationCountry: "IN",
		UserPreference:     "INR",
		CurrencyOverride:   "GBP",
	})
	require.Equal(t, "GBP", price.Currency)
	require.InDelta(t, 78, price.Amount, 1e-9)
}

func TestFormatPriceUnknownDestinationFallsThroughChain(t *testing.T) {
	f := newFormatter(t)
	price := f.FormatPrice(context.Background(), ptr(42), display.Options{
		OriginCountry:      "US",
		DestinationCountry: "ZZ",
	})
	// Unknown destination falls through to the origin currency; no conversion.
	require.Equal(t, "USD", price.Currency)
	require.Equal(t, "$42", price.Formatted)
	require.Empty(t, price.Warning)
}

func TestFormatPriceUnknownOverrideCurrencyDegrades(t *testing.T) {
	f := newFormatter(t)
	price := f.FormatPrice(context.Background(), ptr(42), display.Options{
		OriginCountry:      "US",
		DestinationCountry: "IN",
		CurrencyOverride:   "XXX",
	})
	require.Equal(t, "XXX", price.Currency)
	require.NotEmpty(t, price.Warning)
	require.NotEmpty(t, price.Formatted)
}

func TestFormatDualPrice(t *testing.T) {
	f := newFormatter(t)
	dual := f.FormatDualPrice(context.Background(), ptr(100), display.Options{
		OriginCountry:      "US",
		DestinationCountry: "IN",
	})
	require.Equal(t, "$100", dual.Origin.Formatted)
	require.Equal(t, "₨8,300", dual.Destination.Formatted)
	require.Equal(t, "$100 (₨8,300)", dual.Display)
	require.Empty(t, dual.Warning)
}

func TestFormatDualPriceSameCurrency(t *testing.T) {
	f := newFormatter(t)
	dual := f.FormatDualPrice(context.Background(), ptr(99.99), display.Options{
		OriginCountry:      "US",
		DestinationCountry: "US",
	})
	require.Equal(t, "$99.99", dual.Display)
}
