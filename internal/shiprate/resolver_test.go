package shiprate_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/shiprate"
)

type stubRoutes struct {
	route shiprate.Route
	err   error
}

func (s stubRoutes) RouteFor(ctx context.Context, origin, destination string) (shiprate.Route, error) {
	if s.err != nil {
		return shiprate.Route{}, s.err
	}
	return s.route, nil
}

func indiaConfig() country.Config {
	return country.Config{Code: "IN", Currency: "INR", MinShippingCost: 25, PerKgShippingRate: 5}
}

func TestResolveRouteSpecific(t *testing.T) {
	route := shiprate.Route{
		ID:             uuid.New(),
		Origin:         "US",
		Destination:    "IN",
		Carrier:        "dhl",
		BaseCost:       10,
		CostPerKg:      4,
		CostPercentage: 2,
		Active:         true,
	}
	resolver := &shiprate.Resolver{Routes: stubRoutes{route: route}, Logger: zerolog.Nop()}

	quote, err := resolver.Resolve(context.Background(), shiprate.Request{
		Origin: "US", Destination: indiaConfig(), Weight: 3, ItemValue: 200,
	})
	require.NoError(t, err)
	require.Equal(t, shiprate.MethodRoute, quote.Method)
	require.Equal(t, "dhl", quote.Carrier)
	// 10 + 3*4 + 200*0.02
	require.InDelta(t, 26, quote.Cost, 1e-9)
	require.NotNil(t, quote.Route)
}

func TestResolveTierOverridesPerKgTerm(t *testing.T) {
	five := 5.0
	route := shiprate.Route{
		ID:          uuid.New(),
		Origin:      "US",
		Destination: "IN",
		BaseCost:    10,
		CostPerKg:   4,
		WeightTiers: []shiprate.WeightTier{
			{Min: 0, Max: &five, Cost: 7},
			{Min: 5, Max: nil, Cost: 20},
		},
		Active: true,
	}
	resolver := &shiprate.Resolver{Routes: stubRoutes{route: route}, Logger: zerolog.Nop()}

	quote, err := resolver.Resolve(context.Background(), shiprate.Request{
		Origin: "US", Destination: indiaConfig(), Weight: 3, ItemValue: 0,
	})
	require.NoError(t, err)
	require.InDelta(t, 17, quote.Cost, 1e-9)

	quote, err = resolver.Resolve(context.Background(), shiprate.Request{
		Origin: "US", Destination: indiaConfig(), Weight: 9, ItemValue: 0,
	})
	require.NoError(t, err)
	require.InDelta(t, 30, quote.Cost, 1e-9)
}

func TestResolveFallbackToCountrySettings(t *testing.T) {
	resolver := &shiprate.Resolver{Routes: stubRoutes{err: shiprate.ErrRouteNotFound}, Logger: zerolog.Nop()}

	quote, err := resolver.Resolve(context.Background(), shiprate.Request{
		Origin: "US", Destination: indiaConfig(), Weight: 2, ItemValue: 100,
	})
	require.NoError(t, err)
	require.Equal(t, shiprate.MethodCountrySettings, quote.Method)
	require.InDelta(t, 35, quote.Cost, 1e-9)
	require.Nil(t, quote.Route)
}

func TestResolveInactiveRouteFallsBack(t *testing.T) {
	route := shiprate.Route{Origin: "US", Destination: "IN", BaseCost: 99, Active: false}
	resolver := &shiprate.Resolver{Routes: stubRoutes{route: route}, Logger: zerolog.Nop()}

	quote, err := resolver.Resolve(context.Background(), shiprate.Request{
		Origin: "US", Destination: indiaConfig(), Weight: 1,
	})
	require.NoError(t, err)
	require.Equal(t, shiprate.MethodCountrySettings, quote.Method)
	require.InDelta(t, 30, quote.Cost, 1e-9)
}

func TestResolveInvalidCostDegradesToBaseline(t *testing.T) {
	route := shiprate.Route{
		Origin:      "US",
		Destination: "IN",
		BaseCost:    math.NaN(),
		Active:      true,
	}
	resolver := &shiprate.Resolver{Routes: stubRoutes{route: route}, Logger: zerolog.Nop()}

	quote, err := resolver.Resolve(context.Background(), shiprate.Request{
		Origin: "US", Destination: indiaConfig(), Weight: 2,
	})
	require.NoError(t, err)
	require.True(t, quote.Degraded)
	require.InDelta(t, 25, quote.Cost, 1e-9)
}
