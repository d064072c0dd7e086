package shiprate

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/crossbay/backend-quote/internal/country"
)

// Shipping cost provenance values recorded on every quote.
const (
	MethodRoute           = "route-specific"
	MethodCountrySettings = "country_settings"
)

// ErrRouteNotFound is returned by providers when no route exists for a pair.
var ErrRouteNotFound = errors.New("shipping route not found")

// RouteProvider supplies route reference data.
type RouteProvider interface {
	RouteFor(ctx context.Context, origin, destination string) (Route, error)
}

// Request carries the inputs for one shipping cost resolution. Destination
// holds the country configuration used for the fallback formula.
type Request struct {
	Origin      string
	Destination country.Config
	Weight      float64
	ItemValue   float64
}

// Quote is the resolved shipping cost plus provenance.
type Quote struct {
	Cost     float64 `json:"cost"`
	Method   string  `json:"method"`
	Carrier  string  `json:"carrier,omitempty"`
	Route    *Route  `json:"route,omitempty"`
	Degraded bool    `json:"degraded,omitempty"`
}

// Resolver selects a route-specific quote when one exists and falls back to
// the destination's weight-based country settings otherwise.
type Resolver struct {
	Routes RouteProvider
	Logger zerolog.Logger
}

// Resolve computes the international shipping cost for the request. It never
// returns a negative or NaN cost: an invalid computation degrades to the
// destination's minimum baseline instead of failing.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Quote, error) {
	if r == nil || r.Routes == nil {
		return Quote{}, errors.New("shipping resolver not configured")
	}

	quote := r.resolve(ctx, req)
	if !validCost(quote.Cost) {
		baseline := req.Destination.MinShippingCost
		if !validCost(baseline) {
			baseline = 0
		}
		r.Logger.Warn().
			Str("origin", req.Origin).
			Str("destination", req.Destination.Code).
			Float64("invalid_cost", quote.Cost).
			Float64("baseline", baseline).
			Msg("shipping cost invalid, substituting baseline")
		quote.Cost = baseline
		quote.Degraded = true
	}
	return quote, nil
}

func (r *Resolver) resolve(ctx context.Context, req Request) Quote {
	route, err := r.Routes.RouteFor(ctx, req.Origin, req.Destination.Code)
	if err == nil && route.Active {
		cost := route.BaseCost + req.Weight*route.CostPerKg + req.ItemValue*route.CostPercentage/100
		if tier, ok := route.TierFor(req.Weight); ok {
			// The tier replaces the weight-linear term only.
			cost = route.BaseCost + tier.Cost + req.ItemValue*route.CostPercentage/100
		}
		return Quote{Cost: cost, Method: MethodRoute, Carrier: route.Carrier, Route: &route}
	}
	if err != nil && !errors.Is(err, ErrRouteNotFound) {
		r.Logger.Warn().Err(err).
			Str("origin", req.Origin).
			Str("destination", req.Destination.Code).
			Msg("route lookup failed, using country settings")
	}
	cost := req.Destination.MinShippingCost + req.Weight*req.Destination.PerKgShippingRate
	return Quote{Cost: cost, Method: MethodCountrySettings}
}

func validCost(cost float64) bool {
	return !math.IsNaN(cost) && !math.IsInf(cost, 0) && cost >= 0
}
