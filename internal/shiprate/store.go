package shiprate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads shipping routes from Postgres. Weight tiers and delivery
// options are stored as jsonb alongside the route row.
type Store struct {
	Pool *pgxpool.Pool
}

// RouteFor fetches the route for an origin/destination pair. The schema
// keeps at most one route per pair, so the lookup cannot be ambiguous.
func (s *Store) RouteFor(ctx context.Context, origin, destination string) (Route, error) {
	if s == nil || s.Pool == nil {
		return Route{}, errors.New("route store not configured")
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT id, origin, destination, carrier, exchange_rate, base_cost, cost_per_kg,
		        cost_percentage, weight_tiers, delivery_options, active
		 FROM shipping_routes
		 WHERE origin = $1 AND destination = $2`,
		strings.ToUpper(strings.TrimSpace(origin)),
		strings.ToUpper(strings.TrimSpace(destination)),
	)
	var (
		route    Route
		tiers    []byte
		options  []byte
	)
	err := row.Scan(
		&route.ID,
		&route.Origin,
		&route.Destination,
		&route.Carrier,
		&route.ExchangeRate,
		&route.BaseCost,
		&route.CostPerKg,
		&route.CostPercentage,
		&tiers,
		&options,
		&route.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Route{}, ErrRouteNotFound
		}
		return Route{}, err
	}
	if len(tiers) > 0 {
		if err := json.Unmarshal(tiers, &route.WeightTiers); err != nil {
			return Route{}, err
		}
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &route.DeliveryOptions); err != nil {
			return Route{}, err
		}
	}
	return route, nil
}

// ListPairs returns the distinct active origin/destination pairs. The refresh
// worker uses it to warm the exchange-rate cache.
func (s *Store) ListPairs(ctx context.Context) ([][2]string, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("route store not configured")
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT origin, destination FROM shipping_routes WHERE active ORDER BY origin, destination`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pairs [][2]string
	for rows.Next() {
		var origin, destination string
		if err := rows.Scan(&origin, &destination); err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]string{origin, destination})
	}
	return pairs, rows.Err()
}
