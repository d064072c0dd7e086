package country

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no configuration exists for a country code.
var ErrNotFound = errors.New("country configuration not found")

// Store reads country configuration from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const countryColumns = `code, name, currency, rate_from_base, vat_percent,
	gateway_fixed_fee, gateway_percent_fee, min_shipping_cost, per_kg_shipping_rate, shipping_allowed`

// GetCountry fetches a single country configuration by ISO code.
func (s *Store) GetCountry(ctx context.Context, code string) (Config, error) {
	if s == nil || s.Pool == nil {
		return Config{}, errors.New("country store not configured")
	}
	row := s.Pool.QueryRow(ctx,
		`SELECT `+countryColumns+` FROM countries WHERE code = $1`,
		strings.ToUpper(strings.TrimSpace(code)),
	)
	cfg, err := scanCountry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Config{}, ErrNotFound
		}
		return Config{}, err
	}
	return cfg, nil
}

// ListCountries returns every configured country ordered by code.
func (s *Store) ListCountries(ctx context.Context) ([]Config, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("country store not configured")
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+countryColumns+` FROM countries ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Config
	for rows.Next() {
		cfg, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func scanCountry(row pgx.Row) (Config, error) {
	var cfg Config
	err := row.Scan(
		&cfg.Code,
		&cfg.Name,
		&cfg.Currency,
		&cfg.RateFromBase,
		&cfg.VATPercent,
		&cfg.GatewayFixedFee,
		&cfg.GatewayPercentFee,
		&cfg.MinShippingCost,
		&cfg.PerKgShippingRate,
		&cfg.ShippingAllowed,
	)
	return cfg, err
}
