package quote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrQuoteNotFound is returned when no quote exists for an id.
var ErrQuoteNotFound = errors.New("quote not found")

// PGStore persists quotes in Postgres. The breakdown is stored as a jsonb
// document so the schema never lags behind the pricing pipeline.
type PGStore struct {
	Pool *pgxpool.Pool
}

// SaveQuote inserts or wholesale-replaces a quote record.
func (s *PGStore) SaveQuote(ctx context.Context, q Quote) (Quote, error) {
	if s == nil || s.Pool == nil {
		return Quote{}, errors.New("quote store not configured")
	}
	payload, err := json.Marshal(q.Breakdown)
	if err != nil {
		return Quote{}, err
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO quotes (id, origin_country, destination_country, status, currency, final_total, breakdown, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			origin_country      = EXCLUDED.origin_country,
			destination_country = EXCLUDED.destination_country,
			status              = EXCLUDED.status,
			currency            = EXCLUDED.currency,
			final_total         = EXCLUDED.final_total,
			breakdown           = EXCLUDED.breakdown,
			updated_at          = EXCLUDED.updated_at`,
		q.ID, q.OriginCountry, q.DestinationCountry, q.Status,
		q.Breakdown.Currency, q.Breakdown.FinalTotal, payload,
		q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return Quote{}, err
	}
	return q, nil
}

// GetQuote fetches a quote by id.
func (s *PGStore) GetQuote(ctx context.Context, id uuid.UUID) (Quote, error) {
	if s == nil || s.Pool == nil {
		return Quote{}, errors.New("quote store not configured")
	}
	var (
		q       Quote
		payload []byte
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT id, origin_country, destination_country, status, breakdown, created_at, updated_at
		FROM quotes WHERE id = $1`, id,
	).Scan(&q.ID, &q.OriginCountry, &q.DestinationCountry, &q.Status, &payload, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, ErrQuoteNotFound
		}
		return Quote{}, err
	}
	if err := json.Unmarshal(payload, &q.Breakdown); err != nil {
		return Quote{}, err
	}
	return q, nil
}
