package quote

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crossbay/backend-quote/internal/common"
	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/obs"
)

// Quote is a persisted breakdown plus identity and audit fields.
type Quote struct {
	ID                 uuid.UUID `json:"id"`
	OriginCountry      string    `json:"originCountry"`
	DestinationCountry string    `json:"destinationCountry"`
	Status             string    `json:"status"`
	Breakdown          Breakdown `json:"breakdown"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Storer persists complete breakdowns. The service writes whole quotes only;
// there is no partial update path.
type Storer interface {
	SaveQuote(ctx context.Context, q Quote) (Quote, error)
	GetQuote(ctx context.Context, id uuid.UUID) (Quote, error)
}

// Service orchestrates a calculation: fetch reference data, assemble, persist.
type Service struct {
	Registry  *country.Registry
	Assembler *Assembler
	Store     Storer
	Logger    zerolog.Logger
}

// Calculate runs the pipeline without persisting. Each invocation works on
// its own snapshot of reference data.
func (s *Service) Calculate(ctx context.Context, form FormInput) (Breakdown, error) {
	if s == nil || s.Registry == nil || s.Assembler == nil {
		return Breakdown{}, errors.New("quote service not configured")
	}
	in := form.Parse()
	if in.DestinationCountry == "" {
		s.count(CodeMissingRequiredData)
		return Breakdown{}, missingError("destinationCountry")
	}
	cfg, err := s.Registry.Get(ctx, in.DestinationCountry)
	if err != nil {
		if errors.Is(err, country.ErrNotFound) {
			s.count(CodeMissingRequiredData)
			return Breakdown{}, common.NewAppError(
				CodeMissingRequiredData,
				"destination country is not configured",
				http.StatusUnprocessableEntity, nil,
			).WithDetails(map[string]any{"field": "destinationCountry", "value": in.DestinationCountry})
		}
		return Breakdown{}, err
	}
	breakdown, err := s.Assembler.Assemble(ctx, in, cfg)
	if err != nil {
		s.count(errorCode(err))
		return Breakdown{}, err
	}
	s.count("ok")
	return breakdown, nil
}

// Create calculates and persists a new quote. The breakdown is written
// verbatim; persistence failures never leave a partial record.
func (s *Service) Create(ctx context.Context, form FormInput) (Quote, error) {
	breakdown, err := s.Calculate(ctx, form)
	if err != nil {
		return Quote{}, err
	}
	if s.Store == nil {
		return Quote{}, errors.New("quote store not configured")
	}
	in := form.Parse()
	quote := Quote{
		ID:                 uuid.New(),
		OriginCountry:      in.OriginCountry,
		DestinationCountry: in.DestinationCountry,
		Status:             in.Status,
		Breakdown:          breakdown,
	}
	return s.Store.SaveQuote(ctx, quote)
}

// Recalculate overwrites an existing quote's breakdown wholesale, keeping its
// identity and caller-supplied status.
func (s *Service) Recalculate(ctx context.Context, id uuid.UUID, form FormInput) (Quote, error) {
	if s.Store == nil {
		return Quote{}, errors.New("quote store not configured")
	}
	existing, err := s.Store.GetQuote(ctx, id)
	if err != nil {
		return Quote{}, err
	}
	breakdown, err := s.Calculate(ctx, form)
	if err != nil {
		return Quote{}, err
	}
	in := form.Parse()
	existing.OriginCountry = in.OriginCountry
	existing.DestinationCountry = in.DestinationCountry
	if in.Status != "" {
		existing.Status = in.Status
	}
	existing.Breakdown = breakdown
	return s.Store.SaveQuote(ctx, existing)
}

// Get fetches a persisted quote.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Quote, error) {
	if s == nil || s.Store == nil {
		return Quote{}, errors.New("quote store not configured")
	}
	return s.Store.GetQuote(ctx, id)
}

func (s *Service) count(result string) {
	if obs.QuoteCalcTotal != nil {
		obs.QuoteCalcTotal.WithLabelValues(result).Inc()
	}
}

func errorCode(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "error"
}
