package quote_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/crossbay/backend-quote/internal/common"
	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/quote"
	"github.com/crossbay/backend-quote/internal/shiprate"
)

type countryStub struct{}

func (countryStub) GetCountry(ctx context.Context, code string) (country.Config, error) {
	if code == "IN" {
		return indiaConfig(), nil
	}
	return country.Config{}, country.ErrNotFound
}

func (countryStub) ListCountries(ctx context.Context) ([]country.Config, error) {
	return []country.Config{indiaConfig()}, nil
}

type memStore struct {
	quotes map[uuid.UUID]quote.Quote
}

func newMemStore() *memStore {
	return &memStore{quotes: map[uuid.UUID]quote.Quote{}}
}

func (m *memStore) SaveQuote(ctx context.Context, q quote.Quote) (quote.Quote, error) {
	m.quotes[q.ID] = q
	return q, nil
}

func (m *memStore) GetQuote(ctx context.Context, id uuid.UUID) (quote.Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return quote.Quote{}, quote.ErrQuoteNotFound
	}
	return q, nil
}

func newService(store quote.Storer) *quote.Service {
	return &quote.Service{
		Registry: &country.Registry{Source: countryStub{}},
		Assembler: &quote.Assembler{
			Resolver: &shiprate.Resolver{Routes: noRoutes{}, Logger: zerolog.Nop()},
			Logger:   zerolog.Nop(),
		},
		Store:  store,
		Logger: zerolog.Nop(),
	}
}

func sampleForm() quote.FormInput {
	return quote.FormInput{
		Items:              []quote.ItemInput{{Name: "headphones", Price: 100.0, Weight: 2.0, Quantity: 1}},
		OriginCountry:      "us",
		DestinationCountry: "in",
		CustomsPercent:     520,
		Status:             "draft",
	}
}

func TestServiceCalculate(t *testing.T) {
	b, err := newService(nil).Calculate(context.Background(), sampleForm())
	require.NoError(t, err)
	require.InDelta(t, 172.45, b.FinalTotal, 1e-9)
	require.Equal(t, "INR", b.Currency)
}

func TestServiceCalculateCoercesStringAmounts(t *testing.T) {
	form := sampleForm()
	form.Items[0].Price = "100"
	form.Items[0].Weight = "2"
	form.CustomsPercent = "520"
	b, err := newService(nil).Calculate(context.Background(), form)
	require.NoError(t, err)
	require.InDelta(t, 172.45, b.FinalTotal, 1e-9)
}

func TestServiceCalculateUnknownDestination(t *testing.T) {
	form := sampleForm()
	form.DestinationCountry = "ZZ"
	_, err := newService(nil).Calculate(context.Background(), form)
	requireCode(t, err, quote.CodeMissingRequiredData)
}

func TestServiceCreatePersists(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	created, err := svc.Create(context.Background(), sampleForm())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Equal(t, "US", created.OriginCountry)
	require.Equal(t, "IN", created.DestinationCountry)

	fetched, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Breakdown, fetched.Breakdown)
}

func TestServiceRecalculateReplacesBreakdown(t *testing.T) {
	store := newMemStore()
	svc := newService(store)

	created, err := svc.Create(context.Background(), sampleForm())
	require.NoError(t, err)

	form := sampleForm()
	form.Items[0].Quantity = 2
	form.Status = "priced"
	updated, err := svc.Recalculate(context.Background(), created.ID, form)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "priced", updated.Status)
	require.Greater(t, updated.Breakdown.FinalTotal, created.Breakdown.FinalTotal)
}

func TestServiceRecalculateUnknownID(t *testing.T) {
	svc := newService(newMemStore())
	_, err := svc.Recalculate(context.Background(), uuid.New(), sampleForm())
	require.ErrorIs(t, err, quote.ErrQuoteNotFound)
}

func TestServiceCalculateErrorsCarryCodes(t *testing.T) {
	form := sampleForm()
	form.Items[0].Weight = 0.0
	_, err := newService(nil).Calculate(context.Background(), form)
	require.True(t, common.IsAppError(err))
	requireCode(t, err, quote.CodeMissingRequiredData)
}
