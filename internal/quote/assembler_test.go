package quote_test

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/crossbay/backend-quote/internal/common"
	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/quote"
	"github.com/crossbay/backend-quote/internal/shiprate"
)

type noRoutes struct{}

func (noRoutes) RouteFor(ctx context.Context, origin, destination string) (shiprate.Route, error) {
	return shiprate.Route{}, shiprate.ErrRouteNotFound
}

type stubRoutes struct {
	route shiprate.Route
}

func (s stubRoutes) RouteFor(ctx context.Context, origin, destination string) (shiprate.Route, error) {
	return s.route, nil
}

func newAssembler() *quote.Assembler {
	return &quote.Assembler{
		Resolver: &shiprate.Resolver{Routes: noRoutes{}, Logger: zerolog.Nop()},
		Logger:   zerolog.Nop(),
	}
}

func indiaConfig() country.Config {
	return country.Config{
		Code:              "IN",
		Name:              "India",
		Currency:          "INR",
		RateFromBase:      83,
		VATPercent:        18,
		GatewayFixedFee:   0,
		GatewayPercentFee: 2.9,
		MinShippingCost:   25,
		PerKgShippingRate: 5,
		ShippingAllowed:   true,
	}
}

func singleItemInput() quote.Input {
	return quote.Input{
		Items:              []quote.Item{{Name: "headphones", Price: 100, Weight: 2, Quantity: 1}},
		OriginCountry:      "US",
		DestinationCountry: "IN",
		CustomsPercent:     520,
		Status:             "draft",
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok, "expected AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
}

func TestAssembleFullPipeline(t *testing.T) {
	b, err := newAssembler().Assemble(context.Background(), singleItemInput(), indiaConfig())
	require.NoError(t, err)

	require.InDelta(t, 100, b.ItemTotal, 1e-9)
	require.InDelta(t, 2, b.TotalWeight, 1e-9)
	// 25 + 2*5 from country settings, no route configured.
	require.InDelta(t, 35, b.InternationalShipping, 1e-9)
	require.Equal(t, shiprate.MethodCountrySettings, b.ShippingMethodUsed)
	// 520 normalises to 5.2%; (100+35)*0.052 = 7.02.
	require.InDelta(t, 7.02, b.CustomsAndFees, 1e-9)
	// 142.02 * 2.9% = 4.12 after rounding.
	require.InDelta(t, 4.12, b.PaymentGatewayFee, 1e-9)
	require.InDelta(t, 146.14, b.SubTotal, 1e-9)
	require.InDelta(t, 26.31, b.VAT, 1e-9)
	require.InDelta(t, 172.45, b.FinalTotal, 1e-9)
	require.InDelta(t, common.Round2(b.SubTotal+b.VAT), b.FinalTotal, 1e-9)
	beforeFee := b.ItemTotal + b.SalesTax + b.MerchantShipping + b.InternationalShipping +
		b.CustomsAndFees + b.DomesticShipping + b.HandlingCharge + b.InsuranceAmount - b.Discount
	require.InDelta(t, common.Round2(beforeFee+b.PaymentGatewayFee), b.SubTotal, 1e-9)
	require.Equal(t, "INR", b.Currency)
	require.InDelta(t, 83, b.ExchangeRateUsed, 1e-9)
	require.Nil(t, b.ShippingRouteID)
	require.Equal(t, "draft", b.Status)
}

func TestAssembleIsIdempotent(t *testing.T) {
	a := newAssembler()
	first, err := a.Assemble(context.Background(), singleItemInput(), indiaConfig())
	require.NoError(t, err)
	second, err := a.Assemble(context.Background(), singleItemInput(), indiaConfig())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAssembleRouteSpecificShipping(t *testing.T) {
	route := shiprate.Route{
		Origin:      "US",
		Destination: "IN",
		Carrier:     "dhl",
		BaseCost:    12,
		CostPerKg:   6,
		Active:      true,
	}
	a := &quote.Assembler{
		Resolver: &shiprate.Resolver{Routes: stubRoutes{route: route}, Logger: zerolog.Nop()},
		Logger:   zerolog.Nop(),
	}
	b, err := a.Assemble(context.Background(), singleItemInput(), indiaConfig())
	require.NoError(t, err)
	require.InDelta(t, 24, b.InternationalShipping, 1e-9)
	require.Equal(t, shiprate.MethodRoute, b.ShippingMethodUsed)
	require.NotNil(t, b.ShippingRouteID)
}

func TestAssembleRejectsZeroWeight(t *testing.T) {
	in := singleItemInput()
	in.Items[0].Weight = 0
	_, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	requireCode(t, err, quote.CodeMissingRequiredData)
}

func TestAssembleRejectsZeroItemTotal(t *testing.T) {
	in := singleItemInput()
	in.Items[0].Price = 0
	_, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	requireCode(t, err, quote.CodeMissingRequiredData)
}

func TestAssembleRejectsMissingDestination(t *testing.T) {
	in := singleItemInput()
	in.DestinationCountry = ""
	_, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	requireCode(t, err, quote.CodeMissingRequiredData)
}

func TestAssembleRejectsNegativeComponent(t *testing.T) {
	in := singleItemInput()
	in.SalesTax = -5
	_, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	requireCode(t, err, quote.CodeInvalidNumericInput)
}

func TestAssembleRejectsInvalidCustomsPercent(t *testing.T) {
	for name, value := range map[string]float64{
		"negative": -5,
		"nan":      math.NaN(),
	} {
		t.Run(name, func(t *testing.T) {
			in := singleItemInput()
			in.CustomsPercent = value
			_, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
			requireCode(t, err, quote.CodeInvalidNumericInput)
		})
	}
}

func TestAssembleAcceptsBasisPointCustomsPercent(t *testing.T) {
	in := singleItemInput()
	in.CustomsPercent = 52000 // 5.2 percent scaled by 10000
	b, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	require.NoError(t, err)
	require.InDelta(t, 7.02, b.CustomsAndFees, 1e-9)
}

func TestAssembleRejectsComponentAboveCeiling(t *testing.T) {
	in := singleItemInput()
	in.HandlingCharge = quote.MaxComponentValue + 1
	_, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	requireCode(t, err, quote.CodeInvalidNumericInput)
}

func TestAssembleRejectsAbsurdExchangeRate(t *testing.T) {
	cfg := indiaConfig()
	cfg.RateFromBase = 1500
	_, err := newAssembler().Assemble(context.Background(), singleItemInput(), cfg)
	requireCode(t, err, quote.CodeInvalidExchangeRate)

	cfg.RateFromBase = 0
	_, err = newAssembler().Assemble(context.Background(), singleItemInput(), cfg)
	requireCode(t, err, quote.CodeInvalidExchangeRate)
}

func TestAssembleRejectsUnreasonableTotal(t *testing.T) {
	cfg := indiaConfig()
	cfg.VATPercent = 50
	in := quote.Input{
		Items: []quote.Item{
			{Name: "bulk", Price: 100000, Weight: 100, Quantity: 1},
		},
		OriginCountry:      "US",
		DestinationCountry: "IN",
		SalesTax:           100000,
		MerchantShipping:   100000,
		DomesticShipping:   100000,
		HandlingCharge:     100000,
		InsuranceAmount:    100000,
		CustomsPercent:     50,
	}
	_, err := newAssembler().Assemble(context.Background(), in, cfg)
	requireCode(t, err, quote.CodeUnreasonableResult)
}

func TestAssembleClampsDiscount(t *testing.T) {
	in := singleItemInput()
	in.Discount = 99999
	b, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	require.NoError(t, err)
	// Discount never drives the pre-fee subtotal below zero.
	require.InDelta(t, 142.02, b.Discount, 1e-9)
	require.InDelta(t, 0, b.SubTotal-b.PaymentGatewayFee, 1e-9)
	require.GreaterOrEqual(t, b.FinalTotal, 0.0)
}

func TestAssembleNormalizesGatewayPercent(t *testing.T) {
	cfg := indiaConfig()
	cfg.GatewayPercentFee = 290 // stored in the wrong scale
	b, err := newAssembler().Assemble(context.Background(), singleItemInput(), cfg)
	require.NoError(t, err)
	require.InDelta(t, 4.12, b.PaymentGatewayFee, 1e-9)
}

func TestAssemblePreservesStatus(t *testing.T) {
	in := singleItemInput()
	in.Status = "awaiting_payment"
	b, err := newAssembler().Assemble(context.Background(), in, indiaConfig())
	require.NoError(t, err)
	require.Equal(t, "awaiting_payment", b.Status)
}
