package quote

import (
	"context"
	"math"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crossbay/backend-quote/internal/common"
	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/exchange"
	"github.com/crossbay/backend-quote/internal/obs"
	"github.com/crossbay/backend-quote/internal/percent"
	"github.com/crossbay/backend-quote/internal/shiprate"
)

// Absolute bounds protecting billing data from corrupted input.
const (
	// MaxComponentValue caps any single cost component.
	MaxComponentValue = 100000
	// MaxFinalTotal is the sanity ceiling for a computed total.
	MaxFinalTotal = 1000000
	// MaxExchangeRate bounds the destination rate-from-base.
	MaxExchangeRate = exchange.MaxRate
)

// Error codes surfaced to the UI layer.
const (
	CodeMissingRequiredData = "MISSING_REQUIRED_DATA"
	CodeInvalidNumericInput = "INVALID_NUMERIC_INPUT"
	CodeInvalidExchangeRate = "INVALID_EXCHANGE_RATE"
	CodeUnreasonableResult  = "UNREASONABLE_RESULT"
	CodeShippingResolution  = "SHIPPING_RESOLUTION_FAILED"
)

// Breakdown is the canonical cost breakdown in purchase-country currency.
// It is recomputed wholesale on every assembly; nothing updates it in place.
type Breakdown struct {
	ItemTotal             float64    `json:"itemTotal"`
	TotalWeight           float64    `json:"totalWeight"`
	SalesTax              float64    `json:"salesTax"`
	MerchantShipping      float64    `json:"merchantShipping"`
	DomesticShipping      float64    `json:"domesticShipping"`
	InternationalShipping float64    `json:"internationalShipping"`
	CustomsAndFees        float64    `json:"customsAndFees"`
	HandlingCharge        float64    `json:"handlingCharge"`
	InsuranceAmount       float64    `json:"insuranceAmount"`
	Discount              float64    `json:"discount"`
	PaymentGatewayFee     float64    `json:"paymentGatewayFee"`
	SubTotal              float64    `json:"subTotal"`
	VAT                   float64    `json:"vat"`
	FinalTotal            float64    `json:"finalTotal"`
	Currency              string     `json:"currency"`
	ExchangeRateUsed      float64    `json:"exchangeRateUsed"`
	ShippingMethodUsed    string     `json:"shippingMethodUsed"`
	ShippingRouteID       *uuid.UUID `json:"shippingRouteId"`
	Status                string     `json:"status,omitempty"`
}

// Assembler turns validated inputs plus country configuration into a Breakdown.
type Assembler struct {
	Resolver *shiprate.Resolver
	Logger   zerolog.Logger
}

// Assemble runs the full pricing pipeline. Any validation failure returns an
// AppError carrying the failed field; no partial breakdown is ever produced.
func (a *Assembler) Assemble(ctx context.Context, in Input, cfg country.Config) (Breakdown, error) {
	var itemTotal, totalWeight float64
	for _, item := range in.Items {
		if invalidAmount(item.Price) || invalidAmount(item.Weight) || item.Quantity < 0 {
			return Breakdown{}, numericError("items", item.Price)
		}
		itemTotal += item.Price * item.Quantity
		totalWeight += item.Weight * item.Quantity
	}

	if in.DestinationCountry == "" {
		return Breakdown{}, missingError("destinationCountry")
	}
	if itemTotal <= 0 {
		return Breakdown{}, missingError("itemTotal")
	}
	if totalWeight <= 0 {
		return Breakdown{}, missingError("totalWeight")
	}

	for _, field := range []struct {
		name  string
		value float64
	}{
		{"itemTotal", itemTotal},
		{"totalWeight", totalWeight},
		{"salesTax", in.SalesTax},
		{"merchantShipping", in.MerchantShipping},
		{"domesticShipping", in.DomesticShipping},
		{"handlingCharge", in.HandlingCharge},
		{"insuranceAmount", in.InsuranceAmount},
		{"discount", in.Discount},
	} {
		if invalidAmount(field.value) || field.value > MaxComponentValue {
			return Breakdown{}, numericError(field.name, field.value)
		}
	}

	// Raw customs rates may arrive in basis points, so no ceiling here; the
	// normalizer scales them down. NaN and negatives are still rejected.
	if invalidAmount(in.CustomsPercent) {
		return Breakdown{}, numericError("customsPercent", in.CustomsPercent)
	}

	if invalidRate(cfg.RateFromBase) {
		return Breakdown{}, common.NewAppError(
			CodeInvalidExchangeRate,
			"destination exchange rate is outside the allowed range",
			http.StatusUnprocessableEntity, nil,
		).WithDetails(map[string]any{"country": cfg.Code, "rate": cfg.RateFromBase})
	}

	shipping, err := a.Resolver.Resolve(ctx, shiprate.Request{
		Origin:      in.OriginCountry,
		Destination: cfg,
		Weight:      totalWeight,
		ItemValue:   itemTotal,
	})
	if err != nil {
		return Breakdown{}, common.NewAppError(
			CodeShippingResolution,
			"could not resolve a shipping cost",
			http.StatusUnprocessableEntity, err,
		)
	}

	customsPercent := a.normalize("customsPercent", in.CustomsPercent)
	customsAndFees := common.Round2((itemTotal + in.SalesTax + in.MerchantShipping + shipping.Cost) * customsPercent / 100)

	discount := in.Discount
	componentSum := itemTotal + in.SalesTax + in.MerchantShipping + shipping.Cost +
		customsAndFees + in.DomesticShipping + in.HandlingCharge + in.InsuranceAmount
	if discount > componentSum {
		discount = componentSum
	}
	subtotalBeforeGatewayFee := common.Round2(componentSum - discount)

	gatewayPercent := a.normalize("gatewayPercentFee", cfg.GatewayPercentFee)
	gatewayFee := common.Round2(cfg.GatewayFixedFee + subtotalBeforeGatewayFee*gatewayPercent/100)

	subTotal := common.Round2(subtotalBeforeGatewayFee + gatewayFee)
	vat := common.Round2(subTotal * cfg.VATPercent / 100)
	finalTotal := common.Round2(subTotal + vat)

	if invalidAmount(finalTotal) || finalTotal > MaxFinalTotal {
		return Breakdown{}, common.NewAppError(
			CodeUnreasonableResult,
			"computed total failed the sanity check",
			http.StatusUnprocessableEntity, nil,
		).WithDetails(map[string]any{"finalTotal": finalTotal})
	}

	breakdown := Breakdown{
		ItemTotal:             common.Round2(itemTotal),
		TotalWeight:           totalWeight,
		SalesTax:              common.Round2(in.SalesTax),
		MerchantShipping:      common.Round2(in.MerchantShipping),
		DomesticShipping:      common.Round2(in.DomesticShipping),
		InternationalShipping: common.Round2(shipping.Cost),
		CustomsAndFees:        customsAndFees,
		HandlingCharge:        common.Round2(in.HandlingCharge),
		InsuranceAmount:       common.Round2(in.InsuranceAmount),
		Discount:              common.Round2(discount),
		PaymentGatewayFee:     gatewayFee,
		SubTotal:              subTotal,
		VAT:                   vat,
		FinalTotal:            finalTotal,
		Currency:              cfg.Currency,
		ExchangeRateUsed:      cfg.RateFromBase,
		ShippingMethodUsed:    shipping.Method,
		// Workflow status belongs to the caller; recalculation never touches it.
		Status: in.Status,
	}
	if shipping.Route != nil {
		id := shipping.Route.ID
		breakdown.ShippingRouteID = &id
	}
	return breakdown, nil
}

func (a *Assembler) normalize(field string, raw float64) float64 {
	value, corrected := percent.NormalizeDetail(raw)
	if corrected {
		a.Logger.Warn().
			Str("field", field).
			Float64("raw", raw).
			Float64("normalized", value).
			Msg("percentage input required scale correction")
		if obs.PercentCorrectionsTotal != nil {
			obs.PercentCorrectionsTotal.WithLabelValues(field).Inc()
		}
	}
	return value
}

func missingError(field string) *common.AppError {
	return common.NewAppError(
		CodeMissingRequiredData,
		"required pricing input is missing or zero",
		http.StatusUnprocessableEntity, nil,
	).WithDetails(map[string]any{"field": field})
}

func numericError(field string, value float64) *common.AppError {
	return common.NewAppError(
		CodeInvalidNumericInput,
		"numeric input is invalid or out of range",
		http.StatusUnprocessableEntity, nil,
	).WithDetails(map[string]any{"field": field, "value": value})
}

func invalidAmount(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}

func invalidRate(rate float64) bool {
	return math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 || rate > MaxExchangeRate
}
