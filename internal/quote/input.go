package quote

import (
	"strings"

	"github.com/crossbay/backend-quote/internal/common"
)

// ItemInput is one line item as submitted by the operator UI. Numeric fields
// arrive as numbers or numeric-looking strings and are coerced defensively.
type ItemInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Price    any    `json:"price"`
	Weight   any    `json:"weight"`
	Quantity any    `json:"quantity"`
}

// FormInput is the raw operator-facing edit payload.
type FormInput struct {
	Items              []ItemInput `json:"items" validate:"required,min=1"`
	OriginCountry      string      `json:"originCountry" validate:"required,len=2"`
	DestinationCountry string      `json:"destinationCountry" validate:"required,len=2"`
	SalesTax           any         `json:"salesTax"`
	MerchantShipping   any         `json:"merchantShipping"`
	DomesticShipping   any         `json:"domesticShipping"`
	HandlingCharge     any         `json:"handlingCharge"`
	InsuranceAmount    any         `json:"insuranceAmount"`
	Discount           any         `json:"discount"`
	CustomsPercent     any         `json:"customsPercent"`
	Status             string      `json:"status"`
}

// Item is a parsed line item in purchase-country currency and units.
type Item struct {
	ID       string
	Name     string
	Price    float64
	Weight   float64
	Quantity float64
}

// Input is the fully coerced calculation input.
type Input struct {
	Items              []Item
	OriginCountry      string
	DestinationCountry string
	SalesTax           float64
	MerchantShipping   float64
	DomesticShipping   float64
	HandlingCharge     float64
	InsuranceAmount    float64
	Discount           float64
	CustomsPercent     float64
	Status             string
}

// Parse coerces the raw form into calculation input. Empty or non-numeric
// values become 0; validation of ranges happens in Assemble, not here.
func (f FormInput) Parse() Input {
	items := make([]Item, 0, len(f.Items))
	for _, raw := range f.Items {
		qty := common.CoerceAmount(raw.Quantity)
		if qty == 0 {
			qty = 1
		}
		items = append(items, Item{
			ID:       raw.ID,
			Name:     raw.Name,
			Price:    common.CoerceAmount(raw.Price),
			Weight:   common.CoerceAmount(raw.Weight),
			Quantity: qty,
		})
	}
	return Input{
		Items:              items,
		OriginCountry:      strings.ToUpper(strings.TrimSpace(f.OriginCountry)),
		DestinationCountry: strings.ToUpper(strings.TrimSpace(f.DestinationCountry)),
		SalesTax:           common.CoerceAmount(f.SalesTax),
		MerchantShipping:   common.CoerceAmount(f.MerchantShipping),
		DomesticShipping:   common.CoerceAmount(f.DomesticShipping),
		HandlingCharge:     common.CoerceAmount(f.HandlingCharge),
		InsuranceAmount:    common.CoerceAmount(f.InsuranceAmount),
		Discount:           common.CoerceAmount(f.Discount),
		CustomsPercent:     common.CoerceAmount(f.CustomsPercent),
		Status:             strings.TrimSpace(f.Status),
	}
}
