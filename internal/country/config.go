package country

// Config captures the per-country settings the pricing pipeline depends on.
// Instances are immutable once fetched; the registry replaces them wholesale
// on refresh and never mutates a copy handed to a caller.
type Config struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Currency          string  `json:"currency"`
	RateFromBase      float64 `json:"rateFromBase"`
	VATPercent        float64 `json:"vatPercent"`
	GatewayFixedFee   float64 `json:"gatewayFixedFee"`
	GatewayPercentFee float64 `json:"gatewayPercentFee"`
	MinShippingCost   float64 `json:"minShippingCost"`
	PerKgShippingRate float64 `json:"perKgShippingRate"`
	ShippingAllowed   bool    `json:"shippingAllowed"`
}
