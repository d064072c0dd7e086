package shiprate

import "github.com/google/uuid"

// WeightTier prices a weight bracket. Max is nil for the open-ended top tier.
// Tiers are ordered by Min and non-overlapping.
type WeightTier struct {
	Min  float64  `json:"min"`
	Max  *float64 `json:"max"`
	Cost float64  `json:"cost"`
}

// Contains reports whether the given weight falls inside the tier.
func (t WeightTier) Contains(weight float64) bool {
	if weight < t.Min {
		return false
	}
	return t.Max == nil || weight < *t.Max
}

// DeliveryOption describes a carrier service level attached to a route.
type DeliveryOption struct {
	Name      string  `json:"name"`
	Days      string  `json:"days"`
	Surcharge float64 `json:"surcharge"`
}

// Route is a precomputed shipping schedule for one origin/destination pair.
// At most one route exists per pair; absence triggers the country-settings
// fallback.
type Route struct {
	ID              uuid.UUID        `json:"id"`
	Origin          string           `json:"origin"`
	Destination     string           `json:"destination"`
	Carrier         string           `json:"carrier"`
	ExchangeRate    float64          `json:"exchangeRate"`
	BaseCost        float64          `json:"baseCost"`
	CostPerKg       float64          `json:"costPerKg"`
	CostPercentage  float64          `json:"costPercentage"`
	WeightTiers     []WeightTier     `json:"weightTiers,omitempty"`
	DeliveryOptions []DeliveryOption `json:"deliveryOptions,omitempty"`
	Active          bool             `json:"active"`
}

// TierFor returns the first tier containing the weight, if any.
func (r Route) TierFor(weight float64) (WeightTier, bool) {
	for _, tier := range r.WeightTiers {
		if tier.Contains(weight) {
			return tier, true
		}
	}
	return WeightTier{}, false
}
