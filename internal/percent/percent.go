// Package percent reduces ambiguously scaled percentage inputs to a canonical
// percent-of-total value. Upstream records disagree on whether percentages are
// stored as ratios, percents or basis points, so every value passes through
// this boundary before entering a calculation.
package percent

import "math"

// MaxPercent is the hard ceiling for any normalised percentage.
const MaxPercent = 50

// Normalize reduces an ambiguous numeric encoding to a percentage in [0, MaxPercent].
// It never fails; outright-invalid input (NaN, negative) is the caller's concern
// and collapses to 0 here so the result stays usable.
func Normalize(raw float64) float64 {
	value, _ := NormalizeDetail(raw)
	return value
}

// NormalizeDetail behaves like Normalize and additionally reports whether a
// scale correction was applied, which signals upstream data quality issues
// worth logging.
func NormalizeDetail(raw float64) (float64, bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return 0, false
	}
	value := raw
	corrected := false
	switch {
	case value > 10000:
		// Stored as basis points.
		value /= 10000
		corrected = true
	case value > 100:
		// Stored as a percent scaled by 100.
		value /= 100
		corrected = true
	}
	if value > MaxPercent {
		value /= 100
		corrected = true
	}
	if value > MaxPercent {
		value = MaxPercent
	}
	return value, corrected
}
