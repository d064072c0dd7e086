package common

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// AtoiDefault converts the provided string to an integer falling back to the default when parsing fails.
func AtoiDefault(value string, def int) int {
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// ParseAmount coerces a numeric-looking string into a float64. Empty or
// non-numeric input yields 0, never an error. Thousands separators are
// stripped so "1,250.50" parses the same as "1250.50".
func ParseAmount(value string) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0
	}
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// CoerceAmount reduces loosely typed JSON values (numbers, numeric strings,
// json.Number) to a float64 with the same defensive fallback as ParseAmount.
func CoerceAmount(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case float32:
		return CoerceAmount(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		return ParseAmount(v.String())
	case string:
		return ParseAmount(v)
	default:
		return 0
	}
}

// Round2 rounds to two decimal places, the precision used for all persisted
// monetary components.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
