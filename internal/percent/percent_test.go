package percent_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crossbay/backend-quote/internal/percent"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		raw       float64
		want      float64
		corrected bool
	}{
		{name: "plain percent untouched", raw: 12, want: 12, corrected: false},
		{name: "zero", raw: 0, want: 0, corrected: false},
		{name: "upper plain bound", raw: 50, want: 50, corrected: false},
		{name: "mis-scaled percent", raw: 520, want: 5.2, corrected: true},
		{name: "basis points", raw: 52000, want: 5.2, corrected: true},
		{name: "ratio-like above ceiling", raw: 75, want: 0.75, corrected: true},
		{name: "mis-scaled then still high", raw: 9000, want: 0.9, corrected: true},
		{name: "basis points above ceiling", raw: 1000000, want: 1, corrected: true},
		{name: "negative collapses", raw: -5, want: 0, corrected: false},
		{name: "nan collapses", raw: math.NaN(), want: 0, corrected: false},
		{name: "inf collapses", raw: math.Inf(1), want: 0, corrected: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, corrected := percent.NormalizeDetail(tc.raw)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.Equal(t, tc.corrected, corrected)
			assert.Equal(t, got, percent.Normalize(tc.raw))
		})
	}
}

func TestNormalizeAlwaysBounded(t *testing.T) {
	inputs := []float64{0, 0.001, 1, 49.99, 50, 50.01, 99, 100, 101, 4999, 5000, 5001, 10000, 10001, 99999, 1e7, 1e12}
	for _, raw := range inputs {
		got := percent.Normalize(raw)
		if got < 0 || got > percent.MaxPercent {
			t.Fatalf("normalize(%v) = %v outside [0,%d]", raw, got, percent.MaxPercent)
		}
	}
}
