// Package currency holds display metadata and rounding rules for the
// currencies the platform quotes in. Codes not present in the table render
// with their ISO code and two decimal places.
package currency

import (
	"math"
	"strings"
)

// Info describes how a currency is rendered.
type Info struct {
	Code     string
	Symbol   string
	Decimals int
}

var table = map[string]Info{
	"USD": {Code: "USD", Symbol: "$", Decimals: 2},
	"EUR": {Code: "EUR", Symbol: "€", Decimals: 2},
	"GBP": {Code: "GBP", Symbol: "£", Decimals: 2},
	"INR": {Code: "INR", Symbol: "₨", Decimals: 0},
	"AUD": {Code: "AUD", Symbol: "A$", Decimals: 2},
	"CAD": {Code: "CAD", Symbol: "C$", Decimals: 2},
	"SGD": {Code: "SGD", Symbol: "S$", Decimals: 2},
	"AED": {Code: "AED", Symbol: "د.إ", Decimals: 2},
	"JPY": {Code: "JPY", Symbol: "¥", Decimals: 0},
	"KRW": {Code: "KRW", Symbol: "₩", Decimals: 0},
	"VND": {Code: "VND", Symbol: "₫", Decimals: 0},
	"IDR": {Code: "IDR", Symbol: "Rp", Decimals: 0},
	"CNY": {Code: "CNY", Symbol: "¥", Decimals: 2},
	"BRL": {Code: "BRL", Symbol: "R$", Decimals: 2},
	"NGN": {Code: "NGN", Symbol: "₦", Decimals: 2},
	"CLP": {Code: "CLP", Symbol: "$", Decimals: 0},
	"ISK": {Code: "ISK", Symbol: "kr", Decimals: 0},
}

// Lookup returns rendering metadata for a currency code.
func Lookup(code string) (Info, bool) {
	info, ok := table[normalize(code)]
	return info, ok
}

// Symbol returns the display symbol for a code, defaulting to the code itself.
func Symbol(code string) string {
	if info, ok := Lookup(code); ok {
		return info.Symbol
	}
	normalized := normalize(code)
	if normalized == "" {
		return "$"
	}
	return normalized + " "
}

// Decimals returns the number of minor-unit digits used when rendering.
func Decimals(code string) int {
	if info, ok := Lookup(code); ok {
		return info.Decimals
	}
	return 2
}

// Round applies the currency's rounding convention: whole units for
// currencies without minor units, two decimal places otherwise.
func Round(amount float64, code string) float64 {
	if Decimals(code) == 0 {
		return math.Round(amount)
	}
	return math.Round(amount*100) / 100
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
