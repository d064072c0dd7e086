package display

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/crossbay/backend-quote/internal/currency"
	"github.com/crossbay/backend-quote/internal/exchange"
	"github.com/crossbay/backend-quote/internal/obs"
)

// Options steer how a price is resolved and rendered for one observer.
type Options struct {
	// OriginCountry is the purchase country; amounts are stored in its currency.
	OriginCountry string
	// DestinationCountry is the observer's country, used for the default
	// display currency and the conversion rate.
	DestinationCountry string
	// CurrencyOverride forces a display currency regardless of preferences.
	CurrencyOverride string
	// UserPreference is the observer's stored preferred currency.
	UserPreference string
}

// Price is a rendered amount plus the context needed to explain it.
type Price struct {
	Formatted    string  `json:"formatted"`
	Currency     string  `json:"currency"`
	Amount       float64 `json:"amount"`
	ExchangeRate float64 `json:"exchangeRate,omitempty"`
	Warning      string  `json:"warning,omitempty"`
}

// DualPrice renders an amount in both the purchase and display currencies.
type DualPrice struct {
	Origin      Price  `json:"origin"`
	Destination Price  `json:"destination"`
	Display     string `json:"display"`
	Warning     string `json:"warning,omitempty"`
}

// Formatter renders amounts for observers in their preferred currency.
// Formatting never fails upward: any internal failure degrades to a plain
// "$<amount>" rendering with a warning attached.
type Formatter struct {
	Rates           *exchange.Service
	DefaultCurrency string
	Logger          zerolog.Logger
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount stored in the origin country's currency in
// the resolved display currency. A nil amount renders as "N/A".
func (f *Formatter) FormatPrice(ctx context.Context, amount *float64, opts Options) Price {
	if amount == nil {
		return Price{Formatted: "N/A", Currency: f.defaultCurrency(), Amount: 0}
	}

	originCurrency := f.originCurrency(ctx, opts)
	displayCurrency := f.resolveDisplayCurrency(ctx, opts, originCurrency)

	// Same currency: skip conversion entirely to avoid compounding rounding error.
	if strings.EqualFold(originCurrency, displayCurrency) {
		return Price{
			Formatted:    render(currency.Round(*amount, displayCurrency), displayCurrency),
			Currency:     displayCurrency,
			Amount:       currency.Round(*amount, displayCurrency),
			ExchangeRate: 1,
		}
	}

	converted, rate, warning := f.convert(ctx, *amount, opts, displayCurrency)
	price := Price{
		Formatted:    render(converted, displayCurrency),
		Currency:     displayCurrency,
		Amount:       converted,
		ExchangeRate: rate,
		Warning:      warning,
	}
	if warning != "" && obs.DisplayFallbackTotal != nil {
		obs.DisplayFallbackTotal.Inc()
	}
	return price
}

// FormatDualPrice renders "<origin formatted> (<destination formatted>)".
// When origin and display currencies coincide the parenthetical is dropped.
func (f *Formatter) FormatDualPrice(ctx context.Context, amount *float64, opts Options) DualPrice {
	if amount == nil {
		na := Price{Formatted: "N/A", Currency: f.defaultCurrency(), Amount: 0}
		return DualPrice{Origin: na, Destination: na, Display: "N/A"}
	}

	originCurrency := f.originCurrency(ctx, opts)
	origin := Price{
		Formatted:    render(currency.Round(*amount, originCurrency), originCurrency),
		Currency:     originCurrency,
		Amount:       currency.Round(*amount, originCurrency),
		ExchangeRate: 1,
	}
	destination := f.FormatPrice(ctx, amount, opts)

	display := origin.Formatted
	if !strings.EqualFold(origin.Currency, destination.Currency) {
		display = origin.Formatted + " (" + destination.Formatted + ")"
	}
	return DualPrice{
		Origin:      origin,
		Destination: destination,
		Display:     display,
		Warning:     destination.Warning,
	}
}

// resolveDisplayCurrency walks the priority chain:
// explicit override > user preference > destination default > origin > USD.
func (f *Formatter) resolveDisplayCurrency(ctx context.Context, opts Options, originCurrency string) string {
	if code := strings.TrimSpace(opts.CurrencyOverride); code != "" {
		return strings.ToUpper(code)
	}
	if code := strings.TrimSpace(opts.UserPreference); code != "" {
		return strings.ToUpper(code)
	}
	if strings.TrimSpace(opts.DestinationCountry) != "" && f.Rates != nil {
		if code := f.Rates.CurrencyOf(ctx, opts.DestinationCountry); code != "" {
			return strings.ToUpper(code)
		}
	}
	if strings.TrimSpace(originCurrency) != "" {
		return strings.ToUpper(originCurrency)
	}
	return f.defaultCurrency()
}

func (f *Formatter) convert(ctx context.Context, amount float64, opts Options, displayCurrency string) (float64, float64, string) {
	if f.Rates == nil {
		return currency.Round(amount, displayCurrency), 1, "exchange rate unavailable"
	}
	target := opts.DestinationCountry
	if !strings.EqualFold(f.Rates.CurrencyOf(ctx, target), displayCurrency) {
		// Override or preference named a currency that is not the destination
		// default; locate a country trading in it for the rate lookup.
		if cfg, err := f.Rates.Countries.FindByCurrency(ctx, displayCurrency); err == nil {
			target = cfg.Code
		} else {
			f.Logger.Warn().Str("currency", displayCurrency).Msg("no country for display currency")
			return currency.Round(amount, displayCurrency), 1, "exchange rate unavailable"
		}
	}
	converted, result := f.Rates.Convert(ctx, amount, opts.OriginCountry, target)
	if result.Fallback() {
		return converted, result.Rate, "exchange rate unavailable, showing unconverted amount"
	}
	return converted, result.Rate, ""
}

func (f *Formatter) originCurrency(ctx context.Context, opts Options) string {
	if f.Rates != nil && strings.TrimSpace(opts.OriginCountry) != "" {
		return f.Rates.CurrencyOf(ctx, opts.OriginCountry)
	}
	return f.defaultCurrency()
}

func (f *Formatter) defaultCurrency() string {
	if f != nil && strings.TrimSpace(f.DefaultCurrency) != "" {
		return strings.ToUpper(f.DefaultCurrency)
	}
	return "USD"
}

// render produces the human-readable string for an amount. It cannot fail;
// a bad currency code just renders with the code as prefix.
func render(amount float64, code string) string {
	decimals := currency.Decimals(code)
	formatted := printer.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(decimals)))
	if formatted == "" {
		return fallbackRender(amount)
	}
	return currency.Symbol(code) + formatted
}

func fallbackRender(amount float64) string {
	return "$" + strconv.FormatFloat(amount, 'f', -1, 64)
}
