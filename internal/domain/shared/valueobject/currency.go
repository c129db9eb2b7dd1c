package valueobject

import (
	"fmt"
	"strings"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	TRY Currency = "TRY" // Turkish Lira
	USD Currency = "USD" // US Dollar (rate anchor)
	EUR Currency = "EUR" // Euro
	SAR Currency = "SAR" // Saudi Riyal
	AED Currency = "AED" // UAE Dirham
	EGP Currency = "EGP" // Egyptian Pound
)

// DefaultCurrency is the display currency used when a user has no preference
const DefaultCurrency = USD

// CurrencyInfo is display metadata for a currency. It is only used for
// formatting, never for computation.
type CurrencyInfo struct {
	Code        Currency `json:"code"`
	Symbol      string   `json:"symbol"`
	Locale      string   `json:"locale"`
	SymbolFirst bool     `json:"symbol_first"`
}

var currencyInfo = map[Currency]CurrencyInfo{
	TRY: {Code: TRY, Symbol: "₺", Locale: "tr-TR", SymbolFirst: true},
	USD: {Code: USD, Symbol: "$", Locale: "en-US", SymbolFirst: true},
	EUR: {Code: EUR, Symbol: "€", Locale: "de-DE"},
	SAR: {Code: SAR, Symbol: "ر.س", Locale: "ar-SA"},
	AED: {Code: AED, Symbol: "د.إ", Locale: "ar-AE"},
	EGP: {Code: EGP, Symbol: "ج.م", Locale: "ar-EG"},
}

// SupportedCurrencies lists every currency in display order
var SupportedCurrencies = []Currency{TRY, USD, EUR, SAR, AED, EGP}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", invalidCurrency(code)
	}
	return c, nil
}

// IsValid reports whether the currency has registered display metadata
func (c Currency) IsValid() bool {
	_, ok := currencyInfo[c]
	return ok
}

// Info returns the display metadata for the currency
func (c Currency) Info() (CurrencyInfo, error) {
	info, ok := currencyInfo[c]
	if !ok {
		return CurrencyInfo{}, invalidCurrency(string(c))
	}
	return info, nil
}

// String returns the currency code
func (c Currency) String() string {
	return string(c)
}

// Format renders amount in the currency's locale with up to two fraction
// digits. Trailing zero fractions are dropped, so 85 renders as "$85".
func Format(amount decimal.Decimal, c Currency) (string, error) {
	info, ok := currencyInfo[c]
	if !ok {
		return "", invalidCurrency(string(c))
	}

	tag, err := language.Parse(info.Locale)
	if err != nil {
		return "", fmt.Errorf("parse locale %s: %w", info.Locale, err)
	}
	p := message.NewPrinter(tag)

	rounded := amount.Round(2)
	digits := formatDigits(p, rounded.Abs())

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	if info.SymbolFirst {
		return sign + info.Symbol + digits, nil
	}
	return sign + digits + " " + info.Symbol, nil
}

// formatDigits renders a non-negative amount with at most two fraction
// digits. The integer part is printed from a uint64 so it stays exact;
// amounts beyond that range go through float64.
func formatDigits(p *message.Printer, abs decimal.Decimal) string {
	whole := abs.Truncate(0)
	intPart := whole.BigInt()
	if !intPart.IsUint64() {
		f, _ := abs.Float64()
		return p.Sprint(number.Decimal(f, number.MinFractionDigits(0), number.MaxFractionDigits(2)))
	}

	digits := p.Sprint(number.Decimal(intPart.Uint64()))
	cents := abs.Sub(whole).Shift(2).IntPart()
	if cents == 0 {
		return digits
	}
	// "0.25" in the locale's digits; keep the separator and fraction
	zero := p.Sprint(number.Decimal(0))
	frac := p.Sprint(number.Decimal(float64(cents)/100, number.MinFractionDigits(0), number.MaxFractionDigits(2)))
	return digits + strings.TrimPrefix(frac, zero)
}

func invalidCurrency(code string) *shared.DomainError {
	return shared.NewDomainError(shared.ErrInvalidCurrencyCode.Code, fmt.Sprintf("unsupported currency code %q", code))
}
