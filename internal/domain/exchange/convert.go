package exchange

import (
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Convert converts amount between currencies through the USD anchor.
//
// It fails open: the same currency, a nil snapshot, or a currency missing
// from the snapshot never produce an error. The first two return amount
// untouched; a missing currency is treated as rate 1. Converted results are
// rounded half away from zero to two places, so A->B->A may drift by a cent.
func Convert(amount decimal.Decimal, from, to valueobject.Currency, rates *Snapshot) decimal.Decimal {
	if from == to {
		return amount
	}
	if rates == nil {
		return amount
	}
	return amount.Div(rates.Rate(from)).Mul(rates.Rate(to)).Round(2)
}

// ConvertMoney converts m into the target currency
func ConvertMoney(m valueobject.Money, to valueobject.Currency, rates *Snapshot) valueobject.Money {
	converted, err := valueobject.NewMoney(Convert(m.Amount(), m.Currency(), to, rates), to)
	if err != nil {
		// target not supported: keep the source money
		return m
	}
	return converted
}

// Converter binds a snapshot to a display currency.
type Converter struct {
	Rates   *Snapshot
	Display valueobject.Currency
}

// NewConverter returns a converter into display; an empty display falls back to USD.
func NewConverter(rates *Snapshot, display valueobject.Currency) Converter {
	if display == "" {
		display = valueobject.DefaultCurrency
	}
	return Converter{Rates: rates, Display: display}
}

// ToDisplay converts amount from the given currency into the display currency
func (c Converter) ToDisplay(amount decimal.Decimal, from valueobject.Currency) decimal.Decimal {
	return Convert(amount, from, c.Display, c.Rates)
}
