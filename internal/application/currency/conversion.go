package currency

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/exchange"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RatesView is the public rate table
type RatesView struct {
	Base      string                     `json:"base"`
	Date      string                     `json:"date"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	Available bool                       `json:"available"`
}

// Rates returns the current rate table. With no snapshot at all the view
// is empty and Available is false.
func (s *RateService) Rates(ctx context.Context) RatesView {
	snap := s.Snapshot(ctx)
	if snap == nil {
		return RatesView{Base: string(exchange.AnchorCurrency), Rates: map[string]decimal.Decimal{}}
	}
	return RatesView{
		Base:      string(snap.Base),
		Date:      snap.Date,
		Rates:     snap.RatesByCode(),
		Available: true,
	}
}

// ConvertInput is a conversion request with raw currency codes
type ConvertInput struct {
	Amount decimal.Decimal
	From   string
	To     string
}

// ConversionResult carries a converted amount and its display string
type ConversionResult struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Converted decimal.Decimal `json:"converted"`
	Formatted string          `json:"formatted"`
	RatesDate string          `json:"rates_date,omitempty"`
	// Estimated is true when no rates were available and Converted equals Amount.
	Estimated bool `json:"estimated"`
}

// Convert converts between two supported currencies. Unknown codes fail
// with INVALID_CURRENCY_CODE; missing rates never fail.
func (s *RateService) Convert(ctx context.Context, in ConvertInput) (*ConversionResult, error) {
	from, err := valueobject.ParseCurrency(in.From)
	if err != nil {
		return nil, err
	}
	to, err := valueobject.ParseCurrency(in.To)
	if err != nil {
		return nil, err
	}

	source, err := valueobject.NewMoney(in.Amount, from)
	if err != nil {
		return nil, err
	}

	snap := s.Snapshot(ctx)
	converted := exchange.ConvertMoney(source, to, snap)
	formatted, err := converted.Format()
	if err != nil {
		return nil, err
	}

	res := &ConversionResult{
		Amount:    in.Amount,
		From:      string(from),
		To:        string(to),
		Converted: converted.Amount(),
		Formatted: formatted,
		Estimated: snap == nil && from != to,
	}
	if snap != nil {
		res.RatesDate = snap.Date
	}
	return res, nil
}
