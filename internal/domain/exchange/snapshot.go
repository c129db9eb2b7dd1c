// Package exchange holds exchange-rate snapshots and the conversion rules
// applied to every monetary value shown on the dashboard.
package exchange

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AnchorCurrency is the currency every snapshot rate is quoted against
const AnchorCurrency = valueobject.USD

// DefaultTTL is how long a fetched snapshot is considered fresh
const DefaultTTL = time.Hour

// Snapshot maps each currency to its rate relative to the anchor (USD).
// A snapshot is never mutated after it is built.
type Snapshot struct {
	Base      valueobject.Currency
	Rates     map[valueobject.Currency]decimal.Decimal
	Date      string
	FetchedAt time.Time
}

// NewSnapshot builds a snapshot from raw rates. Unsupported codes are dropped
// and the anchor is pinned to 1.
func NewSnapshot(rates map[string]decimal.Decimal, date string, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		Base:      AnchorCurrency,
		Rates:     make(map[valueobject.Currency]decimal.Decimal, len(valueobject.SupportedCurrencies)),
		Date:      date,
		FetchedAt: fetchedAt,
	}
	for code, rate := range rates {
		c, err := valueobject.ParseCurrency(code)
		if err != nil {
			continue
		}
		s.Rates[c] = rate
	}
	s.Rates[AnchorCurrency] = decimal.NewFromInt(1)
	return s
}

// Rate returns the rate for c, or 1 when c is missing or not positive.
func (s *Snapshot) Rate(c valueobject.Currency) decimal.Decimal {
	if s == nil {
		return decimal.NewFromInt(1)
	}
	r, ok := s.Rates[c]
	if !ok || !r.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return r
}

// IsFresh reports whether the snapshot was fetched within ttl of now
func (s *Snapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	if s == nil || s.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(s.FetchedAt) < ttl
}

// RatesByCode returns the rates keyed by plain currency code
func (s *Snapshot) RatesByCode() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.Rates))
	for c, r := range s.Rates {
		out[string(c)] = r
	}
	return out
}
