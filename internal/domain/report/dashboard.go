// Package report computes the dashboard rollups. Every function is pure:
// the current time and the currency converter are passed in, and nothing
// is cached between calls.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/exchange"
	"github.com/agencyhub/backend/internal/domain/invoice"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultWindowDays is the expiring window used when none is requested
const DefaultWindowDays = 14

// ExpiringClient is the derived per-client deadline view. DaysLeft is
// negative once the earliest in-progress deadline has passed; such clients
// stay expiring and carry IsOverdue.
type ExpiringClient struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	DaysLeft   int       `json:"days_left"`
	IsExpiring bool      `json:"is_expiring"`
	IsOverdue  bool      `json:"is_overdue"`
}

// CategoryRevenue is the converted revenue of one package category
type CategoryRevenue struct {
	Category string               `json:"category"`
	Total    decimal.Decimal      `json:"total"`
	Currency valueobject.Currency `json:"currency"`
}

// Performer is a client ranked by converted revenue. Percent is relative to
// the first entry of the ranking it belongs to.
type Performer struct {
	ClientID uuid.UUID            `json:"client_id"`
	Name     string               `json:"name"`
	Revenue  decimal.Decimal      `json:"revenue"`
	Currency valueobject.Currency `json:"currency"`
	Percent  decimal.Decimal      `json:"percent"`
}

// InvoiceBucket is a count with a converted total
type InvoiceBucket struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// InvoiceSummary partitions invoices by payment state. Overdue is a subset
// of Unpaid.
type InvoiceSummary struct {
	Currency valueobject.Currency `json:"currency"`
	Paid     InvoiceBucket        `json:"paid"`
	Unpaid   InvoiceBucket        `json:"unpaid"`
	Overdue  InvoiceBucket        `json:"overdue"`
}

var hundred = decimal.NewFromInt(100)

// ActiveClients returns the clients whose resolved status is active
func ActiveClients(clients []client.Client) []client.Client {
	out := make([]client.Client, 0, len(clients))
	for i := range clients {
		if clients[i].ResolvedStatus() == client.StatusActive {
			out = append(out, clients[i])
		}
	}
	return out
}

// ClientsWithExpiringServices returns active clients whose earliest
// in-progress deadline is within windowDays of now, most urgent first.
// Deadlines already passed count as expiring.
func ClientsWithExpiringServices(clients []client.Client, windowDays int, now time.Time) []ExpiringClient {
	out := make([]ExpiringClient, 0)
	for i := range clients {
		if v, ok := DeadlineView(&clients[i], windowDays, now); ok && v.IsExpiring {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysLeft != out[j].DaysLeft {
			return out[i].DaysLeft < out[j].DaysLeft
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DeadlineView builds the derived deadline view of a single client. The
// boolean is false when the client has no in-progress service.
func DeadlineView(c *client.Client, windowDays int, now time.Time) (ExpiringClient, bool) {
	days, ok := c.MinDaysLeft(now)
	if !ok {
		return ExpiringClient{ID: c.ID, Name: c.Name}, false
	}
	return ExpiringClient{
		ID:         c.ID,
		Name:       c.Name,
		DaysLeft:   days,
		IsExpiring: c.ResolvedStatus() == client.StatusActive && days <= windowDays,
		IsOverdue:  days < 0,
	}, true
}

// CompletedClientsThisMonth returns finished clients whose completion falls
// in now's calendar month.
func CompletedClientsThisMonth(clients []client.Client, now time.Time) []client.Client {
	out := make([]client.Client, 0)
	for i := range clients {
		c := &clients[i]
		if c.ResolvedStatus() != client.StatusFinished || c.CompletedAt == nil {
			continue
		}
		done := c.CompletedAt.In(now.Location())
		if done.Year() == now.Year() && done.Month() == now.Month() {
			out = append(out, *c)
		}
	}
	return out
}

// ClientRevenue sums a client's service prices in the display currency
func ClientRevenue(c *client.Client, conv exchange.Converter) decimal.Decimal {
	total := decimal.Zero
	for i := range c.Services {
		s := &c.Services[i]
		total = total.Add(conv.ToDisplay(s.Price, s.Currency))
	}
	return total
}

// RevenueByCategory groups converted service prices by category, largest
// first. Categories totalling zero are dropped.
func RevenueByCategory(clients []client.Client, conv exchange.Converter) []CategoryRevenue {
	totals := make(map[string]decimal.Decimal)
	for i := range clients {
		for j := range clients[i].Services {
			s := &clients[i].Services[j]
			category := strings.TrimSpace(s.Category)
			totals[category] = totals[category].Add(conv.ToDisplay(s.Price, s.Currency))
		}
	}

	out := make([]CategoryRevenue, 0, len(totals))
	for category, total := range totals {
		if total.IsZero() {
			continue
		}
		out = append(out, CategoryRevenue{Category: category, Total: total, Currency: conv.Display})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopPerformers ranks clients by converted revenue and keeps the first n.
// Bars are scaled against the top entry, so the leader is always 100%.
// Clients without revenue are not ranked.
func TopPerformers(clients []client.Client, n int, conv exchange.Converter) []Performer {
	if n <= 0 {
		return []Performer{}
	}
	ranked := make([]Performer, 0, len(clients))
	for i := range clients {
		c := &clients[i]
		revenue := ClientRevenue(c, conv)
		if !revenue.IsPositive() {
			continue
		}
		ranked = append(ranked, Performer{ClientID: c.ID, Name: c.Name, Revenue: revenue, Currency: conv.Display})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].Revenue.Cmp(ranked[j].Revenue); c != 0 {
			return c > 0
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	if len(ranked) == 0 {
		return ranked
	}

	top := ranked[0].Revenue
	for i := range ranked {
		ranked[i].Percent = ranked[i].Revenue.Div(top).Mul(hundred).Round(2)
	}
	return ranked
}

// SummarizeInvoices buckets invoices into paid, unpaid (draft or sent) and
// overdue. Cancelled invoices are ignored.
func SummarizeInvoices(invoices []invoice.Invoice, conv exchange.Converter, now time.Time) InvoiceSummary {
	sum := InvoiceSummary{
		Currency: conv.Display,
		Paid:     InvoiceBucket{Total: decimal.Zero},
		Unpaid:   InvoiceBucket{Total: decimal.Zero},
		Overdue:  InvoiceBucket{Total: decimal.Zero},
	}
	for i := range invoices {
		inv := &invoices[i]
		amount := conv.ToDisplay(inv.Amount, inv.Currency)
		switch {
		case inv.Status == invoice.StatusPaid:
			sum.Paid.add(amount)
		case inv.Status.IsUnpaid():
			sum.Unpaid.add(amount)
			if inv.IsOverdue(now) {
				sum.Overdue.add(amount)
			}
		}
	}
	return sum
}

func (b *InvoiceBucket) add(amount decimal.Decimal) {
	b.Count++
	b.Total = b.Total.Add(amount)
}
