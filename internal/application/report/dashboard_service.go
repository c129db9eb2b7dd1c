package report

import (
	"context"
	"errors"
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/exchange"
	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/invoice"
	"github.com/agencyhub/backend/internal/domain/report"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/agencyhub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultWindowDays = report.DefaultWindowDays
	DefaultTopN       = 5
	MaxWindowDays     = 365
	MaxTopN           = 50
)

// ConverterProvider hands out a converter bound to the current rates
type ConverterProvider interface {
	Converter(ctx context.Context, display valueobject.Currency) exchange.Converter
}

// OverviewQuery tunes the dashboard rollups
type OverviewQuery struct {
	WindowDays int    `form:"window_days" binding:"omitempty,min=0,max=365"`
	Top        int    `form:"top" binding:"omitempty,min=1,max=50"`
	Currency   string `form:"currency" binding:"omitempty,len=3"`
}

func (q OverviewQuery) normalize() OverviewQuery {
	if q.WindowDays <= 0 {
		q.WindowDays = DefaultWindowDays
	}
	if q.WindowDays > MaxWindowDays {
		q.WindowDays = MaxWindowDays
	}
	if q.Top <= 0 {
		q.Top = DefaultTopN
	}
	if q.Top > MaxTopN {
		q.Top = MaxTopN
	}
	return q
}

// ClientBrief identifies a client in a rollup list
type ClientBrief struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RevenueOverview holds the finance-only rollups
type RevenueOverview struct {
	Total         decimal.Decimal          `json:"total"`
	ByCategory    []report.CategoryRevenue `json:"by_category"`
	TopPerformers []report.Performer       `json:"top_performers"`
}

// Overview is the full dashboard payload. Revenue and Invoices are nil for
// callers without finance access.
type Overview struct {
	Currency           string                  `json:"currency"`
	RatesDate          string                  `json:"rates_date,omitempty"`
	RatesEstimated     bool                    `json:"rates_estimated"`
	WindowDays         int                     `json:"window_days"`
	TotalClients       int                     `json:"total_clients"`
	LeadCount          int64                   `json:"lead_count"`
	ActiveClients      []ClientBrief           `json:"active_clients"`
	ExpiringClients    []report.ExpiringClient `json:"expiring_clients"`
	CompletedThisMonth []ClientBrief           `json:"completed_this_month"`
	Revenue            *RevenueOverview        `json:"revenue,omitempty"`
	Invoices           *report.InvoiceSummary  `json:"invoices,omitempty"`
	GeneratedAt        time.Time               `json:"generated_at"`
}

// DashboardService loads clients and invoices and runs the report rollups
type DashboardService struct {
	clients     client.ClientRepository
	invoices    invoice.InvoiceRepository
	preferences identity.PreferenceRepository
	rates       ConverterProvider
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	clients client.ClientRepository,
	invoices invoice.InvoiceRepository,
	preferences identity.PreferenceRepository,
	rates ConverterProvider,
	log *zap.Logger,
) *DashboardService {
	return &DashboardService{
		clients:     clients,
		invoices:    invoices,
		preferences: preferences,
		rates:       rates,
		logger:      log,
		now:         time.Now,
	}
}

// Overview computes every dashboard rollup for p. The display currency is
// the query override, else the caller's stored preference, else USD.
func (s *DashboardService) Overview(ctx context.Context, p *identity.Principal, q OverviewQuery) (*Overview, error) {
	if p == nil {
		return nil, shared.ErrUnauthorized
	}
	ctx, span := telemetry.StartSpan(ctx, "report", "overview")
	defer span.End()

	q = q.normalize()
	display, err := s.displayCurrency(ctx, p.UserID, q.Currency)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.AttrCurrency.String(string(display)))

	confirmed := client.ClientFilter{Filter: shared.Filter{Page: 1, OrderBy: "name", OrderDir: "asc"}, Kind: client.KindConfirmed}
	clients, err := s.clients.FindAll(ctx, confirmed)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	leads, err := s.clients.Count(ctx, client.ClientFilter{Kind: client.KindLead})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := s.now()
	conv := s.rates.Converter(ctx, display)
	out := &Overview{
		Currency:           string(display),
		RatesEstimated:     conv.Rates == nil,
		WindowDays:         q.WindowDays,
		TotalClients:       len(clients),
		LeadCount:          leads,
		ActiveClients:      briefs(report.ActiveClients(clients)),
		ExpiringClients:    report.ClientsWithExpiringServices(clients, q.WindowDays, now),
		CompletedThisMonth: briefs(report.CompletedClientsThisMonth(clients, now)),
		GeneratedAt:        now,
	}
	if conv.Rates != nil {
		out.RatesDate = conv.Rates.Date
	}

	if identity.HasPermission(p, identity.PermFinanceRead) {
		out.Revenue = revenueOverview(clients, q.Top, conv)

		invoices, err := s.invoices.FindAll(ctx, invoice.InvoiceFilter{Filter: shared.Filter{Page: 1}})
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		summary := report.SummarizeInvoices(invoices, conv, now)
		out.Invoices = &summary
	}

	logger.Enrich(ctx, s.logger).Debug("dashboard computed",
		zap.String("currency", out.Currency),
		zap.Int("clients", out.TotalClients),
		zap.Bool("finance", out.Revenue != nil),
		zap.Bool("rates_estimated", out.RatesEstimated),
	)
	return out, nil
}

func (s *DashboardService) displayCurrency(ctx context.Context, userID uuid.UUID, override string) (valueobject.Currency, error) {
	if override != "" {
		return valueobject.ParseCurrency(override)
	}
	pref, err := s.preferences.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return valueobject.DefaultCurrency, nil
		}
		return "", err
	}
	if pref.Currency == "" {
		return valueobject.DefaultCurrency, nil
	}
	return pref.Currency, nil
}

func revenueOverview(clients []client.Client, top int, conv exchange.Converter) *RevenueOverview {
	byCategory := report.RevenueByCategory(clients, conv)
	total := decimal.Zero
	for _, c := range byCategory {
		total = total.Add(c.Total)
	}
	return &RevenueOverview{
		Total:         total,
		ByCategory:    byCategory,
		TopPerformers: report.TopPerformers(clients, top, conv),
	}
}

func briefs(clients []client.Client) []ClientBrief {
	out := make([]ClientBrief, len(clients))
	for i := range clients {
		c := &clients[i]
		out[i] = ClientBrief{
			ID:          c.ID,
			Name:        c.Name,
			Status:      string(c.ResolvedStatus()),
			CompletedAt: c.CompletedAt,
		}
	}
	return out
}
