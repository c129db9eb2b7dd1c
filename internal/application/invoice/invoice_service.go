package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/invoice"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/agencyhub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var (
	ErrInvoiceNumberExists = shared.NewDomainError("INVOICE_NUMBER_EXISTS", "Invoice number already exists")
	ErrServiceNotOnClient  = shared.NewDomainError("SERVICE_NOT_FOUND", "Service does not belong to this client")
)

// CreateInvoiceRequest issues a draft invoice
type CreateInvoiceRequest struct {
	Number    string          `json:"number" binding:"required,min=1,max=50"`
	ClientID  uuid.UUID       `json:"client_id" binding:"required"`
	ServiceID *uuid.UUID      `json:"service_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency" binding:"required,len=3"`
	IssueDate string          `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate   string          `json:"due_date" binding:"required,datetime=2006-01-02"`
	Notes     string          `json:"notes" binding:"max=2000"`
}

// InvoiceListFilter is the query of the invoice listing
type InvoiceListFilter struct {
	ClientID *uuid.UUID `form:"client_id"`
	Status   string     `form:"status" binding:"omitempty,oneof=draft sent paid cancelled"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// InvoiceResponse is an invoice as returned by the API
type InvoiceResponse struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	ClientID  uuid.UUID       `json:"client_id"`
	ServiceID *uuid.UUID      `json:"service_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Formatted string          `json:"formatted"`
	Status    string          `json:"status"`
	Overdue   bool            `json:"overdue"`
	IssueDate string          `json:"issue_date"`
	DueDate   string          `json:"due_date"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToInvoiceResponse converts an invoice aggregate. A stored amount that
// cannot be formatted is rendered plainly and reported through log.
func ToInvoiceResponse(inv *invoice.Invoice, now time.Time, log *zap.Logger) InvoiceResponse {
	formatted, err := formatAmount(inv)
	if err != nil {
		log.Warn("invoice amount not formattable",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("currency", string(inv.Currency)),
			zap.Error(err))
		formatted = inv.Amount.StringFixed(2) + " " + string(inv.Currency)
	}
	return InvoiceResponse{
		ID:        inv.ID,
		Number:    inv.Number,
		ClientID:  inv.ClientID,
		ServiceID: inv.ServiceID,
		Amount:    inv.Amount,
		Currency:  string(inv.Currency),
		Formatted: formatted,
		Status:    string(inv.Status),
		Overdue:   inv.IsOverdue(now),
		IssueDate: inv.IssueDate.Format(dateLayout),
		DueDate:   inv.DueDate.Format(dateLayout),
		PaidAt:    inv.PaidAt,
		Notes:     inv.Notes,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

func formatAmount(inv *invoice.Invoice) (string, error) {
	m, err := inv.Money()
	if err != nil {
		return "", err
	}
	return m.Format()
}

// InvoiceService issues invoices and moves them through their lifecycle
type InvoiceService struct {
	invoices invoice.InvoiceRepository
	clients  client.ClientRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoices invoice.InvoiceRepository, clients client.ClientRepository, log *zap.Logger) *InvoiceService {
	return &InvoiceService{invoices: invoices, clients: clients, logger: log, now: time.Now}
}

// Create issues a draft invoice for an existing client
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "invoice", "create")
	defer span.End()

	currency, err := valueobject.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		return nil, err
	}
	issue, err := parseDate(req.IssueDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	owner, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if req.ServiceID != nil {
		if _, ok := owner.Service(*req.ServiceID); !ok {
			return nil, ErrServiceNotOnClient
		}
	}

	if _, err := s.invoices.FindByNumber(ctx, req.Number); err == nil {
		return nil, ErrInvoiceNumberExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	inv, err := invoice.NewInvoice(req.Number, owner.ID, amount, issue, due)
	if err != nil {
		return nil, err
	}
	inv.ServiceID = req.ServiceID
	inv.Notes = req.Notes

	if err := s.invoices.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.AttrInvoiceID.String(inv.ID.String()), telemetry.AttrClientID.String(owner.ID.String()))
	logger.Enrich(ctx, s.logger).Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("client_id", owner.ID.String()))

	resp := ToInvoiceResponse(inv, s.now(), logger.Enrich(ctx, s.logger))
	return &resp, nil
}

// Get returns one invoice
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv, s.now(), logger.Enrich(ctx, s.logger))
	return &resp, nil
}

// List returns a page of invoices, newest due date first
func (s *InvoiceService) List(ctx context.Context, f InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	filter := invoice.InvoiceFilter{Filter: shared.DefaultFilter(), ClientID: f.ClientID, Status: invoice.Status(f.Status)}
	filter.OrderBy = "due_date"
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}

	items, err := s.invoices.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoices.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	log := logger.Enrich(ctx, s.logger)
	out := make([]InvoiceResponse, len(items))
	for i := range items {
		out[i] = ToInvoiceResponse(&items[i], now, log)
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Send marks a draft invoice as sent
func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, "sent", func(inv *invoice.Invoice) error { return inv.Send() })
}

// MarkPaid records payment at the current time
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, "paid", func(inv *invoice.Invoice) error { return inv.MarkPaid(s.now()) })
}

// Cancel voids an unpaid invoice
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, id, "cancelled", func(inv *invoice.Invoice) error { return inv.Cancel() })
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, action string, apply func(*invoice.Invoice) error) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(inv); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	logger.Enrich(ctx, s.logger).Info("invoice "+action,
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number))

	resp := ToInvoiceResponse(inv, s.now(), logger.Enrich(ctx, s.logger))
	return &resp, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Invalid date: "+s)
	}
	return t, nil
}
