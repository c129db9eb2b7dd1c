package invoice

import (
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the billing state of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is a known invoice status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// IsUnpaid reports whether the invoice still awaits payment
func (s Status) IsUnpaid() bool {
	return s == StatusDraft || s == StatusSent
}

// Invoice bills a client for one or more services
type Invoice struct {
	shared.BaseAggregateRoot
	Number    string
	ClientID  uuid.UUID
	ServiceID *uuid.UUID
	Amount    decimal.Decimal
	Currency  valueobject.Currency
	Status    Status
	IssueDate time.Time
	DueDate   time.Time
	PaidAt    *time.Time
	Notes     string
}

// NewInvoice creates a draft invoice
func NewInvoice(number string, clientID uuid.UUID, amount valueobject.Money, issueDate, dueDate time.Time) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number is required")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Invoice must reference a client")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount cannot be negative")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		ClientID:          clientID,
		Amount:            amount.Amount(),
		Currency:          amount.Currency(),
		Status:            StatusDraft,
		IssueDate:         issueDate,
		DueDate:           dueDate,
	}, nil
}

// Money returns the invoice amount as Money. It fails when the stored
// currency is not supported.
func (i *Invoice) Money() (valueobject.Money, error) {
	return valueobject.NewMoney(i.Amount, i.Currency)
}

// Send marks a draft invoice as sent
func (i *Invoice) Send() error {
	if i.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be sent")
	}
	i.Status = StatusSent
	i.touch()
	return nil
}

// MarkPaid records payment of an unpaid invoice
func (i *Invoice) MarkPaid(at time.Time) error {
	if !i.Status.IsUnpaid() {
		return shared.NewDomainError("INVALID_STATE", "Only draft or sent invoices can be paid")
	}
	i.Status = StatusPaid
	i.PaidAt = &at
	i.touch()
	return nil
}

// Cancel voids an unpaid invoice
func (i *Invoice) Cancel() error {
	if !i.Status.IsUnpaid() {
		return shared.NewDomainError("INVALID_STATE", "Only draft or sent invoices can be cancelled")
	}
	i.Status = StatusCancelled
	i.touch()
	return nil
}

// IsOverdue reports whether an unpaid invoice is past its due date. The due
// date itself is not overdue.
func (i *Invoice) IsOverdue(now time.Time) bool {
	if !i.Status.IsUnpaid() {
		return false
	}
	due := i.DueDate.UTC()
	n := now.UTC()
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return dueDay.Before(today)
}

func (i *Invoice) touch() {
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}
