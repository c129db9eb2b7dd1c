package models

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/invoice"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	AggregateModel
	Number    string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	ServiceID *uuid.UUID           `gorm:"type:uuid"`
	Amount    decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null"`
	Status    invoice.Status       `gorm:"type:varchar(20);not null;index"`
	IssueDate time.Time            `gorm:"type:date;not null"`
	DueDate   time.Time            `gorm:"type:date;not null;index"`
	PaidAt    *time.Time
	Notes     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	return &invoice.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		ClientID:          m.ClientID,
		ServiceID:         m.ServiceID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Status:            m.Status,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		PaidAt:            m.PaidAt,
		Notes:             m.Notes,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(i *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:    i.Number,
		ClientID:  i.ClientID,
		ServiceID: i.ServiceID,
		Amount:    i.Amount,
		Currency:  i.Currency,
		Status:    i.Status,
		IssueDate: i.IssueDate,
		DueDate:   i.DueDate,
		PaidAt:    i.PaidAt,
		Notes:     i.Notes,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
