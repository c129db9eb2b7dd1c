package client

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceStatus is the delivery state of a service
type ServiceStatus string

const (
	ServiceInProgress ServiceStatus = "in_progress"
	ServiceDelayed    ServiceStatus = "delayed"
	ServiceCompleted  ServiceStatus = "completed"
)

// IsValid reports whether s is a known service status
func (s ServiceStatus) IsValid() bool {
	switch s {
	case ServiceInProgress, ServiceDelayed, ServiceCompleted:
		return true
	}
	return false
}

// Service is a package engagement sold to a client. It only exists inside
// its owning Client.
type Service struct {
	ID           uuid.UUID
	Category     string
	SubPackage   string
	Price        decimal.Decimal
	Currency     valueobject.Currency
	StartDate    time.Time
	EndDate      time.Time
	Status       ServiceStatus
	Deliverables Deliverables
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ServiceInput carries the fields of a new service
type ServiceInput struct {
	Category     string
	SubPackage   string
	Price        decimal.Decimal
	Currency     valueobject.Currency
	StartDate    time.Time
	EndDate      time.Time
	Status       ServiceStatus
	Deliverables Deliverables
}

// ServicePatch replaces the non-nil fields of a service.
// ClearDeliverables removes the deliverables record.
type ServicePatch struct {
	Category          *string
	SubPackage        *string
	Price             *decimal.Decimal
	Currency          *valueobject.Currency
	StartDate         *time.Time
	EndDate           *time.Time
	Status            *ServiceStatus
	Deliverables      Deliverables
	ClearDeliverables bool
}

// NewService validates input and builds a service
func NewService(in ServiceInput) (Service, error) {
	if in.Status == "" {
		in.Status = ServiceInProgress
	}
	now := time.Now()
	s := Service{
		ID:           uuid.New(),
		Category:     in.Category,
		SubPackage:   in.SubPackage,
		Price:        in.Price,
		Currency:     in.Currency,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       in.Status,
		Deliverables: in.Deliverables,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Validate(); err != nil {
		return Service{}, err
	}
	return s, nil
}

// Validate enforces the service invariants
func (s Service) Validate() error {
	if s.Category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Service category is required")
	}
	if len(s.Category) > 100 || len(s.SubPackage) > 100 {
		return shared.NewDomainError("INVALID_CATEGORY", "Service category and sub-package cannot exceed 100 characters")
	}
	if s.Price.IsNegative() {
		return malformed("price cannot be negative")
	}
	if !s.Currency.IsValid() {
		_, err := valueobject.ParseCurrency(string(s.Currency))
		return err
	}
	if !s.Status.IsValid() {
		return shared.NewDomainError("INVALID_SERVICE_STATUS", "Unknown service status: "+string(s.Status))
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return malformed("start and end dates are required")
	}
	if s.EndDate.Before(s.StartDate) {
		return malformed("end date is before start date")
	}
	if s.Deliverables != nil {
		if err := s.Deliverables.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Money returns the service price as a Money value
func (s Service) Money() valueobject.Money {
	m, err := valueobject.NewMoney(s.Price, s.Currency)
	if err != nil {
		return valueobject.Zero(valueobject.DefaultCurrency)
	}
	return m
}

// DaysLeft is the number of calendar days until the end date
func (s Service) DaysLeft(now time.Time) int {
	return DaysUntil(now, s.EndDate)
}

// Progress is the deliverables completion percentage. Completed services
// report 100 regardless of deliverables.
func (s Service) Progress() int {
	if s.Status == ServiceCompleted {
		return 100
	}
	if s.Deliverables == nil {
		return 0
	}
	return s.Deliverables.Progress()
}

func (s Service) apply(p ServicePatch) Service {
	if p.Category != nil {
		s.Category = *p.Category
	}
	if p.SubPackage != nil {
		s.SubPackage = *p.SubPackage
	}
	if p.Price != nil {
		s.Price = *p.Price
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.StartDate != nil {
		s.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		s.EndDate = *p.EndDate
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.ClearDeliverables {
		s.Deliverables = nil
	} else if p.Deliverables != nil {
		s.Deliverables = p.Deliverables
	}
	return s
}
