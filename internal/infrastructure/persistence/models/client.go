package models

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClientModel is the persistence model for the Client aggregate
type ClientModel struct {
	AggregateModel
	Name             string         `gorm:"type:varchar(200);not null;index"`
	Kind             client.Kind    `gorm:"type:varchar(20);not null;index"`
	Status           client.Status  `gorm:"type:varchar(20);not null;index"`
	Stage            client.Stage   `gorm:"type:varchar(20)"`
	Company          string         `gorm:"type:varchar(200)"`
	Email            string         `gorm:"type:varchar(200)"`
	Phone            string         `gorm:"type:varchar(50)"`
	Country          string         `gorm:"type:varchar(100)"`
	Notes            string         `gorm:"type:text"`
	SalesOwnerID     *uuid.UUID     `gorm:"type:uuid;index"`
	AccountManagerID *uuid.UUID     `gorm:"type:uuid;index"`
	CompletedAt      *time.Time     `gorm:"index"`
	Services         []ServiceModel `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ServiceModel is a row of client_services. Position keeps the order the
// services were added in.
type ServiceModel struct {
	BaseModel
	ClientID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Position     int                  `gorm:"not null;default:0"`
	Category     string               `gorm:"type:varchar(100);not null;index"`
	SubPackage   string               `gorm:"type:varchar(100)"`
	Price        decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	Currency     valueobject.Currency `gorm:"type:varchar(3);not null"`
	StartDate    time.Time            `gorm:"type:date;not null"`
	EndDate      time.Time            `gorm:"type:date;not null"`
	Status       client.ServiceStatus `gorm:"type:varchar(20);not null"`
	Deliverables *string              `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "client_services"
}

// ToDomain converts the persistence model to a domain Client. A service row
// with unreadable deliverables keeps the service without them.
func (m *ClientModel) ToDomain() *client.Client {
	c := &client.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Kind:              m.Kind,
		Status:            m.Status,
		Stage:             m.Stage,
		Contact: client.Contact{
			Company: m.Company,
			Email:   m.Email,
			Phone:   m.Phone,
			Country: m.Country,
			Notes:   m.Notes,
		},
		SalesOwnerID:     m.SalesOwnerID,
		AccountManagerID: m.AccountManagerID,
		CompletedAt:      m.CompletedAt,
		Services:         make([]client.Service, len(m.Services)),
	}
	for i := range m.Services {
		c.Services[i] = m.Services[i].ToDomain()
	}
	return c
}

// ToDomain converts a service row
func (m *ServiceModel) ToDomain() client.Service {
	s := client.Service{
		ID:         m.ID,
		Category:   m.Category,
		SubPackage: m.SubPackage,
		Price:      m.Price,
		Currency:   m.Currency,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Deliverables != nil {
		d, err := client.UnmarshalDeliverables([]byte(*m.Deliverables))
		if err != nil {
			modelLogger().Warn("failed to parse deliverables JSON",
				zap.String("service_id", m.ID.String()),
				zap.String("raw_json", *m.Deliverables),
				zap.Error(err))
		} else {
			s.Deliverables = d
		}
	}
	return s
}

// ClientModelFromDomain creates a persistence model from a domain Client
func ClientModelFromDomain(c *client.Client) (*ClientModel, error) {
	m := &ClientModel{
		Name:             c.Name,
		Kind:             c.Kind,
		Status:           c.Status,
		Stage:            c.Stage,
		Company:          c.Contact.Company,
		Email:            c.Contact.Email,
		Phone:            c.Contact.Phone,
		Country:          c.Contact.Country,
		Notes:            c.Contact.Notes,
		SalesOwnerID:     c.SalesOwnerID,
		AccountManagerID: c.AccountManagerID,
		CompletedAt:      c.CompletedAt,
		Services:         make([]ServiceModel, len(c.Services)),
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	for i := range c.Services {
		sm, err := ServiceModelFromDomain(c.ID, i, &c.Services[i])
		if err != nil {
			return nil, err
		}
		m.Services[i] = *sm
	}
	return m, nil
}

// ServiceModelFromDomain creates a service row at the given position
func ServiceModelFromDomain(clientID uuid.UUID, position int, s *client.Service) (*ServiceModel, error) {
	m := &ServiceModel{
		BaseModel:  BaseModel{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
		ClientID:   clientID,
		Position:   position,
		Category:   s.Category,
		SubPackage: s.SubPackage,
		Price:      s.Price,
		Currency:   s.Currency,
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Status:     s.Status,
	}
	if s.Deliverables != nil {
		raw, err := client.MarshalDeliverables(s.Deliverables)
		if err != nil {
			return nil, err
		}
		encoded := string(raw)
		m.Deliverables = &encoded
	}
	return m, nil
}
