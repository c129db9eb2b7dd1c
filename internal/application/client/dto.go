package client

import (
	"encoding/json"
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/report"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format for service dates
const dateLayout = time.DateOnly

// ContactRequest carries a client's contact attributes
type ContactRequest struct {
	Company string `json:"company" binding:"max=200"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Country string `json:"country" binding:"max=100"`
	Notes   string `json:"notes" binding:"max=2000"`
}

func (r ContactRequest) toDomain() client.Contact {
	return client.Contact{Company: r.Company, Email: r.Email, Phone: r.Phone, Country: r.Country, Notes: r.Notes}
}

// CreateClientRequest creates a lead or confirmed client
type CreateClientRequest struct {
	Name             string         `json:"name" binding:"required,min=1,max=200"`
	Kind             string         `json:"kind" binding:"omitempty,oneof=lead confirmed"`
	Contact          ContactRequest `json:"contact"`
	SalesOwnerID     *uuid.UUID     `json:"sales_owner_id"`
	AccountManagerID *uuid.UUID     `json:"account_manager_id"`
}

// UpdateClientRequest replaces the fields that are present
type UpdateClientRequest struct {
	Name             *string         `json:"name" binding:"omitempty,min=1,max=200"`
	Kind             *string         `json:"kind" binding:"omitempty,oneof=lead confirmed"`
	Status           *string         `json:"status" binding:"omitempty,oneof=active paused finished archived"`
	Stage            *string         `json:"stage" binding:"omitempty,oneof=new contacted proposal negotiation won lost"`
	Contact          *ContactRequest `json:"contact"`
	SalesOwnerID     *uuid.UUID      `json:"sales_owner_id"`
	AccountManagerID *uuid.UUID      `json:"account_manager_id"`
}

func (r UpdateClientRequest) toPatch() client.Patch {
	p := client.Patch{
		Name:             r.Name,
		SalesOwnerID:     r.SalesOwnerID,
		AccountManagerID: r.AccountManagerID,
	}
	if r.Kind != nil {
		k := client.Kind(*r.Kind)
		p.Kind = &k
	}
	if r.Status != nil {
		s := client.Status(*r.Status)
		p.Status = &s
	}
	if r.Stage != nil {
		s := client.Stage(*r.Stage)
		p.Stage = &s
	}
	if r.Contact != nil {
		c := r.Contact.toDomain()
		p.Contact = &c
	}
	return p
}

// AddServiceRequest appends a service to a client. Deliverables use the
// "type" discriminant: social, logo, website or custom.
type AddServiceRequest struct {
	Category     string          `json:"category" binding:"required,max=100"`
	SubPackage   string          `json:"sub_package" binding:"max=100"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency" binding:"required,len=3"`
	StartDate    string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate      string          `json:"end_date" binding:"required,datetime=2006-01-02"`
	Status       string          `json:"status" binding:"omitempty,oneof=in_progress delayed completed"`
	Deliverables json.RawMessage `json:"deliverables" swaggertype:"object"`
}

func (r AddServiceRequest) toInput() (client.ServiceInput, error) {
	currency, err := valueobject.ParseCurrency(r.Currency)
	if err != nil {
		return client.ServiceInput{}, err
	}
	start, err := parseDate(r.StartDate)
	if err != nil {
		return client.ServiceInput{}, err
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return client.ServiceInput{}, err
	}
	d, err := client.UnmarshalDeliverables(r.Deliverables)
	if err != nil {
		return client.ServiceInput{}, err
	}
	return client.ServiceInput{
		Category:     r.Category,
		SubPackage:   r.SubPackage,
		Price:        r.Price,
		Currency:     currency,
		StartDate:    start,
		EndDate:      end,
		Status:       client.ServiceStatus(r.Status),
		Deliverables: d,
	}, nil
}

// UpdateServiceRequest replaces the fields that are present. Sending
// "deliverables": null clears them.
type UpdateServiceRequest struct {
	Category     *string          `json:"category" binding:"omitempty,min=1,max=100"`
	SubPackage   *string          `json:"sub_package" binding:"omitempty,max=100"`
	Price        *decimal.Decimal `json:"price"`
	Currency     *string          `json:"currency" binding:"omitempty,len=3"`
	StartDate    *string          `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string          `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Status       *string          `json:"status" binding:"omitempty,oneof=in_progress delayed completed"`
	Deliverables json.RawMessage  `json:"deliverables,omitempty" swaggertype:"object"`
}

func (r UpdateServiceRequest) toPatch() (client.ServicePatch, error) {
	p := client.ServicePatch{
		Category:   r.Category,
		SubPackage: r.SubPackage,
		Price:      r.Price,
	}
	if r.Currency != nil {
		c, err := valueobject.ParseCurrency(*r.Currency)
		if err != nil {
			return p, err
		}
		p.Currency = &c
	}
	if r.StartDate != nil {
		d, err := parseDate(*r.StartDate)
		if err != nil {
			return p, err
		}
		p.StartDate = &d
	}
	if r.EndDate != nil {
		d, err := parseDate(*r.EndDate)
		if err != nil {
			return p, err
		}
		p.EndDate = &d
	}
	if r.Status != nil {
		s := client.ServiceStatus(*r.Status)
		p.Status = &s
	}
	switch {
	case len(r.Deliverables) == 0:
	case string(r.Deliverables) == "null":
		p.ClearDeliverables = true
	default:
		d, err := client.UnmarshalDeliverables(r.Deliverables)
		if err != nil {
			return p, err
		}
		p.Deliverables = d
	}
	return p, nil
}

// ClientListFilter narrows client listings
type ClientListFilter struct {
	Search           string     `form:"search"`
	Kind             string     `form:"kind" binding:"omitempty,oneof=lead confirmed"`
	Status           string     `form:"status" binding:"omitempty,oneof=active paused finished archived"`
	Stage            string     `form:"stage" binding:"omitempty,oneof=new contacted proposal negotiation won lost"`
	AccountManagerID *uuid.UUID `form:"account_manager_id"`
	SalesOwnerID     *uuid.UUID `form:"sales_owner_id"`
	Page             int        `form:"page" binding:"omitempty,min=1"`
	PageSize         int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy          string     `form:"order_by" binding:"omitempty,oneof=name created_at updated_at status"`
	OrderDir         string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ContactResponse is a client's contact block
type ContactResponse struct {
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// ServiceResponse is a service as shown to the dashboard
type ServiceResponse struct {
	ID           uuid.UUID       `json:"id"`
	Category     string          `json:"category"`
	SubPackage   string          `json:"sub_package,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Status       string          `json:"status"`
	DaysLeft     int             `json:"days_left"`
	Progress     int             `json:"progress"`
	Deliverables json.RawMessage `json:"deliverables,omitempty" swaggertype:"object"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ClientResponse is a client with its services
type ClientResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Kind             string            `json:"kind"`
	Status           string            `json:"status"`
	Stage            string            `json:"stage,omitempty"`
	Contact          ContactResponse   `json:"contact"`
	SalesOwnerID     *uuid.UUID        `json:"sales_owner_id,omitempty"`
	AccountManagerID *uuid.UUID        `json:"account_manager_id,omitempty"`
	Services         []ServiceResponse `json:"services"`
	Deadline         *DeadlineResponse `json:"deadline,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// DeadlineResponse is the earliest in-progress deadline of a client,
// judged against the default expiring window
type DeadlineResponse struct {
	DaysLeft   int  `json:"days_left"`
	IsExpiring bool `json:"is_expiring"`
	IsOverdue  bool `json:"is_overdue"`
}

// ToServiceResponse converts a service; days left are counted from now
func ToServiceResponse(s client.Service, now time.Time) ServiceResponse {
	resp := ServiceResponse{
		ID:         s.ID,
		Category:   s.Category,
		SubPackage: s.SubPackage,
		Price:      s.Price,
		Currency:   string(s.Currency),
		StartDate:  s.StartDate.Format(dateLayout),
		EndDate:    s.EndDate.Format(dateLayout),
		Status:     string(s.Status),
		DaysLeft:   s.DaysLeft(now),
		Progress:   s.Progress(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
	if s.Deliverables != nil {
		if raw, err := client.MarshalDeliverables(s.Deliverables); err == nil {
			resp.Deliverables = raw
		}
	}
	return resp
}

// ToClientResponse converts a client aggregate
func ToClientResponse(c *client.Client, now time.Time) ClientResponse {
	services := make([]ServiceResponse, len(c.Services))
	for i, s := range c.Services {
		services[i] = ToServiceResponse(s, now)
	}
	resp := ClientResponse{
		ID:     c.ID,
		Name:   c.Name,
		Kind:   string(c.Kind),
		Status: string(c.ResolvedStatus()),
		Stage:  string(c.Stage),
		Contact: ContactResponse{
			Company: c.Contact.Company,
			Email:   c.Contact.Email,
			Phone:   c.Contact.Phone,
			Country: c.Contact.Country,
			Notes:   c.Contact.Notes,
		},
		SalesOwnerID:     c.SalesOwnerID,
		AccountManagerID: c.AccountManagerID,
		Services:         services,
		CompletedAt:      c.CompletedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if v, ok := report.DeadlineView(c, report.DefaultWindowDays, now); ok {
		resp.Deadline = &DeadlineResponse{DaysLeft: v.DaysLeft, IsExpiring: v.IsExpiring, IsOverdue: v.IsOverdue}
	}
	return resp
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.ErrMalformedService.Code, "Invalid date: "+s)
	}
	return t, nil
}
