package client

import (
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Kind separates prospective leads from confirmed clients
type Kind string

const (
	KindLead      Kind = "lead"
	KindConfirmed Kind = "confirmed"
)

// Status is the client lifecycle status
type Status string

const (
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
	StatusArchived Status = "archived"
)

// IsValid reports whether s is a known client status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusFinished, StatusArchived:
		return true
	}
	return false
}

// Stage is the sales pipeline position of a lead
type Stage string

const (
	StageNew         Stage = "new"
	StageContacted   Stage = "contacted"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageWon         Stage = "won"
	StageLost        Stage = "lost"
)

// IsValid reports whether s is a known pipeline stage
func (s Stage) IsValid() bool {
	switch s {
	case StageNew, StageContacted, StageProposal, StageNegotiation, StageWon, StageLost:
		return true
	}
	return false
}

// Contact holds the reachable attributes of a client
type Contact struct {
	Company string
	Email   string
	Phone   string
	Country string
	Notes   string
}

// Client is the aggregate root owning an ordered list of services
type Client struct {
	shared.BaseAggregateRoot
	Name             string
	Kind             Kind
	Status           Status
	Stage            Stage
	Contact          Contact
	SalesOwnerID     *uuid.UUID
	AccountManagerID *uuid.UUID
	CompletedAt      *time.Time
	Services         []Service
}

// Patch replaces the non-nil scalar fields of a client. Services are never
// touched by a client patch.
type Patch struct {
	Name             *string
	Kind             *Kind
	Status           *Status
	Stage            *Stage
	Contact          *Contact
	SalesOwnerID     *uuid.UUID
	AccountManagerID *uuid.UUID
}

// NewClient creates a client. Leads start in the "new" pipeline stage.
func NewClient(name string, kind Kind, contact Contact) (*Client, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = KindLead
	}
	if kind != KindLead && kind != KindConfirmed {
		return nil, shared.NewDomainError("INVALID_KIND", "Client kind must be lead or confirmed")
	}
	if err := validateContact(contact); err != nil {
		return nil, err
	}

	c := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Kind:              kind,
		Status:            StatusActive,
		Contact:           contact,
		Services:          make([]Service, 0),
	}
	if kind == KindLead {
		c.Stage = StageNew
	}
	c.AddDomainEvent(NewClientCreatedEvent(c))
	return c, nil
}

// Apply replaces the fields present in p and re-resolves the status.
func (c *Client) Apply(p Patch) error {
	prev := c.Status
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return err
		}
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Kind != nil {
		if *p.Kind != KindLead && *p.Kind != KindConfirmed {
			return shared.NewDomainError("INVALID_KIND", "Client kind must be lead or confirmed")
		}
		c.Kind = *p.Kind
	}
	if p.Stage != nil {
		if *p.Stage != "" && !p.Stage.IsValid() {
			return shared.NewDomainError("INVALID_STAGE", "Unknown pipeline stage: "+string(*p.Stage))
		}
		c.Stage = *p.Stage
	}
	if p.Contact != nil {
		if err := validateContact(*p.Contact); err != nil {
			return err
		}
		c.Contact = *p.Contact
	}
	if p.SalesOwnerID != nil {
		c.SalesOwnerID = nilIfZero(*p.SalesOwnerID)
	}
	if p.AccountManagerID != nil {
		c.AccountManagerID = nilIfZero(*p.AccountManagerID)
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Unknown client status: "+string(*p.Status))
		}
		c.Status = *p.Status
	}
	c.refreshStatus(prev)
	c.touch()
	return nil
}

// ConvertToConfirmed turns a lead into a confirmed client
func (c *Client) ConvertToConfirmed() error {
	if c.Kind == KindConfirmed {
		return shared.NewDomainError("ALREADY_CONFIRMED", "Client is already confirmed")
	}
	if c.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived leads cannot be converted")
	}
	c.Kind = KindConfirmed
	c.Stage = StageWon
	c.touch()
	return nil
}

// AddService appends a service and re-resolves the status
func (c *Client) AddService(in ServiceInput) (*Service, error) {
	s, err := NewService(in)
	if err != nil {
		return nil, err
	}
	prev := c.Status
	c.Services = append(c.Services, s)
	c.refreshStatus(prev)
	c.touch()
	return &c.Services[len(c.Services)-1], nil
}

// UpdateService replaces the patched fields of the named service and
// re-resolves the client status through ResolveStatus.
func (c *Client) UpdateService(serviceID uuid.UUID, p ServicePatch) (*Service, error) {
	idx := c.serviceIndex(serviceID)
	if idx < 0 {
		return nil, shared.NewDomainError("SERVICE_NOT_FOUND", "Service not found on this client")
	}
	updated := c.Services[idx].apply(p)
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now()
	prev := c.Status
	c.Services[idx] = updated

	c.refreshStatus(prev)
	c.touch()
	return &c.Services[idx], nil
}

// Service returns the service with the given id
func (c *Client) Service(serviceID uuid.UUID) (*Service, bool) {
	idx := c.serviceIndex(serviceID)
	if idx < 0 {
		return nil, false
	}
	return &c.Services[idx], true
}

// ResolvedStatus returns the status derived from the current services
func (c *Client) ResolvedStatus() Status {
	return ResolveStatus(c.Status, c.Services)
}

// MinDaysLeft returns the smallest days-left across in-progress services.
// ok is false when the client has no in-progress service.
func (c *Client) MinDaysLeft(now time.Time) (days int, ok bool) {
	for i := range c.Services {
		s := &c.Services[i]
		if s.Status != ServiceInProgress {
			continue
		}
		d := s.DaysLeft(now)
		if !ok || d < days {
			days = d
			ok = true
		}
	}
	return days, ok
}

func (c *Client) serviceIndex(id uuid.UUID) int {
	for i := range c.Services {
		if c.Services[i].ID == id {
			return i
		}
	}
	return -1
}

// refreshStatus stores the resolved status. prev is the status held before
// the current mutation started.
func (c *Client) refreshStatus(prev Status) {
	next := ResolveStatus(c.Status, c.Services)
	c.Status = next
	if next == StatusFinished {
		if prev != StatusFinished || c.CompletedAt == nil {
			now := time.Now()
			c.CompletedAt = &now
		}
	} else {
		c.CompletedAt = nil
	}
	if next != prev {
		c.AddDomainEvent(NewClientStatusChangedEvent(c, prev, next))
	}
}

func (c *Client) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateContact(ct Contact) error {
	if ct.Email != "" && !strings.Contains(ct.Email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if len(ct.Phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if len(ct.Company) > 200 || len(ct.Country) > 100 {
		return shared.NewDomainError("INVALID_CONTACT", "Company or country is too long")
	}
	return nil
}

func nilIfZero(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
