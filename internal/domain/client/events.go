package client

import (
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeClient names the client aggregate in events
const AggregateTypeClient = "Client"

const (
	EventTypeClientCreated       = "ClientCreated"
	EventTypeClientStatusChanged = "ClientStatusChanged"
)

// ClientCreatedEvent is raised when a client or lead is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Kind     Kind      `json:"kind"`
}

// NewClientCreatedEvent creates a ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, AggregateTypeClient, c.ID),
		ClientID:        c.ID,
		Name:            c.Name,
		Kind:            c.Kind,
	}
}

// ClientStatusChangedEvent is raised when the resolved status changes
type ClientStatusChangedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID `json:"client_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewClientStatusChangedEvent creates a ClientStatusChangedEvent
func NewClientStatusChangedEvent(c *Client, oldStatus, newStatus Status) *ClientStatusChangedEvent {
	return &ClientStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientStatusChanged, AggregateTypeClient, c.ID),
		ClientID:        c.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
