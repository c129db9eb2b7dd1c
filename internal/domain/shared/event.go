package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

// NewBaseDomainEvent creates a base event stamped with the current time
func NewBaseDomainEvent(eventType, aggregateType string, aggregateID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggregateID,
		AggType:   aggregateType,
	}
}

// EventID returns the unique event identifier
func (e BaseDomainEvent) EventID() uuid.UUID { return e.ID }

// EventType returns the event type name
func (e BaseDomainEvent) EventType() string { return e.Type }

// OccurredAt returns when the event happened
func (e BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID returns the id of the aggregate that raised the event
func (e BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }

// AggregateType returns the aggregate type name
func (e BaseDomainEvent) AggregateType() string { return e.AggType }
