package client

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientFilter narrows client listings
type ClientFilter struct {
	shared.Filter
	Kind             Kind
	Status           Status
	Stage            Stage
	AccountManagerID *uuid.UUID
	SalesOwnerID     *uuid.UUID
}

// ClientRepository defines the interface for client persistence. Services
// are loaded and saved together with their client.
type ClientRepository interface {
	// FindByID finds a client with its services
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindAll finds clients matching the filter, services included.
	// A PageSize of zero returns every match.
	FindAll(ctx context.Context, filter ClientFilter) ([]Client, error)

	// Count counts clients matching the filter
	Count(ctx context.Context, filter ClientFilter) (int64, error)

	// Save creates or updates a client and replaces its service rows
	Save(ctx context.Context, c *Client) error

	// Delete removes a client and its services
	Delete(ctx context.Context, id uuid.UUID) error
}
