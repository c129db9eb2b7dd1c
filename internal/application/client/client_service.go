// Package client holds the client and lead use cases
package client

import (
	"context"
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/agencyhub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client mutations and queries
type ClientService struct {
	repo   client.ClientRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewClientService creates a new ClientService
func NewClientService(repo client.ClientRepository, log *zap.Logger) *ClientService {
	return &ClientService{
		repo:   repo,
		logger: log.Named("client"),
		now:    time.Now,
	}
}

// AddClient creates a new client or lead
func (s *ClientService) AddClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "client", "add")
	defer span.End()

	c, err := client.NewClient(req.Name, client.Kind(req.Kind), req.Contact.toDomain())
	if err != nil {
		return nil, err
	}
	if req.SalesOwnerID != nil || req.AccountManagerID != nil {
		if err := c.Apply(client.Patch{SalesOwnerID: req.SalesOwnerID, AccountManagerID: req.AccountManagerID}); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.AttrClientID.String(c.ID.String()))

	resp := ToClientResponse(c, s.now())
	return &resp, nil
}

// GetClient returns a client with its services
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c, s.now())
	return &resp, nil
}

// ListClients returns a page of clients
func (s *ClientService) ListClients(ctx context.Context, f ClientListFilter) (*shared.Paginated[ClientResponse], error) {
	filter := client.ClientFilter{
		Filter:           shared.DefaultFilter(),
		Kind:             client.Kind(f.Kind),
		Status:           client.Status(f.Status),
		Stage:            client.Stage(f.Stage),
		AccountManagerID: f.AccountManagerID,
		SalesOwnerID:     f.SalesOwnerID,
	}
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}

	clients, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]ClientResponse, len(clients))
	for i := range clients {
		items[i] = ToClientResponse(&clients[i], now)
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateClient replaces the scalar fields present in req. Services are
// left untouched.
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "client", "update", telemetry.AttrClientID.String(id.String()))
	defer span.End()

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(req.toPatch()); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToClientResponse(c, s.now())
	return &resp, nil
}

// AddServiceToClient appends a service to the client
func (s *ClientService) AddServiceToClient(ctx context.Context, clientID uuid.UUID, req AddServiceRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "client", "add_service", telemetry.AttrClientID.String(clientID.String()))
	defer span.End()

	in, err := req.toInput()
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	svc, err := c.AddService(in)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(telemetry.AttrServiceID.String(svc.ID.String()))

	if err := s.save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToClientResponse(c, s.now())
	return &resp, nil
}

// UpdateService replaces the named service's fields. The client's status
// is re-resolved, so completing the last open service finishes the client.
func (s *ClientService) UpdateService(ctx context.Context, clientID, serviceID uuid.UUID, req UpdateServiceRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "client", "update_service",
		telemetry.AttrClientID.String(clientID.String()),
		telemetry.AttrServiceID.String(serviceID.String()),
	)
	defer span.End()

	patch, err := req.toPatch()
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if _, err := c.UpdateService(serviceID, patch); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := ToClientResponse(c, s.now())
	return &resp, nil
}

// ConvertLead turns a lead into a confirmed client
func (s *ClientService) ConvertLead(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.ConvertToConfirmed(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("lead converted", zap.String("client_id", id.String()))
	resp := ToClientResponse(c, s.now())
	return &resp, nil
}

// DeleteClient removes a client and its services
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Enrich(ctx, s.logger).Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

// save persists the aggregate and logs the events it raised
func (s *ClientService) save(ctx context.Context, c *client.Client) error {
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	log := logger.Enrich(ctx, s.logger)
	for _, ev := range c.GetDomainEvents() {
		fields := []zap.Field{
			zap.String("event", ev.EventType()),
			zap.String("client_id", c.ID.String()),
		}
		if changed, ok := ev.(*client.ClientStatusChangedEvent); ok {
			fields = append(fields,
				zap.String("old_status", string(changed.OldStatus)),
				zap.String("new_status", string(changed.NewStatus)),
			)
		}
		log.Info("client event", fields...)
	}
	c.ClearDomainEvents()
	return nil
}
