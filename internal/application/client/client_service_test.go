package client

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/agencyhub/backend/internal/domain/client"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockClientRepository is a mock implementation of client.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter client.ClientFilter) ([]client.Client, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context, filter client.ClientFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(repo client.ClientRepository) *ClientService {
	svc := NewClientService(repo, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func newConfirmedClient(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient("Nile Bakery", client.KindConfirmed, client.Contact{Email: "owner@nile.test"})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func addService(t *testing.T, c *client.Client, status client.ServiceStatus, end time.Time) uuid.UUID {
	t.Helper()
	s, err := c.AddService(client.ServiceInput{
		Category:  "social",
		Price:     decimal.NewFromInt(500),
		Currency:  valueobject.USD,
		StartDate: end.AddDate(0, -1, 0),
		EndDate:   end,
		Status:    status,
	})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return s.ID
}

func strPtr(s string) *string { return &s }

func TestClientService_AddClient(t *testing.T) {
	t.Run("creates a lead by default", func(t *testing.T) {
		repo := new(MockClientRepository)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(c *client.Client) bool {
			return c.Name == "Cairo Gym" && c.Kind == client.KindLead && c.Stage == client.StageNew
		})).Return(nil)

		resp, err := newTestService(repo).AddClient(context.Background(), CreateClientRequest{Name: "Cairo Gym"})
		require.NoError(t, err)
		assert.Equal(t, "lead", resp.Kind)
		assert.Equal(t, "active", resp.Status)
		assert.Empty(t, resp.Services)
		repo.AssertExpectations(t)
	})

	t.Run("assigns owners", func(t *testing.T) {
		manager := uuid.New()
		repo := new(MockClientRepository)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		resp, err := newTestService(repo).AddClient(context.Background(), CreateClientRequest{
			Name:             "Cairo Gym",
			Kind:             "confirmed",
			AccountManagerID: &manager,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.AccountManagerID)
		assert.Equal(t, manager, *resp.AccountManagerID)
	})

	t.Run("rejects an empty name without saving", func(t *testing.T) {
		repo := new(MockClientRepository)

		_, err := newTestService(repo).AddClient(context.Background(), CreateClientRequest{Name: "  "})
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("propagates save errors", func(t *testing.T) {
		repo := new(MockClientRepository)
		repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))

		_, err := newTestService(repo).AddClient(context.Background(), CreateClientRequest{Name: "Cairo Gym"})
		assert.EqualError(t, err, "db down")
	})
}

func TestClientService_UpdateClient(t *testing.T) {
	c := newConfirmedClient(t)
	addService(t, c, client.ServiceInProgress, testNow.AddDate(0, 0, 20))

	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(nil)

	resp, err := newTestService(repo).UpdateClient(context.Background(), c.ID, UpdateClientRequest{
		Name:   strPtr("Nile Bakery Co"),
		Status: strPtr("paused"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Nile Bakery Co", resp.Name)
	assert.Equal(t, "paused", resp.Status)
	assert.Len(t, resp.Services, 1, "services are untouched")
}

func TestClientService_UpdateClient_NotFound(t *testing.T) {
	id := uuid.New()
	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := newTestService(repo).UpdateClient(context.Background(), id, UpdateClientRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientService_AddServiceToClient(t *testing.T) {
	t.Run("appends a service with deliverables", func(t *testing.T) {
		c := newConfirmedClient(t)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		repo.On("Save", mock.Anything, c).Return(nil)

		resp, err := newTestService(repo).AddServiceToClient(context.Background(), c.ID, AddServiceRequest{
			Category:     "social",
			Price:        decimal.NewFromInt(1200),
			Currency:     "sar",
			StartDate:    "2026-03-01",
			EndDate:      "2026-03-15",
			Deliverables: json.RawMessage(`{"type":"social","posts_done":3,"posts_total":12}`),
		})
		require.NoError(t, err)
		require.Len(t, resp.Services, 1)
		svc := resp.Services[0]
		assert.Equal(t, "SAR", svc.Currency)
		assert.Equal(t, "in_progress", svc.Status)
		assert.Equal(t, 5, svc.DaysLeft)
		assert.Equal(t, 25, svc.Progress)
		assert.JSONEq(t, `{"type":"social","posts_done":3,"posts_total":12,"reels_done":0,"reels_total":0,"stories_done":0,"stories_total":0}`, string(svc.Deliverables))
	})

	tests := []struct {
		name     string
		req      AddServiceRequest
		wantCode string
	}{
		{
			name:     "negative price",
			req:      AddServiceRequest{Category: "logo", Price: decimal.NewFromInt(-1), Currency: "USD", StartDate: "2026-03-01", EndDate: "2026-03-02"},
			wantCode: "MALFORMED_SERVICE",
		},
		{
			name:     "done above total",
			req:      AddServiceRequest{Category: "logo", Price: decimal.NewFromInt(1), Currency: "USD", StartDate: "2026-03-01", EndDate: "2026-03-02", Deliverables: json.RawMessage(`{"type":"logo","concepts_done":4,"concepts_total":3}`)},
			wantCode: "MALFORMED_SERVICE",
		},
		{
			name:     "end before start",
			req:      AddServiceRequest{Category: "logo", Price: decimal.NewFromInt(1), Currency: "USD", StartDate: "2026-03-05", EndDate: "2026-03-02"},
			wantCode: "MALFORMED_SERVICE",
		},
		{
			name:     "unknown currency",
			req:      AddServiceRequest{Category: "logo", Price: decimal.NewFromInt(1), Currency: "GBP", StartDate: "2026-03-01", EndDate: "2026-03-02"},
			wantCode: "INVALID_CURRENCY_CODE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newConfirmedClient(t)
			repo := new(MockClientRepository)
			repo.On("FindByID", mock.Anything, c.ID).Return(c, nil).Maybe()

			_, err := newTestService(repo).AddServiceToClient(context.Background(), c.ID, tt.req)
			de, ok := shared.AsDomainError(err)
			require.True(t, ok, "expected a domain error, got %v", err)
			assert.Equal(t, tt.wantCode, de.Code)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestClientService_UpdateService_FinishesClient(t *testing.T) {
	c := newConfirmedClient(t)
	addService(t, c, client.ServiceCompleted, testNow.AddDate(0, 0, -3))
	second := addService(t, c, client.ServiceInProgress, testNow.AddDate(0, 0, 4))
	require.Equal(t, client.StatusActive, c.Status)

	core, recorded := observer.New(zapcore.InfoLevel)
	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(saved *client.Client) bool {
		return saved.Status == client.StatusFinished && saved.CompletedAt != nil
	})).Return(nil)

	svc := NewClientService(repo, zap.New(core))
	svc.now = func() time.Time { return testNow }

	resp, err := svc.UpdateService(context.Background(), c.ID, second, UpdateServiceRequest{Status: strPtr("completed")})
	require.NoError(t, err)
	assert.Equal(t, "finished", resp.Status)
	repo.AssertExpectations(t)

	events := recorded.FilterMessage("client event").All()
	require.Len(t, events, 1)
	assert.Equal(t, "ClientStatusChanged", events[0].ContextMap()["event"])
	assert.Equal(t, "finished", events[0].ContextMap()["new_status"])
	assert.Empty(t, c.GetDomainEvents(), "events are cleared after save")
}

func TestClientService_UpdateService_ArchivedStays(t *testing.T) {
	c := newConfirmedClient(t)
	id := addService(t, c, client.ServiceInProgress, testNow.AddDate(0, 0, 4))
	archived := client.StatusArchived
	require.NoError(t, c.Apply(client.Patch{Status: &archived}))

	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(nil)

	resp, err := newTestService(repo).UpdateService(context.Background(), c.ID, id, UpdateServiceRequest{Status: strPtr("completed")})
	require.NoError(t, err)
	assert.Equal(t, "archived", resp.Status)
}

func TestClientService_UpdateService_Deliverables(t *testing.T) {
	c := newConfirmedClient(t)
	id := addService(t, c, client.ServiceInProgress, testNow.AddDate(0, 0, 4))

	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Save", mock.Anything, c).Return(nil)
	svc := newTestService(repo)

	resp, err := svc.UpdateService(context.Background(), c.ID, id, UpdateServiceRequest{
		Deliverables: json.RawMessage(`{"type":"website","design":true,"development":true}`),
	})
	require.NoError(t, err)
	assert.Equal(t, 50, resp.Services[0].Progress)

	resp, err = svc.UpdateService(context.Background(), c.ID, id, UpdateServiceRequest{Deliverables: json.RawMessage(`null`)})
	require.NoError(t, err)
	assert.Nil(t, resp.Services[0].Deliverables)
}

func TestClientService_UpdateService_UnknownService(t *testing.T) {
	c := newConfirmedClient(t)
	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	_, err := newTestService(repo).UpdateService(context.Background(), c.ID, uuid.New(), UpdateServiceRequest{Status: strPtr("delayed")})
	de, ok := shared.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, "SERVICE_NOT_FOUND", de.Code)
}

func TestClientService_ConvertLead(t *testing.T) {
	lead, err := client.NewClient("Alex Studio", client.KindLead, client.Contact{})
	require.NoError(t, err)

	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, lead.ID).Return(lead, nil)
	repo.On("Save", mock.Anything, lead).Return(nil)

	resp, err := newTestService(repo).ConvertLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Kind)
	assert.Equal(t, "won", resp.Stage)

	_, err = newTestService(repo).ConvertLead(context.Background(), lead.ID)
	assert.Error(t, err, "already confirmed")
}

func TestClientService_GetClient_Deadline(t *testing.T) {
	t.Run("earliest in-progress deadline", func(t *testing.T) {
		c := newConfirmedClient(t)
		addService(t, c, client.ServiceInProgress, testNow.AddDate(0, 0, 20))
		addService(t, c, client.ServiceInProgress, testNow.AddDate(0, 0, 5))
		addService(t, c, client.ServiceCompleted, testNow.AddDate(0, 0, 1))

		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		resp, err := newTestService(repo).GetClient(context.Background(), c.ID)
		require.NoError(t, err)
		require.NotNil(t, resp.Deadline)
		assert.Equal(t, 5, resp.Deadline.DaysLeft)
		assert.True(t, resp.Deadline.IsExpiring)
		assert.False(t, resp.Deadline.IsOverdue)
	})

	t.Run("overdue deadline", func(t *testing.T) {
		c := newConfirmedClient(t)
		addService(t, c, client.ServiceInProgress, testNow.AddDate(0, 0, -3))

		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		resp, err := newTestService(repo).GetClient(context.Background(), c.ID)
		require.NoError(t, err)
		require.NotNil(t, resp.Deadline)
		assert.Equal(t, -3, resp.Deadline.DaysLeft)
		assert.True(t, resp.Deadline.IsExpiring)
		assert.True(t, resp.Deadline.IsOverdue)
	})

	t.Run("no in-progress service", func(t *testing.T) {
		c := newConfirmedClient(t)
		repo := new(MockClientRepository)
		repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		resp, err := newTestService(repo).GetClient(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Nil(t, resp.Deadline)
	})
}

func TestClientService_ListClients(t *testing.T) {
	c := newConfirmedClient(t)
	repo := new(MockClientRepository)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f client.ClientFilter) bool {
		return f.Kind == client.KindConfirmed && f.Page == 2 && f.PageSize == 10 && f.Search == "nile"
	})).Return([]client.Client{*c}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(11), nil)

	page, err := newTestService(repo).ListClients(context.Background(), ClientListFilter{
		Kind: "confirmed", Page: 2, PageSize: 10, Search: "nile",
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, int64(11), page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestClientService_DeleteClient(t *testing.T) {
	c := newConfirmedClient(t)
	repo := new(MockClientRepository)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Delete", mock.Anything, c.ID).Return(nil)

	require.NoError(t, newTestService(repo).DeleteClient(context.Background(), c.ID))
	repo.AssertExpectations(t)

	missing := uuid.New()
	repo.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)
	assert.ErrorIs(t, newTestService(repo).DeleteClient(context.Background(), missing), shared.ErrNotFound)
}
