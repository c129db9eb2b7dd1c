package client

import (
	"errors"
	"testing"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient("Cedar Cafe", KindConfirmed, Contact{Email: "owner@cedar.example"})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func serviceInput(status ServiceStatus) ServiceInput {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return ServiceInput{
		Category:   "social_media",
		SubPackage: "growth",
		Price:      decimal.NewFromInt(1200),
		Currency:   valueobject.SAR,
		StartDate:  start,
		EndDate:    start.AddDate(0, 3, 0),
		Status:     status,
	}
}

func TestNewClient(t *testing.T) {
	t.Run("lead starts in new stage", func(t *testing.T) {
		c, err := NewClient("  Olive Studio ", "", Contact{})
		require.NoError(t, err)
		assert.Equal(t, "Olive Studio", c.Name)
		assert.Equal(t, KindLead, c.Kind)
		assert.Equal(t, StageNew, c.Stage)
		assert.Equal(t, StatusActive, c.Status)
		require.Len(t, c.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeClientCreated, c.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewClient("  ", KindLead, Contact{})
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewClient("Olive", KindLead, Contact{Email: "nope"})
		assert.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewClient("Olive", Kind("partner"), Contact{})
		assert.Error(t, err)
	})
}

func TestClient_AddService(t *testing.T) {
	c := newTestClient(t)

	s, err := c.AddService(serviceInput(ServiceInProgress))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Len(t, c.Services, 1)
	assert.Equal(t, StatusActive, c.Status)

	t.Run("negative price is malformed", func(t *testing.T) {
		in := serviceInput(ServiceInProgress)
		in.Price = decimal.NewFromInt(-1)
		_, err := c.AddService(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrMalformedService))
		assert.Len(t, c.Services, 1)
	})

	t.Run("done above total is malformed", func(t *testing.T) {
		in := serviceInput(ServiceInProgress)
		in.Deliverables = SocialDeliverables{PostsDone: 13, PostsTotal: 12}
		_, err := c.AddService(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrMalformedService))
	})

	t.Run("unknown currency", func(t *testing.T) {
		in := serviceInput(ServiceInProgress)
		in.Currency = "GBP"
		_, err := c.AddService(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidCurrencyCode))
	})

	t.Run("end before start", func(t *testing.T) {
		in := serviceInput(ServiceInProgress)
		in.EndDate = in.StartDate.AddDate(0, 0, -1)
		_, err := c.AddService(in)
		assert.True(t, errors.Is(err, shared.ErrMalformedService))
	})
}

func TestClient_UpdateServicePromotesToFinished(t *testing.T) {
	c := newTestClient(t)
	second, err := c.AddService(serviceInput(ServiceInProgress))
	require.NoError(t, err)
	secondID := second.ID
	first, err := c.AddService(serviceInput(ServiceCompleted))
	require.NoError(t, err)
	firstID := first.ID
	assert.Equal(t, StatusActive, c.Status)
	assert.Nil(t, c.CompletedAt)

	completed := ServiceCompleted
	_, err = c.UpdateService(secondID, ServicePatch{Status: &completed})
	require.NoError(t, err)

	assert.Equal(t, StatusFinished, c.Status)
	require.NotNil(t, c.CompletedAt)
	events := c.GetDomainEvents()
	require.Len(t, events, 1)
	changed, ok := events[0].(*ClientStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, StatusActive, changed.OldStatus)
	assert.Equal(t, StatusFinished, changed.NewStatus)

	t.Run("first service untouched", func(t *testing.T) {
		s, ok := c.Service(firstID)
		require.True(t, ok)
		assert.Equal(t, ServiceCompleted, s.Status)
	})
}

func TestClient_UpdateServiceKeepsArchived(t *testing.T) {
	c := newTestClient(t)
	s, err := c.AddService(serviceInput(ServiceInProgress))
	require.NoError(t, err)
	id := s.ID

	archived := StatusArchived
	require.NoError(t, c.Apply(Patch{Status: &archived}))

	completed := ServiceCompleted
	_, err = c.UpdateService(id, ServicePatch{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, c.Status)
	assert.Nil(t, c.CompletedAt)
}

func TestClient_UpdateServiceRejectsInvalidPatch(t *testing.T) {
	c := newTestClient(t)
	s, err := c.AddService(serviceInput(ServiceInProgress))
	require.NoError(t, err)
	id := s.ID

	negative := decimal.NewFromInt(-5)
	_, err = c.UpdateService(id, ServicePatch{Price: &negative})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrMalformedService))
	assert.True(t, c.Services[0].Price.Equal(decimal.NewFromInt(1200)), "failed patch must not be stored")

	_, err = c.UpdateService(uuid.New(), ServicePatch{})
	assert.Error(t, err)
}

func TestClient_UpdateServiceReplacesDeliverables(t *testing.T) {
	c := newTestClient(t)
	in := serviceInput(ServiceInProgress)
	in.Deliverables = LogoDeliverables{ConceptsTotal: 3, RevisionsTotal: 2}
	s, err := c.AddService(in)
	require.NoError(t, err)
	id := s.ID

	updated, err := c.UpdateService(id, ServicePatch{Deliverables: LogoDeliverables{ConceptsDone: 3, ConceptsTotal: 3, RevisionsTotal: 2}})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.Progress())

	updated, err = c.UpdateService(id, ServicePatch{ClearDeliverables: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Deliverables)
}

func TestClient_ApplyPatch(t *testing.T) {
	c := newTestClient(t)
	name := "Cedar Cafe & Bakery"
	manager := uuid.New()
	paused := StatusPaused

	require.NoError(t, c.Apply(Patch{Name: &name, AccountManagerID: &manager, Status: &paused}))
	assert.Equal(t, name, c.Name)
	require.NotNil(t, c.AccountManagerID)
	assert.Equal(t, manager, *c.AccountManagerID)
	assert.Equal(t, StatusPaused, c.Status)

	t.Run("zero id clears a reference", func(t *testing.T) {
		zero := uuid.Nil
		require.NoError(t, c.Apply(Patch{AccountManagerID: &zero}))
		assert.Nil(t, c.AccountManagerID)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		bad := Status("deleted")
		assert.Error(t, c.Apply(Patch{Status: &bad}))
	})
}

func TestClient_LeavingFinishedClearsCompletedAt(t *testing.T) {
	c := newTestClient(t)
	_, err := c.AddService(serviceInput(ServiceCompleted))
	require.NoError(t, err)
	require.Equal(t, StatusFinished, c.Status)
	require.NotNil(t, c.CompletedAt)

	_, err = c.AddService(serviceInput(ServiceInProgress))
	require.NoError(t, err)
	active := StatusActive
	require.NoError(t, c.Apply(Patch{Status: &active}))
	assert.Equal(t, StatusActive, c.Status)
	assert.Nil(t, c.CompletedAt)
}

func TestClient_ConvertToConfirmed(t *testing.T) {
	lead, err := NewClient("Palm Realty", KindLead, Contact{})
	require.NoError(t, err)

	require.NoError(t, lead.ConvertToConfirmed())
	assert.Equal(t, KindConfirmed, lead.Kind)
	assert.Equal(t, StageWon, lead.Stage)

	assert.Error(t, lead.ConvertToConfirmed())
}

func TestClient_MinDaysLeft(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	c := newTestClient(t)

	_, ok := c.MinDaysLeft(now)
	assert.False(t, ok)

	for _, days := range []int{20, 5} {
		in := serviceInput(ServiceInProgress)
		in.StartDate = now.AddDate(0, 0, -30)
		in.EndDate = now.AddDate(0, 0, days)
		_, err := c.AddService(in)
		require.NoError(t, err)
	}
	done := serviceInput(ServiceCompleted)
	done.StartDate = now.AddDate(0, 0, -30)
	done.EndDate = now.AddDate(0, 0, 1)
	_, err := c.AddService(done)
	require.NoError(t, err)

	days, ok := c.MinDaysLeft(now)
	assert.True(t, ok)
	assert.Equal(t, 5, days)
}
