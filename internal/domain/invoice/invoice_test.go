package invoice

import (
	"testing"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft(t *testing.T, due time.Time) *Invoice {
	t.Helper()
	amount, err := valueobject.NewMoney(decimal.NewFromInt(500), valueobject.AED)
	require.NoError(t, err)
	inv, err := NewInvoice("INV-2026-001", uuid.New(), amount, due.AddDate(0, 0, -30), due)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice_Validation(t *testing.T) {
	amount, _ := valueobject.NewMoney(decimal.NewFromInt(10), valueobject.USD)
	now := time.Now()

	_, err := NewInvoice("", uuid.New(), amount, now, now)
	assert.Error(t, err)

	_, err = NewInvoice("INV-1", uuid.Nil, amount, now, now)
	assert.Error(t, err)

	negative, _ := valueobject.NewMoney(decimal.NewFromInt(-1), valueobject.USD)
	_, err = NewInvoice("INV-1", uuid.New(), negative, now, now)
	assert.Error(t, err)

	_, err = NewInvoice("INV-1", uuid.New(), amount, now, now.AddDate(0, 0, -1))
	assert.Error(t, err)
}

func TestInvoice_Lifecycle(t *testing.T) {
	inv := newDraft(t, time.Now().AddDate(0, 0, 10))
	assert.Equal(t, StatusDraft, inv.Status)

	require.NoError(t, inv.Send())
	assert.Equal(t, StatusSent, inv.Status)
	assert.Error(t, inv.Send())

	paidAt := time.Now()
	require.NoError(t, inv.MarkPaid(paidAt))
	assert.Equal(t, StatusPaid, inv.Status)
	require.NotNil(t, inv.PaidAt)
	assert.Error(t, inv.Cancel())
	assert.Error(t, inv.MarkPaid(paidAt))
}

func TestInvoice_IsOverdue(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

	t.Run("sent past due", func(t *testing.T) {
		inv := newDraft(t, now.AddDate(0, 0, -1))
		require.NoError(t, inv.Send())
		assert.True(t, inv.IsOverdue(now))
	})

	t.Run("draft past due counts", func(t *testing.T) {
		inv := newDraft(t, now.AddDate(0, 0, -3))
		assert.True(t, inv.IsOverdue(now))
	})

	t.Run("due today is not overdue", func(t *testing.T) {
		inv := newDraft(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
		assert.False(t, inv.IsOverdue(now))
	})

	t.Run("paid is never overdue", func(t *testing.T) {
		inv := newDraft(t, now.AddDate(0, 0, -10))
		require.NoError(t, inv.MarkPaid(now))
		assert.False(t, inv.IsOverdue(now))
	})

	t.Run("cancelled is never overdue", func(t *testing.T) {
		inv := newDraft(t, now.AddDate(0, 0, -10))
		require.NoError(t, inv.Cancel())
		assert.False(t, inv.IsOverdue(now))
	})
}
