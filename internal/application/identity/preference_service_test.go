package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Find(ctx context.Context, userID uuid.UUID) (*identity.Preference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Preference), args.Error(1)
}

func (m *MockPreferenceRepository) Save(ctx context.Context, p *identity.Preference) error {
	return m.Called(ctx, p).Error(0)
}

func TestPreferenceService_Get(t *testing.T) {
	userID := uuid.New()

	t.Run("defaults to arabic and USD", func(t *testing.T) {
		repo := new(MockPreferenceRepository)
		repo.On("Find", mock.Anything, userID).Return(nil, shared.ErrNotFound)

		resp, err := NewPreferenceService(repo).Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, PreferenceResponse{Language: "ar", Direction: "rtl", Currency: "USD"}, *resp)
	})

	t.Run("stored preference", func(t *testing.T) {
		repo := new(MockPreferenceRepository)
		repo.On("Find", mock.Anything, userID).Return(&identity.Preference{
			UserID: userID, Language: identity.LanguageEnglish, Currency: valueobject.TRY,
		}, nil)

		resp, err := NewPreferenceService(repo).Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, PreferenceResponse{Language: "en", Direction: "ltr", Currency: "TRY"}, *resp)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockPreferenceRepository)
		repo.On("Find", mock.Anything, userID).Return(nil, errors.New("db down"))

		_, err := NewPreferenceService(repo).Get(context.Background(), userID)
		assert.EqualError(t, err, "db down")
	})
}

func TestPreferenceService_Update(t *testing.T) {
	userID := uuid.New()

	t.Run("partial update keeps the other field", func(t *testing.T) {
		repo := new(MockPreferenceRepository)
		repo.On("Find", mock.Anything, userID).Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(p *identity.Preference) bool {
			return p.UserID == userID && p.Currency == valueobject.AED && p.Language == identity.LanguageArabic && !p.UpdatedAt.IsZero()
		})).Return(nil)

		currency := "aed"
		resp, err := NewPreferenceService(repo).Update(context.Background(), userID, PreferenceRequest{Currency: &currency})
		require.NoError(t, err)
		assert.Equal(t, "AED", resp.Currency)
		assert.Equal(t, "rtl", resp.Direction)
		repo.AssertExpectations(t)
	})

	t.Run("unknown currency", func(t *testing.T) {
		repo := new(MockPreferenceRepository)
		repo.On("Find", mock.Anything, userID).Return(nil, shared.ErrNotFound)

		currency := "GBP"
		_, err := NewPreferenceService(repo).Update(context.Background(), userID, PreferenceRequest{Currency: &currency})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_CURRENCY_CODE", de.Code)
	})

	t.Run("unknown language", func(t *testing.T) {
		repo := new(MockPreferenceRepository)
		repo.On("Find", mock.Anything, userID).Return(nil, shared.ErrNotFound)

		lang := "fr"
		_, err := NewPreferenceService(repo).Update(context.Background(), userID, PreferenceRequest{Language: &lang})
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_LANGUAGE", de.Code)
	})
}
