package identity

import (
	"context"
	"errors"
	"time"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PreferenceService reads and stores display preferences
type PreferenceService struct {
	repo identity.PreferenceRepository
	now  func() time.Time
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(repo identity.PreferenceRepository) *PreferenceService {
	return &PreferenceService{repo: repo, now: time.Now}
}

// Get returns the stored preference, or the defaults when none was saved
func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*PreferenceResponse, error) {
	pref, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToPreferenceResponse(pref)
	return &resp, nil
}

// Update stores the fields that are present
func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, req PreferenceRequest) (*PreferenceResponse, error) {
	pref, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Language != nil {
		lang, err := identity.ParseLanguage(*req.Language)
		if err != nil {
			return nil, err
		}
		pref.Language = lang
	}
	if req.Currency != nil {
		currency, err := valueobject.ParseCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		pref.Currency = currency
	}
	pref.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, &pref); err != nil {
		return nil, err
	}
	resp := ToPreferenceResponse(pref)
	return &resp, nil
}

func (s *PreferenceService) load(ctx context.Context, userID uuid.UUID) (identity.Preference, error) {
	pref, err := s.repo.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return identity.DefaultPreference(userID), nil
		}
		return identity.Preference{}, err
	}
	return *pref, nil
}
