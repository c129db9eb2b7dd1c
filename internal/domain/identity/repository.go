package identity

import (
	"context"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserFilter narrows employee listings
type UserFilter struct {
	shared.Filter
	Role   Role
	Active *bool
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, u *User) error
}

// PreferenceRepository persists display preferences
type PreferenceRepository interface {
	// Find returns shared.ErrNotFound when nothing was stored
	Find(ctx context.Context, userID uuid.UUID) (*Preference, error)
	Save(ctx context.Context, p *Preference) error
}
