package models

import (
	"encoding/json"
	"time"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserModel is the persistence model for the User domain entity.
// Permissions are stored as a JSON array of codes.
type UserModel struct {
	AggregateModel
	Email        string        `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string        `gorm:"type:varchar(200);not null"`
	Position     string        `gorm:"type:varchar(100)"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(30);not null;index"`
	Permissions  string        `gorm:"type:jsonb;not null;default:'[]'"`
	Active       bool          `gorm:"not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Permission codes that are no longer known are dropped. An unreadable
// permissions column yields an empty set and a warning.
func (m *UserModel) ToDomain() *identity.User {
	var codes []string
	if err := json.Unmarshal([]byte(m.Permissions), &codes); err != nil {
		modelLogger().Warn("failed to parse permissions JSON",
			zap.String("user_id", m.ID.String()),
			zap.String("raw_json", m.Permissions),
			zap.Error(err))
	}
	perms := identity.NewPermissionSet()
	for _, code := range codes {
		p, err := identity.ParsePermission(code)
		if err != nil {
			modelLogger().Debug("dropping unknown permission",
				zap.String("user_id", m.ID.String()),
				zap.String("code", code))
			continue
		}
		perms[p] = struct{}{}
	}
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		Position:          m.Position,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Permissions:       perms,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	codes, _ := json.Marshal(u.Permissions.Codes())
	m := &UserModel{
		Email:        u.Email,
		Name:         u.Name,
		Position:     u.Position,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Permissions:  string(codes),
		Active:       u.Active,
		LastLoginAt:  u.LastLoginAt,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

// PreferenceModel stores one user's display preferences
type PreferenceModel struct {
	UserID    uuid.UUID            `gorm:"type:uuid;primary_key"`
	Language  identity.Language    `gorm:"type:varchar(5);not null"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null"`
	UpdatedAt time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PreferenceModel) TableName() string {
	return "user_preferences"
}

// ToDomain converts the persistence model to a domain Preference
func (m *PreferenceModel) ToDomain() *identity.Preference {
	return &identity.Preference{
		UserID:    m.UserID,
		Language:  m.Language,
		Currency:  m.Currency,
		UpdatedAt: m.UpdatedAt,
	}
}

// PreferenceModelFromDomain creates a persistence model from a domain Preference
func PreferenceModelFromDomain(p *identity.Preference) *PreferenceModel {
	return &PreferenceModel{
		UserID:    p.UserID,
		Language:  p.Language,
		Currency:  p.Currency,
		UpdatedAt: p.UpdatedAt,
	}
}
