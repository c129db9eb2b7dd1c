package identity

import (
	"time"

	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginRequest contains the credentials for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1,max=72"`
}

// LoginResult contains the issued session and the signed-in user
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"`
	User      UserInfo  `json:"user"`
}

// UserInfo is the caller's own profile with the navigation it may see
type UserInfo struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Position    string             `json:"position,omitempty"`
	Role        string             `json:"role"`
	Permissions []string           `json:"permissions"`
	Navigation  []identity.NavItem `json:"navigation"`
}

// LogoutInput identifies the session being closed
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TTL      time.Duration
}

// CreateUserRequest creates an employee account
type CreateUserRequest struct {
	Email       string   `json:"email" binding:"required,email,max=200"`
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	Position    string   `json:"position" binding:"max=100"`
	Password    string   `json:"password" binding:"required,min=8,max=72"`
	Role        string   `json:"role" binding:"required,oneof=admin manager sales account_manager employee"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,permission"`
}

// UpdateUserRequest replaces the fields that are present
type UpdateUserRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Position    *string   `json:"position" binding:"omitempty,max=100"`
	Role        *string   `json:"role" binding:"omitempty,oneof=admin manager sales account_manager employee"`
	Permissions *[]string `json:"permissions" binding:"omitempty,dive,permission"`
	Active      *bool     `json:"active"`
	Password    *string   `json:"password" binding:"omitempty,min=8,max=72"`
}

// UserListFilter is the query of the employee listing
type UserListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=admin manager sales account_manager employee"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// UserResponse is an employee as returned by the API
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Position    string     `json:"position,omitempty"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToUserResponse converts a user aggregate
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Position:    u.Position,
		Role:        string(u.Role),
		Permissions: u.Permissions.Codes(),
		Active:      u.Active,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// ToUserInfo builds the caller profile, navigation filtered by the gate
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Position:    u.Position,
		Role:        string(u.Role),
		Permissions: u.Permissions.Codes(),
		Navigation:  identity.VisibleNav(u.Principal(), identity.DefaultNavigation),
	}
}

// PreferenceRequest updates display preferences
type PreferenceRequest struct {
	Language *string `json:"language" binding:"omitempty,oneof=ar en"`
	Currency *string `json:"currency" binding:"omitempty,len=3"`
}

// PreferenceResponse is the stored or default display preference
type PreferenceResponse struct {
	Language  string `json:"language"`
	Direction string `json:"direction"`
	Currency  string `json:"currency"`
}

// ToPreferenceResponse converts a preference
func ToPreferenceResponse(p identity.Preference) PreferenceResponse {
	return PreferenceResponse{
		Language:  string(p.Language),
		Direction: p.Language.Direction(),
		Currency:  string(p.Currency),
	}
}
