package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User is a staff member (employee) who can sign in to the dashboard
type User struct {
	shared.BaseAggregateRoot
	Email        string
	Name         string
	Position     string
	PasswordHash string
	Role         Role
	Permissions  PermissionSet
	Active       bool
	LastLoginAt  *time.Time
}

// NewUser creates an active user with the role's default permissions
func NewUser(email, name, password string, role Role) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Name:              strings.TrimSpace(name),
		PasswordHash:      hash,
		Role:              role,
		Permissions:       role.DefaultPermissions(),
		Active:            true,
	}, nil
}

// Principal returns the permission-gate view of the user
func (u *User) Principal() *Principal {
	return &Principal{UserID: u.ID, Role: u.Role, Permissions: u.Permissions}
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.touch()
	return nil
}

// SetRole changes the role. Permissions are left as they are.
func (u *User) SetRole(role Role) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	u.Role = role
	u.touch()
	return nil
}

// SetPermissions replaces the explicit permission set
func (u *User) SetPermissions(perms PermissionSet) {
	u.Permissions = perms
	u.touch()
}

// SetProfile updates display fields
func (u *User) SetProfile(name, position string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	u.Name = strings.TrimSpace(name)
	u.Position = strings.TrimSpace(position)
	u.touch()
	return nil
}

// Deactivate blocks sign-in
func (u *User) Deactivate() {
	u.Active = false
	u.touch()
}

// Activate re-enables sign-in
func (u *User) Activate() {
	u.Active = true
	u.touch()
}

// RecordLogin stamps the last successful sign-in
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.WrapDomainError("PASSWORD_HASH_ERROR", "Failed to hash password", err)
	}
	return string(hash), nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
