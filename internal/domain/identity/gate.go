package identity

import "github.com/google/uuid"

// Principal is the authenticated caller as seen by the permission gate.
// A nil *Principal means no one is signed in.
type Principal struct {
	UserID      uuid.UUID
	Role        Role
	Permissions PermissionSet
}

// IsAdmin reports whether the principal bypasses permission checks
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// HasPermission is false for nil principals, true for admins, and a
// membership test otherwise.
func HasPermission(p *Principal, perm Permission) bool {
	if p == nil {
		return false
	}
	if p.Role == RoleAdmin {
		return true
	}
	return p.Permissions.Has(perm)
}

// HasAnyPermission is false for nil principals, true for admins, and true
// otherwise when at least one of perms is held.
func HasAnyPermission(p *Principal, perms ...Permission) bool {
	if p == nil {
		return false
	}
	if p.Role == RoleAdmin {
		return true
	}
	for _, perm := range perms {
		if p.Permissions.Has(perm) {
			return true
		}
	}
	return false
}
