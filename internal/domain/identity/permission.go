package identity

import (
	"sort"
	"strings"

	"github.com/agencyhub/backend/internal/domain/shared"
)

// Permission is a capability code in resource:action form
type Permission string

const (
	PermDashboardRead   Permission = "dashboard:read"
	PermClientsRead     Permission = "clients:read"
	PermClientsCreate   Permission = "clients:create"
	PermClientsUpdate   Permission = "clients:update"
	PermClientsDelete   Permission = "clients:delete"
	PermLeadsRead       Permission = "leads:read"
	PermLeadsManage     Permission = "leads:manage"
	PermServicesManage  Permission = "services:manage"
	PermPackagesRead    Permission = "packages:read"
	PermPackagesManage  Permission = "packages:manage"
	PermInvoicesRead    Permission = "invoices:read"
	PermInvoicesManage  Permission = "invoices:manage"
	PermEmployeesRead   Permission = "employees:read"
	PermEmployeesManage Permission = "employees:manage"
	PermFinanceRead     Permission = "finance:read"
	PermSettingsManage  Permission = "settings:manage"
)

// AllPermissions lists every known capability
var AllPermissions = []Permission{
	PermDashboardRead,
	PermClientsRead, PermClientsCreate, PermClientsUpdate, PermClientsDelete,
	PermLeadsRead, PermLeadsManage,
	PermServicesManage,
	PermPackagesRead, PermPackagesManage,
	PermInvoicesRead, PermInvoicesManage,
	PermEmployeesRead, PermEmployeesManage,
	PermFinanceRead,
	PermSettingsManage,
}

var knownPermissions = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(AllPermissions))
	for _, p := range AllPermissions {
		m[p] = struct{}{}
	}
	return m
}()

// ParsePermission validates a permission code
func ParsePermission(code string) (Permission, error) {
	p := Permission(strings.TrimSpace(code))
	if _, ok := knownPermissions[p]; !ok {
		return "", shared.NewDomainError("INVALID_PERMISSION", "Unknown permission: "+code)
	}
	return p, nil
}

// Resource returns the part before the colon
func (p Permission) Resource() string {
	r, _, _ := strings.Cut(string(p), ":")
	return r
}

// PermissionSet is a set of capabilities
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions
func NewPermissionSet(perms ...Permission) PermissionSet {
	s := make(PermissionSet, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// ParsePermissionSet validates every code and builds a set
func ParsePermissionSet(codes []string) (PermissionSet, error) {
	s := make(PermissionSet, len(codes))
	for _, code := range codes {
		p, err := ParsePermission(code)
		if err != nil {
			return nil, err
		}
		s[p] = struct{}{}
	}
	return s, nil
}

// Has reports membership
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Codes returns the sorted permission codes
func (s PermissionSet) Codes() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}
