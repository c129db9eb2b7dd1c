package identity

import "github.com/agencyhub/backend/internal/domain/shared"

// Role is the coarse staff role. Admins bypass permission checks; every
// other role is only a default permission template.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleSales          Role = "sales"
	RoleAccountManager Role = "account_manager"
	RoleEmployee       Role = "employee"
)

// ParseRole validates a role code
func ParseRole(code string) (Role, error) {
	r := Role(code)
	if _, ok := defaultPermissions[r]; !ok {
		return "", shared.NewDomainError("INVALID_ROLE", "Unknown role: "+code)
	}
	return r, nil
}

var defaultPermissions = map[Role][]Permission{
	RoleAdmin: nil,
	RoleManager: {
		PermDashboardRead, PermClientsRead, PermClientsCreate, PermClientsUpdate,
		PermLeadsRead, PermLeadsManage, PermServicesManage, PermPackagesRead,
		PermInvoicesRead, PermInvoicesManage, PermEmployeesRead, PermFinanceRead,
	},
	RoleSales: {
		PermDashboardRead, PermLeadsRead, PermLeadsManage, PermClientsRead, PermClientsCreate, PermPackagesRead,
	},
	RoleAccountManager: {
		PermDashboardRead, PermClientsRead, PermClientsUpdate, PermServicesManage, PermPackagesRead,
	},
	RoleEmployee: {
		PermDashboardRead, PermClientsRead,
	},
}

// DefaultPermissions returns the starting permission set for a role
func (r Role) DefaultPermissions() PermissionSet {
	return NewPermissionSet(defaultPermissions[r]...)
}
