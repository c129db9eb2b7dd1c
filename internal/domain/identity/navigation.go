package identity

// NavItem is an entry of the dashboard navigation
type NavItem struct {
	Key      string       `json:"key"`
	Path     string       `json:"path"`
	Required []Permission `json:"-"`
}

// DefaultNavigation is the dashboard sidebar in display order
var DefaultNavigation = []NavItem{
	{Key: "dashboard", Path: "/"},
	{Key: "clients", Path: "/clients", Required: []Permission{PermClientsRead}},
	{Key: "leads", Path: "/leads", Required: []Permission{PermLeadsRead, PermLeadsManage}},
	{Key: "packages", Path: "/packages", Required: []Permission{PermPackagesRead, PermPackagesManage}},
	{Key: "invoices", Path: "/invoices", Required: []Permission{PermInvoicesRead, PermInvoicesManage}},
	{Key: "finance", Path: "/finance", Required: []Permission{PermFinanceRead}},
	{Key: "employees", Path: "/employees", Required: []Permission{PermEmployeesRead, PermEmployeesManage}},
	{Key: "settings", Path: "/settings", Required: []Permission{PermSettingsManage}},
}

// CanSee applies the visibility rule: admins see everything, items without
// requirements are public, the rest need any one of their permissions.
func CanSee(p *Principal, item NavItem) bool {
	if p.IsAdmin() {
		return true
	}
	if len(item.Required) == 0 {
		return true
	}
	return HasAnyPermission(p, item.Required...)
}

// VisibleNav filters items down to what p may see
func VisibleNav(p *Principal, items []NavItem) []NavItem {
	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		if CanSee(p, item) {
			out = append(out, item)
		}
	}
	return out
}
