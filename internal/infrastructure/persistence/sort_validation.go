package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ClientSortFields contains allowed sort fields for clients and leads
var ClientSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"status":       true,
	"stage":        true,
	"completed_at": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"created_at": true,
	"number":     true,
	"status":     true,
	"issue_date": true,
	"due_date":   true,
	"amount":     true,
}

// UserSortFields contains allowed sort fields for employees
var UserSortFields = map[string]bool{
	"created_at":    true,
	"name":          true,
	"email":         true,
	"role":          true,
	"last_login_at": true,
}

// PackageSortFields contains allowed sort fields for packages
var PackageSortFields = map[string]bool{
	"created_at": true,
	"category":   true,
	"name":       true,
	"price":      true,
}
