package persistence

import "strings"

// ValidateSortOrder normalizes the sort direction to ASC or DESC.
// Anything other than ASC falls back to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks the sort field against a whitelist.
// Returns defaultField when the input is empty or not whitelisted.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// ServiceRequestSortFields contains allowed sort fields for service requests
var ServiceRequestSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"status":         true,
	"source_type":    true,
	"service_charge": true,
	"approved_at":    true,
	"completed_at":   true,
	"rejected_at":    true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"name":          true,
	"role":          true,
	"status":        true,
	"last_login_at": true,
}
