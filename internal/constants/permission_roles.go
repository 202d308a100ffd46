package constants

import "strings"

// PermissionRoles maps each quotation permission to the roles allowed to perform it when
// APPROVER_ROLES is not configured.
var PermissionRoles = map[string][]string{
	ApproveQuotation: {Admin, Director, Manager},
	RejectQuotation:  {Admin, Director, Manager},
}

// AllowedRole reports whether role may perform permission. Role names compare case-insensitively.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	return HasRole(roles, role)
}

// HasRole reports whether role is in roles, ignoring case and surrounding space.
func HasRole(roles []string, role string) bool {
	role = strings.TrimSpace(role)
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
