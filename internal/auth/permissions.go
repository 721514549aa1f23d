package auth

import "slices"

// Permission represents a named capability.
type Permission string

const (
	PermSettingsRead   Permission = "settings:read"
	PermSettingsWrite  Permission = "settings:write"
	PermSettingsReload Permission = "settings:reload"
	PermServicesRead   Permission = "services:read"
	PermToolsUse       Permission = "tools:use"
	PermUserManage     Permission = "user:manage"
)

// rolePermissions is the single source of truth for the authorisation
// model.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermSettingsRead,
		PermServicesRead,
	},
	RoleOperator: {
		PermSettingsRead,
		PermSettingsWrite,
		PermServicesRead,
		PermToolsUse,
	},
	RoleAdmin: {
		PermSettingsRead,
		PermSettingsWrite,
		PermSettingsReload,
		PermServicesRead,
		PermToolsUse,
		PermUserManage,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	return slices.Contains(rolePermissions[role], perm)
}

// PermissionsForRole returns a copy of the permissions granted to role,
// or nil for unknown roles.
func PermissionsForRole(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}
