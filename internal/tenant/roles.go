package tenant

// RoleAccess maps a membership role to the dashboard sections it may
// access. Loaded once at process start and immutable afterwards;
// injected into handlers rather than read as a global.
type RoleAccess map[string][]string

// DefaultRoleAccess returns the static role→permission table.
func DefaultRoleAccess() RoleAccess {
	return RoleAccess{
		"leader":          {"reports", "inbox", "tasks", "hr", "docs", "integrations", "settings"},
		"hr":              {"reports", "inbox", "tasks", "hr", "docs", "settings"},
		"accounting":      {"reports", "docs", "integrations", "settings"},
		"department_head": {"reports", "inbox", "tasks", "docs", "settings"},
		"employee":        {"inbox", "tasks", "settings"},
	}
}

// PermissionsFor returns the permission list for a role, or an empty
// list for unknown roles.
func (ra RoleAccess) PermissionsFor(role string) []string {
	if perms, ok := ra[role]; ok {
		return perms
	}
	return []string{}
}
