package domain

import "sort"

// Role is the closed set of roles the remote API assigns to accounts.
type Role string

const (
	RoleObserver Role = "observer"
	RoleEngineer Role = "engineer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
	// RoleUnknown stands in for any role code the client does not recognise.
	RoleUnknown Role = "unknown"
)

// Permission is a capability token checked before allowing a UI action.
type Permission string

const (
	PermDefectsRead      Permission = "defects:read"
	PermDefectsCreate    Permission = "defects:create"
	PermDefectsUpdate    Permission = "defects:update"
	PermDefectsUpdateOwn Permission = "defects:update-own"
	PermReportsView      Permission = "reports:view"
	PermProjectsManage   Permission = "projects:manage"
	PermUsersView        Permission = "users:view"

	// PermAll grants every permission.
	PermAll Permission = "*"
)

// rolePermissions is read-only after package initialisation.
var rolePermissions = map[Role]map[Permission]struct{}{
	RoleObserver: setOf(PermDefectsRead, PermReportsView),
	RoleEngineer: setOf(PermDefectsCreate, PermDefectsRead, PermDefectsUpdateOwn),
	RoleManager:  setOf(PermDefectsCreate, PermDefectsRead, PermDefectsUpdate, PermProjectsManage, PermUsersView),
	RoleAdmin:    setOf(PermAll),
}

var roleLabels = map[Role]string{
	RoleObserver: "Observer",
	RoleEngineer: "Engineer",
	RoleManager:  "Manager",
	RoleAdmin:    "Administrator",
}

func setOf(perms ...Permission) map[Permission]struct{} {
	s := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// ParseRole maps a role code received from the server onto the closed set.
// Unrecognised codes become RoleUnknown, which holds no permissions.
func ParseRole(code string) Role {
	switch r := Role(code); r {
	case RoleObserver, RoleEngineer, RoleManager, RoleAdmin:
		return r
	default:
		return RoleUnknown
	}
}

// HasPermission reports whether role holds perm, either explicitly or via
// the wildcard.
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	if _, ok := perms[PermAll]; ok {
		return true
	}
	_, ok = perms[perm]
	return ok
}

// Permissions returns the role's explicit permission set, sorted.
func Permissions(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DisplayName returns a human-readable label for a role code. Codes the
// client does not know are returned unchanged.
func DisplayName(code string) string {
	if label, ok := roleLabels[Role(code)]; ok {
		return label
	}
	return code
}
