// internal/app/system/perms/perms.go

// Package perms defines the fixed role-to-permission mapping for study
// groups. The mapping is pure data: looking up a role has no side effects
// and cannot fail. Admin's permission set is a strict superset of
// member's, and extending either set must preserve that ordering (the
// invariant is enforced by tests).
package perms

// Role is a group-scoped role stored as a scalar on the membership
// document.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Permission is a capability a role grants inside a group.
type Permission string

const (
	ViewContent   Permission = "view_content"
	UploadContent Permission = "upload_content"
	DeleteContent Permission = "delete_content"
	InviteMembers Permission = "invite_members"
	RemoveMembers Permission = "remove_members"
	DeleteGroup   Permission = "delete_group"
)

// AllPermissions lists every permission in the model.
var AllPermissions = []Permission{
	ViewContent,
	UploadContent,
	DeleteContent,
	InviteMembers,
	RemoveMembers,
	DeleteGroup,
}

var rolePermissions = map[Role][]Permission{
	RoleMember: {
		ViewContent,
		UploadContent,
	},
	RoleAdmin: {
		ViewContent,
		UploadContent,
		DeleteContent,
		InviteMembers,
		RemoveMembers,
		DeleteGroup,
	},
}

// ValidRole reports whether r is a role the model knows about.
func ValidRole(r Role) bool {
	_, ok := rolePermissions[r]
	return ok
}

// PermissionsFor returns the permissions granted to the role. Unknown
// roles get no permissions (fail closed). The returned slice is a copy;
// callers may not mutate the mapping.
func PermissionsFor(r Role) []Permission {
	ps, ok := rolePermissions[r]
	if !ok {
		return nil
	}
	out := make([]Permission, len(ps))
	copy(out, ps)
	return out
}

// HasPermission reports whether the role grants the permission.
func HasPermission(r Role, p Permission) bool {
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}
