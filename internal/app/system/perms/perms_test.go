package perms_test

import (
	"testing"

	"github.com/studycove/studyhub/internal/app/system/perms"
)

func TestHasPermission_Member(t *testing.T) {
	if !perms.HasPermission(perms.RoleMember, perms.ViewContent) {
		t.Error("expected member to have view_content")
	}
	if !perms.HasPermission(perms.RoleMember, perms.UploadContent) {
		t.Error("expected member to have upload_content")
	}
	if perms.HasPermission(perms.RoleMember, perms.DeleteGroup) {
		t.Error("expected member to lack delete_group")
	}
	if perms.HasPermission(perms.RoleMember, perms.InviteMembers) {
		t.Error("expected member to lack invite_members")
	}
	if perms.HasPermission(perms.RoleMember, perms.RemoveMembers) {
		t.Error("expected member to lack remove_members")
	}
}

func TestHasPermission_Admin_HasAll(t *testing.T) {
	for _, p := range perms.AllPermissions {
		if !perms.HasPermission(perms.RoleAdmin, p) {
			t.Errorf("expected admin to have %q", p)
		}
	}
}

// Admin must hold every permission member holds, and the containment must
// be strict so the roles stay ordered by privilege.
func TestAdminIsStrictSupersetOfMember(t *testing.T) {
	memberPerms := perms.PermissionsFor(perms.RoleMember)
	for _, p := range memberPerms {
		if !perms.HasPermission(perms.RoleAdmin, p) {
			t.Errorf("admin missing member permission %q", p)
		}
	}

	adminPerms := perms.PermissionsFor(perms.RoleAdmin)
	if len(adminPerms) <= len(memberPerms) {
		t.Errorf("admin permission set (%d) must be strictly larger than member's (%d)",
			len(adminPerms), len(memberPerms))
	}
}

func TestHasPermission_UnknownRole_FailsClosed(t *testing.T) {
	for _, p := range perms.AllPermissions {
		if perms.HasPermission(perms.Role("visitor"), p) {
			t.Errorf("unknown role must not have %q", p)
		}
	}
}

func TestPermissionsFor_UnknownRole(t *testing.T) {
	if got := perms.PermissionsFor(perms.Role("owner")); got != nil {
		t.Errorf("expected nil permissions for unknown role, got %v", got)
	}
}

func TestPermissionsFor_ReturnsCopy(t *testing.T) {
	ps := perms.PermissionsFor(perms.RoleMember)
	if len(ps) == 0 {
		t.Fatal("expected member permissions")
	}
	ps[0] = perms.DeleteGroup

	if perms.HasPermission(perms.RoleMember, perms.DeleteGroup) {
		t.Error("mutating the returned slice must not affect the mapping")
	}
}

func TestValidRole(t *testing.T) {
	if !perms.ValidRole(perms.RoleMember) || !perms.ValidRole(perms.RoleAdmin) {
		t.Error("expected member and admin to be valid roles")
	}
	if perms.ValidRole(perms.Role("leader")) {
		t.Error("expected unknown role to be invalid")
	}
}
