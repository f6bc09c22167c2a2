// internal/app/system/groupops/groupops_test.go
package groupops

import (
	"context"
	"errors"
	"testing"
	"time"

	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	groupstore "github.com/studycove/studyhub/internal/app/store/groups"
	invitestore "github.com/studycove/studyhub/internal/app/store/invites"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fixture struct {
	ops      *Ops
	groups   *groupstore.Memory
	members  *membershipstore.Memory
	invites  *invitestore.Memory
	contents *contentstore.Memory
	ownerID  primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		groups:   groupstore.NewMemory(),
		members:  membershipstore.NewMemory(),
		invites:  invitestore.NewMemory(),
		contents: contentstore.NewMemory(),
		ownerID:  primitive.NewObjectID(),
	}
	f.ops = New(f.groups, f.members, f.invites, f.contents, zap.NewNop())
	return f
}

func (f *fixture) createGroup(t *testing.T) models.Group {
	t.Helper()
	g, err := f.ops.CreateGroup(context.Background(), "Linear Algebra", "weekly problem sets", f.ownerID)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return g
}

func (f *fixture) addMember(t *testing.T, groupID primitive.ObjectID, role perms.Role) primitive.ObjectID {
	t.Helper()
	userID := primitive.NewObjectID()
	_, err := f.members.Add(context.Background(), models.GroupMembership{
		GroupID:  groupID,
		UserID:   userID,
		Role:     string(role),
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	return userID
}

func TestCreateGroupEnrollsOwnerAsAdmin(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)

	m, err := f.members.Get(context.Background(), g.ID, f.ownerID)
	if err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
	if m.Role != string(perms.RoleAdmin) {
		t.Fatalf("owner role = %q, want admin", m.Role)
	}
	if g.OwnerID != f.ownerID {
		t.Fatalf("OwnerID = %v, want %v", g.OwnerID, f.ownerID)
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)
	ctx := context.Background()

	f.addMember(t, g.ID, perms.RoleMember)
	if _, err := f.invites.Insert(ctx, models.GroupInvite{
		Token:     "tok-1",
		GroupID:   g.ID,
		CreatedBy: f.ownerID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}); err != nil {
		t.Fatalf("seed invite: %v", err)
	}
	if _, err := f.contents.Insert(ctx, models.GroupContent{
		GroupID:     g.ID,
		UploadedBy:  f.ownerID,
		Name:        "week1.pdf",
		ContentType: "file",
	}); err != nil {
		t.Fatalf("seed content: %v", err)
	}

	if err := f.ops.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	if _, err := f.groups.GetByID(ctx, g.ID); !errors.Is(err, groupstore.ErrNotFound) {
		t.Fatalf("group still present: err = %v", err)
	}
	if _, err := f.invites.GetByToken(ctx, "tok-1"); !errors.Is(err, invitestore.ErrNotFound) {
		t.Fatalf("invite survived group deletion: err = %v", err)
	}
	if _, err := f.members.Get(ctx, g.ID, f.ownerID); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Fatalf("membership survived group deletion: err = %v", err)
	}
	cs, err := f.contents.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("list contents: %v", err)
	}
	if len(cs) != 0 {
		t.Fatalf("contents survived group deletion: %d left", len(cs))
	}
}

func TestDeleteGroupUnknown(t *testing.T) {
	f := newFixture(t)
	err := f.ops.DeleteGroup(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, groupstore.ErrNotFound) {
		t.Fatalf("err = %v, want groupstore.ErrNotFound", err)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)
	ctx := context.Background()
	userID := f.addMember(t, g.ID, perms.RoleMember)

	if err := f.ops.RemoveMember(ctx, g.ID, userID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if _, err := f.members.Get(ctx, g.ID, userID); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Fatalf("membership still present: err = %v", err)
	}
}

func TestRemoveLastAdminRefused(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)
	ctx := context.Background()
	f.addMember(t, g.ID, perms.RoleMember)

	err := f.ops.RemoveMember(ctx, g.ID, f.ownerID)
	if !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("err = %v, want ErrLastAdmin", err)
	}
	if _, err := f.members.Get(ctx, g.ID, f.ownerID); err != nil {
		t.Fatalf("admin membership was removed despite guard: %v", err)
	}
}

func TestRemoveAdminWithAnotherAdminRemaining(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)
	ctx := context.Background()
	f.addMember(t, g.ID, perms.RoleAdmin)

	if err := f.ops.RemoveMember(ctx, g.ID, f.ownerID); err != nil {
		t.Fatalf("remove admin with backup admin: %v", err)
	}
}

func TestLeaveGroupAppliesLastAdminGuard(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)
	ctx := context.Background()

	if err := f.ops.LeaveGroup(ctx, g.ID, f.ownerID); !errors.Is(err, ErrLastAdmin) {
		t.Fatalf("sole admin leave: err = %v, want ErrLastAdmin", err)
	}

	member := f.addMember(t, g.ID, perms.RoleMember)
	if err := f.ops.LeaveGroup(ctx, g.ID, member); err != nil {
		t.Fatalf("member leave: %v", err)
	}
}

func TestRemoveMemberUnknown(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)

	err := f.ops.RemoveMember(context.Background(), g.ID, primitive.NewObjectID())
	if !errors.Is(err, membershipstore.ErrNotFound) {
		t.Fatalf("err = %v, want membershipstore.ErrNotFound", err)
	}
}

func TestDeleteContent(t *testing.T) {
	f := newFixture(t)
	g := f.createGroup(t)
	ctx := context.Background()

	c, err := f.contents.Insert(ctx, models.GroupContent{
		GroupID:     g.ID,
		UploadedBy:  f.ownerID,
		Name:        "deck.json",
		ContentType: "flashcards",
	})
	if err != nil {
		t.Fatalf("seed content: %v", err)
	}

	if err := f.ops.DeleteContent(ctx, c.ID); err != nil {
		t.Fatalf("delete content: %v", err)
	}
	if err := f.ops.DeleteContent(ctx, c.ID); !errors.Is(err, contentstore.ErrNotFound) {
		t.Fatalf("second delete: err = %v, want contentstore.ErrNotFound", err)
	}
}
