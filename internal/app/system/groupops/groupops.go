// internal/app/system/groupops/groupops.go

// Package groupops carries out group lifecycle mutations: creating
// groups, removing members, deleting content, and the full cascade of a
// group deletion. Authorization and confirmation happen in the access
// service before these run; groupops assumes the caller is allowed.
package groupops

import (
	"context"
	"errors"
	"fmt"
	"time"

	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	groupstore "github.com/studycove/studyhub/internal/app/store/groups"
	invitestore "github.com/studycove/studyhub/internal/app/store/invites"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/app/system/status"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrLastAdmin is returned when removing a member would leave the group
// with no admin. Every group keeps at least one admin for its lifetime;
// the only way to remove the last admin is to delete the group.
var ErrLastAdmin = errors.New("cannot remove the group's last admin")

// Ops performs group mutations over the stores.
type Ops struct {
	groups      groupstore.Store
	memberships membershipstore.Store
	invites     invitestore.Store
	contents    contentstore.Store
	log         *zap.Logger
	now         func() time.Time
}

// Option customizes Ops.
type Option func(*Ops)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Ops) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Ops over the given stores.
func New(grp groupstore.Store, mem membershipstore.Store, inv invitestore.Store, cnt contentstore.Store, logger *zap.Logger, opts ...Option) *Ops {
	o := &Ops{
		groups:      grp,
		memberships: mem,
		invites:     inv,
		contents:    cnt,
		log:         logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateGroup creates a group and enrolls the owner as its first admin.
func (o *Ops) CreateGroup(ctx context.Context, name, description string, ownerID primitive.ObjectID) (models.Group, error) {
	now := o.now().UTC()
	g, err := o.groups.Create(ctx, models.Group{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Status:      status.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}

	if _, err := o.memberships.Add(ctx, models.GroupMembership{
		GroupID:  g.ID,
		UserID:   ownerID,
		Role:     string(perms.RoleAdmin),
		JoinedAt: now,
	}); err != nil {
		return models.Group{}, fmt.Errorf("enroll owner: %w", err)
	}

	o.log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("owner_id", ownerID.Hex()))
	return g, nil
}

// DeleteGroup removes the group and everything it owns: content records,
// invites, and memberships. Outstanding invites die with the group, so a
// token for a deleted group reports unknown rather than expired.
func (o *Ops) DeleteGroup(ctx context.Context, groupID primitive.ObjectID) error {
	if _, err := o.groups.GetByID(ctx, groupID); err != nil {
		return fmt.Errorf("load group: %w", err)
	}

	contents, err := o.contents.DeleteByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("delete group content: %w", err)
	}
	invites, err := o.invites.DeleteByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("delete group invites: %w", err)
	}
	members, err := o.memberships.DeleteByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("delete group memberships: %w", err)
	}
	if err := o.groups.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	o.log.Info("group deleted",
		zap.String("group_id", groupID.Hex()),
		zap.Int64("memberships_removed", members),
		zap.Int64("invites_removed", invites),
		zap.Int64("contents_removed", contents))
	return nil
}

// RemoveMember removes a user from the group. Removing an admin is
// refused with ErrLastAdmin when no other admin would remain.
func (o *Ops) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	if err := o.memberships.Remove(ctx, groupID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrLastAdmin) {
			return ErrLastAdmin
		}
		return fmt.Errorf("remove membership: %w", err)
	}
	o.log.Info("member removed",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()))
	return nil
}

// LeaveGroup is a member removing themselves. The same last-admin guard
// applies: the sole admin cannot leave, they must delete the group or
// promote another admin first.
func (o *Ops) LeaveGroup(ctx context.Context, groupID, userID primitive.ObjectID) error {
	return o.RemoveMember(ctx, groupID, userID)
}

// DeleteContent removes one content record.
func (o *Ops) DeleteContent(ctx context.Context, contentID primitive.ObjectID) error {
	if err := o.contents.Delete(ctx, contentID); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	o.log.Info("content deleted", zap.String("content_id", contentID.Hex()))
	return nil
}
