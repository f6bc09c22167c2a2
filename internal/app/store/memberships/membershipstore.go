// internal/app/store/memberships/membershipstore.go

// Package membershipstore persists the authoritative join between users
// and groups: exactly one row per (group_id, user_id).
package membershipstore

import (
	"context"
	"errors"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no membership exists for (group, user).
	ErrNotFound = errors.New("membership not found")
	// ErrDuplicateMembership is returned when the user already belongs to
	// the group.
	ErrDuplicateMembership = errors.New("user is already a member of this group")
	// ErrBadRole is returned for roles outside the permission model.
	ErrBadRole = errors.New(`role must be "admin" or "member"`)
	// ErrLastAdmin is returned when removing a row would leave the
	// group without any admin.
	ErrLastAdmin = errors.New("cannot remove the group's last admin")
)

// Store is the persistence contract for group memberships.
type Store interface {
	// Add creates a membership. Fails with ErrDuplicateMembership when a
	// row for (group, user) already exists and ErrBadRole for unknown
	// roles.
	Add(ctx context.Context, m models.GroupMembership) (models.GroupMembership, error)

	// Get returns the membership for (group, user), or ErrNotFound.
	Get(ctx context.Context, groupID, userID primitive.ObjectID) (models.GroupMembership, error)

	// Remove deletes the membership row, or ErrNotFound if none exists.
	// An admin row is only removed while another admin remains; removing
	// the last admin fails with ErrLastAdmin, and the guard holds under
	// concurrent removals.
	Remove(ctx context.Context, groupID, userID primitive.ObjectID) error

	// CountByGroupRole counts memberships in a group holding the role.
	CountByGroupRole(ctx context.Context, groupID primitive.ObjectID, role string) (int64, error)

	// ListByGroup returns every membership in the group.
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error)

	// DeleteByGroup removes all memberships of a group (cascade on group
	// deletion). Returns the number removed.
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}
