// internal/app/store/invites/invitestore.go

// Package invitestore persists group invites. The Mongo-backed Store is
// the production implementation; Memory backs single-process deployments
// and tests. Both guarantee that ConsumeUse is atomic: when concurrent
// joiners race for an invite's last use, exactly one wins.
package invitestore

import (
	"context"
	"errors"
	"time"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no invite has the given token.
	ErrNotFound = errors.New("invite not found")
	// ErrDuplicateToken is returned when inserting an invite whose token
	// already exists. Callers regenerate and retry.
	ErrDuplicateToken = errors.New("invite token already exists")
	// ErrNoActiveInvite is returned by ConsumeUse when the invite exists
	// but is not in the Active state (or does not exist at all). Callers
	// re-read the invite to derive the precise reason.
	ErrNoActiveInvite = errors.New("invite is not active")
)

// Store is the persistence contract the invite registry depends on.
type Store interface {
	// Insert stores a new invite. Fails with ErrDuplicateToken on token
	// collision.
	Insert(ctx context.Context, inv models.GroupInvite) (models.GroupInvite, error)

	// GetByToken returns the invite with the given token, or ErrNotFound.
	GetByToken(ctx context.Context, token string) (models.GroupInvite, error)

	// ConsumeUse atomically increments uses_consumed if and only if the
	// invite is Active at now. Returns the post-increment invite, or
	// ErrNoActiveInvite.
	ConsumeUse(ctx context.Context, token string, now time.Time) (models.GroupInvite, error)

	// RefundUse atomically decrements uses_consumed, returning a use
	// that was charged but whose membership insert did not happen. A
	// no-op when the count is already zero or the token is unknown.
	RefundUse(ctx context.Context, token string) error

	// Revoke marks the invite revoked. Idempotent for already-revoked
	// invites; ErrNotFound for unknown tokens.
	Revoke(ctx context.Context, token string) error

	// DeleteByGroup removes all invites owned by a group (cascade on
	// group deletion). Returns the number removed.
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)

	// DeleteExpired removes invites whose expiry is at or before now.
	// Storage hygiene only; expiry is always re-derived at use time.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
