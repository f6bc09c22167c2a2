// internal/domain/models/groupinvite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InviteState is the derived lifecycle state of an invite. It is computed
// from the stored fields and the current time; it is never persisted, so a
// stored status flag can never drift from the wall clock.
type InviteState string

const (
	InviteActive    InviteState = "active"
	InviteExpired   InviteState = "expired"
	InviteRevoked   InviteState = "revoked"
	InviteExhausted InviteState = "exhausted"
)

// GroupInvite is a single-use-configurable invitation token that admits a
// user into a group as a member. Invites are owned by the group and are
// removed when the group is deleted.
type GroupInvite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token     string             `bson:"token" json:"token"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"expires_at"`

	// MaxUses caps how many joins the invite admits; nil means unlimited.
	MaxUses      *int `bson:"max_uses,omitempty" json:"max_uses,omitempty"`
	UsesConsumed int  `bson:"uses_consumed" json:"uses_consumed"`

	Revoked bool `bson:"revoked" json:"revoked"`
}

// StateAt derives the invite's lifecycle state at the given instant.
// Revoked wins over Expired, which wins over Exhausted, so a token that is
// invalid for several reasons reports the same reason consistently.
func (i GroupInvite) StateAt(now time.Time) InviteState {
	if i.Revoked {
		return InviteRevoked
	}
	if !now.Before(i.ExpiresAt) {
		return InviteExpired
	}
	if i.MaxUses != nil && i.UsesConsumed >= *i.MaxUses {
		return InviteExhausted
	}
	return InviteActive
}
