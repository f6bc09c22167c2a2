// internal/domain/models/confirmationtoken.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConfirmationToken is a short-lived, single-use token a caller must
// present before a destructive action (delete group, remove member,
// delete content) is carried out. The token is bound to the exact
// (action, target) pair and to the user it was issued to; it cannot be
// transferred or replayed.
type ConfirmationToken struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token    string             `bson:"token" json:"token"`
	Action   string             `bson:"action" json:"action"`
	TargetID string             `bson:"target_id" json:"target_id"`
	IssuedTo primitive.ObjectID `bson:"issued_to" json:"issued_to"`

	IssuedAt  time.Time `bson:"issued_at" json:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	Consumed  bool      `bson:"consumed" json:"consumed"`
}

// ExpiredAt reports whether the token is past its expiry at the given
// instant. Expiry is checked lazily at redeem time; no sweep is required
// for correctness.
func (t ConfirmationToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
