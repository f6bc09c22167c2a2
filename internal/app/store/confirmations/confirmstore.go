// internal/app/store/confirmations/confirmstore.go

// Package confirmstore persists confirmation tokens for destructive
// actions. MarkConsumed is an atomic check-and-set so a token can never be
// redeemed twice, even by concurrent requests.
package confirmstore

import (
	"context"
	"errors"
	"time"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotRedeemable is returned by MarkConsumed when no token matches the
// full binding: token value, action, target, issued-to user, unconsumed,
// and unexpired. The caller cannot distinguish which part failed, which
// keeps the failure mode uniform for clients.
var ErrNotRedeemable = errors.New("confirmation token not redeemable")

// Store is the persistence contract for confirmation tokens.
type Store interface {
	// Insert stores a freshly issued token.
	Insert(ctx context.Context, t models.ConfirmationToken) (models.ConfirmationToken, error)

	// MarkConsumed atomically flips consumed to true if and only if the
	// token exists, is unconsumed, is unexpired at now, and its
	// (action, target, issued-to) binding matches. Returns
	// ErrNotRedeemable otherwise.
	MarkConsumed(ctx context.Context, token, action, targetID string, issuedTo primitive.ObjectID, now time.Time) (models.ConfirmationToken, error)

	// DeleteDead removes consumed or expired tokens. Storage hygiene
	// only; redemption checks expiry lazily.
	DeleteDead(ctx context.Context, now time.Time) (int64, error)
}
