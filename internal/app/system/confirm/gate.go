// internal/app/system/confirm/gate.go

// Package confirm implements the two-step confirmation flow for
// destructive actions. A first attempt at a gated action yields a
// challenge token; the caller repeats the request with the token to
// prove intent. Tokens are single-use, short-lived, and bound to the
// exact (action, target, user) triple they were issued for.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	"github.com/studycove/studyhub/internal/app/system/metrics"
	"github.com/studycove/studyhub/internal/app/system/token"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultTTL is how long a confirmation token stays redeemable. Short on
// purpose: the token only has to survive the round trip of one user
// saying "yes, really".
const DefaultTTL = 5 * time.Minute

// ConfirmationRequiredError carries the challenge issued when a gated
// action arrives without a valid token. The caller presents Token on the
// retry.
type ConfirmationRequiredError struct {
	Token     string
	Action    string
	TargetID  string
	ExpiresAt time.Time
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("action %q on %q requires confirmation", e.Action, e.TargetID)
}

// Gate issues and redeems confirmation tokens.
type Gate struct {
	store confirmstore.Store
	log   *zap.Logger

	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

// Option customizes a Gate.
type Option func(*Gate)

// WithTTL overrides the default token lifetime.
func WithTTL(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.ttl = d
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithTokenSource injects the token generator.
func WithTokenSource(fn func() string) Option {
	return func(g *Gate) {
		if fn != nil {
			g.newToken = fn
		}
	}
}

// NewGate creates a confirmation gate.
func NewGate(store confirmstore.Store, logger *zap.Logger, opts ...Option) *Gate {
	g := &Gate{
		store:    store,
		log:      logger,
		ttl:      DefaultTTL,
		now:      time.Now,
		newToken: token.New,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Require issues a fresh challenge for (action, target) bound to the
// user and returns it as a ConfirmationRequiredError. Issuing a new
// token never invalidates earlier unexpired ones; each is independently
// single-use.
func (g *Gate) Require(ctx context.Context, action, targetID string, issuedTo primitive.ObjectID) error {
	now := g.now().UTC()
	t, err := g.store.Insert(ctx, models.ConfirmationToken{
		Token:     g.newToken(),
		Action:    action,
		TargetID:  targetID,
		IssuedTo:  issuedTo,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.ttl),
	})
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}

	metrics.ConfirmationsIssued.Inc()
	g.log.Info("confirmation required",
		zap.String("action", action),
		zap.String("target_id", targetID),
		zap.String("issued_to", issuedTo.Hex()))

	return &ConfirmationRequiredError{
		Token:     t.Token,
		Action:    action,
		TargetID:  targetID,
		ExpiresAt: t.ExpiresAt,
	}
}

// Redeem consumes the token if it matches the full binding and is still
// live. Returns confirmstore.ErrNotRedeemable on any mismatch — unknown
// token, wrong action or target, wrong user, already consumed, or
// expired — without saying which.
func (g *Gate) Redeem(ctx context.Context, tok, action, targetID string, issuedTo primitive.ObjectID) error {
	_, err := g.store.MarkConsumed(ctx, tok, action, targetID, issuedTo, g.now())
	if errors.Is(err, confirmstore.ErrNotRedeemable) {
		return err
	}
	if err != nil {
		return fmt.Errorf("redeem confirmation token: %w", err)
	}

	metrics.ConfirmationsRedeemed.Inc()
	g.log.Info("confirmation redeemed",
		zap.String("action", action),
		zap.String("target_id", targetID))
	return nil
}
