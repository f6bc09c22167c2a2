// internal/app/system/invites/registry.go

// Package invites implements the invite lifecycle: issue, validate,
// consume, revoke. Validity (Active / Expired / Revoked / Exhausted) is
// always derived from the stored fields and the clock at the moment of
// the call, so validation and consumption can never disagree about why a
// token is dead.
package invites

import (
	"context"
	"errors"
	"fmt"
	"time"

	groupstore "github.com/studycove/studyhub/internal/app/store/groups"
	invitestore "github.com/studycove/studyhub/internal/app/store/invites"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/studycove/studyhub/internal/app/system/metrics"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/app/system/token"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long an invite stays valid when the creator does
	// not pick an expiry.
	DefaultTTL = 7 * 24 * time.Hour

	// tokenAttempts bounds regeneration on token collision. Collisions
	// are practically impossible at 192 bits of entropy; hitting this
	// bound means the RNG is broken.
	tokenAttempts = 5
)

var (
	// ErrInvalidMaxUses is returned when maxUses is present but not
	// positive.
	ErrInvalidMaxUses = errors.New("max uses must be positive")
	// ErrExpiryInPast is returned when the requested expiry is not in
	// the future.
	ErrExpiryInPast = errors.New("expiry must be in the future")
)

// Reason says why an invite token was rejected.
type Reason string

const (
	ReasonUnknown   Reason = "unknown_token"
	ReasonExpired   Reason = "expired"
	ReasonRevoked   Reason = "revoked"
	ReasonExhausted Reason = "exhausted"
)

// InvalidInviteError is returned when a token cannot be validated,
// consumed, or revoked because it does not exist or is no longer Active.
type InvalidInviteError struct {
	Reason Reason
}

func (e *InvalidInviteError) Error() string {
	return fmt.Sprintf("invalid invite code: %s", e.Reason)
}

// ValidationResult is the non-mutating preview of an invite token.
type ValidationResult struct {
	Valid     bool
	Reason    Reason // set when Valid is false
	GroupID   primitive.ObjectID
	GroupName string
	ExpiresAt time.Time
	// UsesRemaining is nil for unlimited invites.
	UsesRemaining *int
}

// JoinResult describes a successful (or idempotent) join via invite.
type JoinResult struct {
	GroupID       primitive.ObjectID
	AssignedRole  perms.Role
	MembershipID  primitive.ObjectID
	AlreadyMember bool
}

// Registry manages the invite lifecycle over pluggable stores.
type Registry struct {
	invites     invitestore.Store
	memberships membershipstore.Store
	groups      groupstore.Store
	log         *zap.Logger

	ttl      time.Duration
	now      func() time.Time
	newToken func() string
}

// Option customizes a Registry.
type Option func(*Registry)

// WithTTL overrides the default invite lifetime.
func WithTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithClock injects the time source. Tests use this to control expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTokenSource injects the token generator.
func WithTokenSource(fn func() string) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newToken = fn
		}
	}
}

// NewRegistry creates an invite registry.
func NewRegistry(inv invitestore.Store, mem membershipstore.Store, grp groupstore.Store, logger *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		invites:     inv,
		memberships: mem,
		groups:      grp,
		log:         logger,
		ttl:         DefaultTTL,
		now:         time.Now,
		newToken:    token.New,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create issues a new invite for the group. Permission to invite is the
// caller's responsibility (the access service checks invite_members
// before delegating here).
func (r *Registry) Create(ctx context.Context, groupID, createdBy primitive.ObjectID, maxUses *int, expiresAt *time.Time) (models.GroupInvite, error) {
	if maxUses != nil && *maxUses <= 0 {
		return models.GroupInvite{}, ErrInvalidMaxUses
	}

	now := r.now().UTC()
	expiry := now.Add(r.ttl)
	if expiresAt != nil {
		if !expiresAt.After(now) {
			return models.GroupInvite{}, ErrExpiryInPast
		}
		expiry = expiresAt.UTC()
	}

	if _, err := r.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			return models.GroupInvite{}, fmt.Errorf("create invite: %w", err)
		}
		return models.GroupInvite{}, fmt.Errorf("load group: %w", err)
	}

	inv := models.GroupInvite{
		GroupID:   groupID,
		CreatedBy: createdBy,
		CreatedAt: now,
		ExpiresAt: expiry,
		MaxUses:   maxUses,
	}

	for attempt := 0; attempt < tokenAttempts; attempt++ {
		inv.Token = r.newToken()
		created, err := r.invites.Insert(ctx, inv)
		if errors.Is(err, invitestore.ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return models.GroupInvite{}, fmt.Errorf("insert invite: %w", err)
		}
		metrics.InvitesCreated.Inc()
		r.log.Info("invite created",
			zap.String("group_id", groupID.Hex()),
			zap.String("created_by", createdBy.Hex()),
			zap.Time("expires_at", expiry))
		return created, nil
	}
	return models.GroupInvite{}, errors.New("token collision persisted across regeneration attempts")
}

// Lookup returns the raw invite for a token. The access service uses it
// to find the owning group before authorizing a revoke.
func (r *Registry) Lookup(ctx context.Context, tok string) (models.GroupInvite, error) {
	inv, err := r.invites.GetByToken(ctx, tok)
	if errors.Is(err, invitestore.ErrNotFound) {
		return models.GroupInvite{}, &InvalidInviteError{Reason: ReasonUnknown}
	}
	if err != nil {
		return models.GroupInvite{}, fmt.Errorf("load invite: %w", err)
	}
	return inv, nil
}

// Validate previews a token without consuming anything.
func (r *Registry) Validate(ctx context.Context, tok string) (ValidationResult, error) {
	inv, err := r.invites.GetByToken(ctx, tok)
	if errors.Is(err, invitestore.ErrNotFound) {
		return ValidationResult{Valid: false, Reason: ReasonUnknown}, nil
	}
	if err != nil {
		return ValidationResult{}, fmt.Errorf("load invite: %w", err)
	}

	res := ValidationResult{
		GroupID:   inv.GroupID,
		ExpiresAt: inv.ExpiresAt,
	}
	if inv.MaxUses != nil {
		remaining := *inv.MaxUses - inv.UsesConsumed
		if remaining < 0 {
			remaining = 0
		}
		res.UsesRemaining = &remaining
	}

	if state := inv.StateAt(r.now()); state != models.InviteActive {
		res.Reason = reasonForState(state)
		return res, nil
	}

	group, err := r.groups.GetByID(ctx, inv.GroupID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("load group: %w", err)
	}
	res.Valid = true
	res.GroupName = group.Name
	return res, nil
}

// Consume redeems a token and joins the user to the invite's group as a
// member. The use-count increment is atomic at the store, so racing
// joiners on the last use produce exactly one success. Joining a group
// the user already belongs to is an idempotent no-op and consumes no use.
func (r *Registry) Consume(ctx context.Context, tok string, userID primitive.ObjectID) (JoinResult, error) {
	inv, err := r.invites.GetByToken(ctx, tok)
	if errors.Is(err, invitestore.ErrNotFound) {
		metrics.InvitesRejected.WithLabelValues(string(ReasonUnknown)).Inc()
		return JoinResult{}, &InvalidInviteError{Reason: ReasonUnknown}
	}
	if err != nil {
		return JoinResult{}, fmt.Errorf("load invite: %w", err)
	}

	now := r.now()
	if state := inv.StateAt(now); state != models.InviteActive {
		reason := reasonForState(state)
		metrics.InvitesRejected.WithLabelValues(string(reason)).Inc()
		return JoinResult{}, &InvalidInviteError{Reason: reason}
	}

	if m, err := r.memberships.Get(ctx, inv.GroupID, userID); err == nil {
		return JoinResult{
			GroupID:       inv.GroupID,
			AssignedRole:  perms.Role(m.Role),
			MembershipID:  m.ID,
			AlreadyMember: true,
		}, nil
	} else if !errors.Is(err, membershipstore.ErrNotFound) {
		return JoinResult{}, fmt.Errorf("load membership: %w", err)
	}

	if _, err := r.invites.ConsumeUse(ctx, tok, now); err != nil {
		if errors.Is(err, invitestore.ErrNoActiveInvite) {
			reason := r.rejectionReason(ctx, tok, now)
			metrics.InvitesRejected.WithLabelValues(string(reason)).Inc()
			return JoinResult{}, &InvalidInviteError{Reason: reason}
		}
		return JoinResult{}, fmt.Errorf("consume invite use: %w", err)
	}

	m, err := r.memberships.Add(ctx, models.GroupMembership{
		GroupID:  inv.GroupID,
		UserID:   userID,
		Role:     string(perms.RoleMember),
		JoinedAt: now.UTC(),
	})
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		// Lost a race against an identical join by the same user. The
		// membership exists and the other request paid for it, so give
		// back the use this one charged before reporting the idempotent
		// outcome.
		if rerr := r.invites.RefundUse(ctx, tok); rerr != nil {
			r.log.Warn("failed to refund invite use after duplicate join",
				zap.String("token", tok),
				zap.Error(rerr))
		}
		existing, gerr := r.memberships.Get(ctx, inv.GroupID, userID)
		if gerr != nil {
			return JoinResult{}, fmt.Errorf("load membership after duplicate: %w", gerr)
		}
		return JoinResult{
			GroupID:       inv.GroupID,
			AssignedRole:  perms.Role(existing.Role),
			MembershipID:  existing.ID,
			AlreadyMember: true,
		}, nil
	}
	if err != nil {
		return JoinResult{}, fmt.Errorf("add membership: %w", err)
	}

	metrics.InvitesConsumed.Inc()
	r.log.Info("invite consumed",
		zap.String("group_id", inv.GroupID.Hex()),
		zap.String("user_id", userID.Hex()))

	return JoinResult{
		GroupID:      inv.GroupID,
		AssignedRole: perms.RoleMember,
		MembershipID: m.ID,
	}, nil
}

// Revoke marks a token revoked. Revoking an invite that is already
// revoked, expired, or exhausted succeeds silently; only unknown tokens
// fail.
func (r *Registry) Revoke(ctx context.Context, tok string, revokedBy primitive.ObjectID) error {
	err := r.invites.Revoke(ctx, tok)
	if errors.Is(err, invitestore.ErrNotFound) {
		return &InvalidInviteError{Reason: ReasonUnknown}
	}
	if err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	r.log.Info("invite revoked", zap.String("revoked_by", revokedBy.Hex()))
	return nil
}

// rejectionReason re-reads the invite after a failed ConsumeUse to report
// why it was not Active.
func (r *Registry) rejectionReason(ctx context.Context, tok string, now time.Time) Reason {
	inv, err := r.invites.GetByToken(ctx, tok)
	if err != nil {
		return ReasonUnknown
	}
	state := inv.StateAt(now)
	if state == models.InviteActive {
		// The failed CAS means the last use went to a concurrent joiner
		// between our read and now.
		return ReasonExhausted
	}
	return reasonForState(state)
}

func reasonForState(state models.InviteState) Reason {
	switch state {
	case models.InviteExpired:
		return ReasonExpired
	case models.InviteRevoked:
		return ReasonRevoked
	case models.InviteExhausted:
		return ReasonExhausted
	default:
		return ReasonUnknown
	}
}
