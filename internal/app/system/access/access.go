// internal/app/system/access/access.go

// Package access is the decision point every group operation flows
// through. It composes the permission model, the rate limiter, the
// invite registry, the confirmation gate, and the group mutations into
// one service, applying checks in a fixed order: rate limit first, then
// authorization, then confirmation, then the action itself.
//
// The service fails closed: any store error during an access check
// surfaces as an error, never as a grant.
package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	contentstore "github.com/studycove/studyhub/internal/app/store/contents"
	membershipstore "github.com/studycove/studyhub/internal/app/store/memberships"
	"github.com/studycove/studyhub/internal/app/system/confirm"
	"github.com/studycove/studyhub/internal/app/system/groupops"
	"github.com/studycove/studyhub/internal/app/system/invites"
	"github.com/studycove/studyhub/internal/app/system/metrics"
	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/app/system/ratelimit"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DeniedError is returned when a user lacks a permission in a group.
// Non-members and members with an insufficient role get the same error,
// so a denial does not reveal whether the group exists or who is in it.
type DeniedError struct {
	GroupID    primitive.ObjectID
	Permission perms.Permission
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission %q denied in group %s", e.Permission, e.GroupID.Hex())
}

// ContentDeniedError is returned when content is requested through a
// group that does not own it, or does not exist at all. The two cases
// are indistinguishable to the caller.
type ContentDeniedError struct {
	GroupID   primitive.ObjectID
	ContentID primitive.ObjectID
}

func (e *ContentDeniedError) Error() string {
	return fmt.Sprintf("content %s is not accessible via group %s", e.ContentID.Hex(), e.GroupID.Hex())
}

// GatedAction is a destructive action that requires a confirmation
// round trip.
type GatedAction string

const (
	GatedDeleteGroup   GatedAction = "delete_group"
	GatedRemoveMember  GatedAction = "remove_member"
	GatedDeleteContent GatedAction = "delete_content"
)

// gatedPermissions maps each gated action to the permission it needs.
var gatedPermissions = map[GatedAction]perms.Permission{
	GatedDeleteGroup:   perms.DeleteGroup,
	GatedRemoveMember:  perms.RemoveMembers,
	GatedDeleteContent: perms.DeleteContent,
}

// ErrUnknownGatedAction is returned for an action outside the gated set.
var ErrUnknownGatedAction = errors.New("unknown gated action")

// GatedRequest describes one attempt at a gated action. ConfirmToken is
// empty on the first attempt; the retry carries the token from the
// ConfirmationRequiredError challenge.
type GatedRequest struct {
	Action  GatedAction
	GroupID primitive.ObjectID

	// MemberID is the removal target for GatedRemoveMember.
	MemberID primitive.ObjectID
	// ContentID is the deletion target for GatedDeleteContent.
	ContentID primitive.ObjectID

	ConfirmToken string
}

// targetID is the canonical target string the confirmation token is
// bound to. It pins the token to the exact object, so a token issued for
// one member or one file cannot confirm the deletion of another.
func (r GatedRequest) targetID() string {
	switch r.Action {
	case GatedRemoveMember:
		return r.GroupID.Hex() + "/" + r.MemberID.Hex()
	case GatedDeleteContent:
		return r.ContentID.Hex()
	default:
		return r.GroupID.Hex()
	}
}

// Service is the access-control front door for group operations.
type Service struct {
	memberships membershipstore.Store
	contents    contentstore.Store
	limiter     *ratelimit.Limiter
	registry    *invites.Registry
	gate        *confirm.Gate
	ops         *groupops.Ops
	log         *zap.Logger
}

// New creates the access service.
func New(
	mem membershipstore.Store,
	cnt contentstore.Store,
	limiter *ratelimit.Limiter,
	registry *invites.Registry,
	gate *confirm.Gate,
	ops *groupops.Ops,
	logger *zap.Logger,
) *Service {
	return &Service{
		memberships: mem,
		contents:    cnt,
		limiter:     limiter,
		registry:    registry,
		gate:        gate,
		ops:         ops,
		log:         logger,
	}
}

// RoleOf returns the user's role in the group and whether they are a
// member at all.
func (s *Service) RoleOf(ctx context.Context, userID, groupID primitive.ObjectID) (perms.Role, bool, error) {
	m, err := s.memberships.Get(ctx, groupID, userID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load membership: %w", err)
	}
	return perms.Role(m.Role), true, nil
}

// Authorize checks that the user holds the permission in the group.
// Returns *DeniedError on a clean denial; any store failure is returned
// as an error so the caller never treats "could not check" as "allowed".
func (s *Service) Authorize(ctx context.Context, userID, groupID primitive.ObjectID, p perms.Permission) error {
	role, member, err := s.RoleOf(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if !member || !perms.HasPermission(role, p) {
		metrics.AccessDenied.WithLabelValues(string(p)).Inc()
		s.log.Debug("access denied",
			zap.String("user_id", userID.Hex()),
			zap.String("group_id", groupID.Hex()),
			zap.String("permission", string(p)))
		return &DeniedError{GroupID: groupID, Permission: p}
	}
	return nil
}

// AuthorizeContent checks the permission in the group AND that the group
// actually owns the content. Content reached through the wrong group is
// reported exactly like content that does not exist.
func (s *Service) AuthorizeContent(ctx context.Context, userID, groupID, contentID primitive.ObjectID, p perms.Permission) (models.GroupContent, error) {
	if err := s.Authorize(ctx, userID, groupID, p); err != nil {
		return models.GroupContent{}, err
	}

	c, err := s.contents.GetByID(ctx, contentID)
	if errors.Is(err, contentstore.ErrNotFound) {
		return models.GroupContent{}, &ContentDeniedError{GroupID: groupID, ContentID: contentID}
	}
	if err != nil {
		return models.GroupContent{}, fmt.Errorf("load content: %w", err)
	}
	if c.GroupID != groupID {
		return models.GroupContent{}, &ContentDeniedError{GroupID: groupID, ContentID: contentID}
	}
	return c, nil
}

// CreateInvite issues an invite for the group after rate limiting and an
// invite_members check.
func (s *Service) CreateInvite(ctx context.Context, userID, groupID primitive.ObjectID, maxUses *int, expiresAt *time.Time) (models.GroupInvite, error) {
	if err := s.acquire(userID, ratelimit.ActionCreateInvite); err != nil {
		return models.GroupInvite{}, err
	}
	if err := s.Authorize(ctx, userID, groupID, perms.InviteMembers); err != nil {
		return models.GroupInvite{}, err
	}
	return s.registry.Create(ctx, groupID, userID, maxUses, expiresAt)
}

// PreviewInvite validates a token without consuming it. Anyone holding
// the token may preview it; no membership or rate limit applies.
func (s *Service) PreviewInvite(ctx context.Context, token string) (invites.ValidationResult, error) {
	return s.registry.Validate(ctx, token)
}

// JoinViaInvite redeems an invite for the user after rate limiting.
func (s *Service) JoinViaInvite(ctx context.Context, userID primitive.ObjectID, token string) (invites.JoinResult, error) {
	if err := s.acquire(userID, ratelimit.ActionJoinGroup); err != nil {
		return invites.JoinResult{}, err
	}
	return s.registry.Consume(ctx, token, userID)
}

// RevokeInvite revokes a token. The caller must hold invite_members in
// the group that owns the invite.
func (s *Service) RevokeInvite(ctx context.Context, userID primitive.ObjectID, token string) error {
	inv, err := s.registry.Lookup(ctx, token)
	if err != nil {
		return err
	}
	if err := s.Authorize(ctx, userID, inv.GroupID, perms.InviteMembers); err != nil {
		return err
	}
	return s.registry.Revoke(ctx, token, userID)
}

// PerformGatedAction runs the full pipeline for a destructive action:
// rate limit, authorization, confirmation, then the mutation. A request
// without a token gets a *confirm.ConfirmationRequiredError challenge; a
// request with a dead or mismatched token gets a fresh challenge, so the
// caller always holds a live token after one round trip.
func (s *Service) PerformGatedAction(ctx context.Context, userID primitive.ObjectID, req GatedRequest) error {
	p, ok := gatedPermissions[req.Action]
	if !ok {
		return ErrUnknownGatedAction
	}

	if err := s.acquire(userID, ratelimit.ActionGatedAction); err != nil {
		return err
	}

	if req.Action == GatedDeleteContent {
		if _, err := s.AuthorizeContent(ctx, userID, req.GroupID, req.ContentID, p); err != nil {
			return err
		}
	} else if err := s.Authorize(ctx, userID, req.GroupID, p); err != nil {
		return err
	}

	target := req.targetID()
	if req.ConfirmToken == "" {
		return s.gate.Require(ctx, string(req.Action), target, userID)
	}
	if err := s.gate.Redeem(ctx, req.ConfirmToken, string(req.Action), target, userID); err != nil {
		if errors.Is(err, confirmstore.ErrNotRedeemable) {
			return s.gate.Require(ctx, string(req.Action), target, userID)
		}
		return err
	}

	return s.execute(ctx, req)
}

func (s *Service) execute(ctx context.Context, req GatedRequest) error {
	switch req.Action {
	case GatedDeleteGroup:
		return s.ops.DeleteGroup(ctx, req.GroupID)
	case GatedRemoveMember:
		return s.ops.RemoveMember(ctx, req.GroupID, req.MemberID)
	case GatedDeleteContent:
		return s.ops.DeleteContent(ctx, req.ContentID)
	default:
		return ErrUnknownGatedAction
	}
}

// acquire consumes one rate-limit unit, converting an exhausted budget
// into a LimitExceededError.
func (s *Service) acquire(userID primitive.ObjectID, action ratelimit.Action) error {
	out := s.limiter.TryAcquire(userID, action)
	if out.Allowed {
		return nil
	}
	metrics.RateLimited.WithLabelValues(string(action)).Inc()
	s.log.Debug("rate limited",
		zap.String("user_id", userID.Hex()),
		zap.String("action", string(action)))
	return &ratelimit.LimitExceededError{Action: action, ResetAt: out.ResetAt}
}
