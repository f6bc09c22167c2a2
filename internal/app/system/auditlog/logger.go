// internal/app/system/auditlog/logger.go

// Package auditlog records access-control events to the audit store and
// to structured logs. Which destination each category goes to is
// configurable, so an operator can turn the database trail off without
// losing the log stream (or vice versa).
package auditlog

import (
	"context"

	"github.com/studycove/studyhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config controls where each event category is written.
// Values: "all" (store + zap), "db" (store only), "log" (zap only),
// "off" (disabled).
type Config struct {
	// Access covers denials and rate limiting.
	Access string
	// Invite covers the invite lifecycle.
	Invite string
	// Admin covers confirmations and destructive actions.
	Admin string
}

// Logger writes audit events. A nil *Logger is a no-op, so call sites
// never need to guard.
type Logger struct {
	store  audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(store audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAccess:
		return l.config.Access
	case audit.CategoryInvite:
		return l.config.Invite
	case audit.CategoryAdmin:
		return l.config.Admin
	default:
		return "all"
	}
}

func (l *Logger) logToZap(e audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
	}
	if e.ActorID != nil {
		fields = append(fields, zap.String("actor_id", e.ActorID.Hex()))
	}
	if e.GroupID != nil {
		fields = append(fields, zap.String("group_id", e.GroupID.Hex()))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if e.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an event per the category's configuration.
func (l *Logger) Log(ctx context.Context, e audit.Event) {
	if l == nil {
		return
	}
	setting := l.setting(e.Category)
	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(e)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, e); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", e.EventType))
		}
	}
}

// Query reads stored events matching the filter. A nil Logger (or a
// configuration that never stores) simply has nothing to return.
func (l *Logger) Query(ctx context.Context, f audit.QueryFilter) ([]audit.Event, error) {
	if l == nil {
		return nil, nil
	}
	return l.store.Query(ctx, f)
}

// --- Access events ---

// AccessDenied records a permission denial.
func (l *Logger) AccessDenied(ctx context.Context, actorID, groupID primitive.ObjectID, permission string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAccess,
		EventType:     audit.EventAccessDenied,
		ActorID:       &actorID,
		GroupID:       &groupID,
		Success:       false,
		FailureReason: "permission denied",
		Details:       map[string]string{"permission": permission},
	})
}

// RateLimited records an exhausted rate budget.
func (l *Logger) RateLimited(ctx context.Context, actorID primitive.ObjectID, action string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAccess,
		EventType:     audit.EventRateLimited,
		ActorID:       &actorID,
		Success:       false,
		FailureReason: "rate limit exceeded",
		Details:       map[string]string{"action": action},
	})
}

// --- Invite events ---

// InviteCreated records a new invite.
func (l *Logger) InviteCreated(ctx context.Context, actorID, groupID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryInvite,
		EventType: audit.EventInviteCreated,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
	})
}

// InviteConsumed records a successful join via invite.
func (l *Logger) InviteConsumed(ctx context.Context, actorID, groupID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryInvite,
		EventType: audit.EventInviteConsumed,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
	})
}

// InviteRejected records a failed redemption with its reason.
func (l *Logger) InviteRejected(ctx context.Context, actorID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryInvite,
		EventType:     audit.EventInviteRejected,
		ActorID:       &actorID,
		Success:       false,
		FailureReason: reason,
	})
}

// InviteRevoked records a revocation.
func (l *Logger) InviteRevoked(ctx context.Context, actorID, groupID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryInvite,
		EventType: audit.EventInviteRevoked,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
	})
}

// --- Admin events ---

// ConfirmationIssued records a challenge for a gated action.
func (l *Logger) ConfirmationIssued(ctx context.Context, actorID primitive.ObjectID, action, targetID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventConfirmationIssued,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"action": action, "target_id": targetID},
	})
}

// GroupCreated records a new group.
func (l *Logger) GroupCreated(ctx context.Context, actorID, groupID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventGroupCreated,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
	})
}

// GroupDeleted records a confirmed group deletion.
func (l *Logger) GroupDeleted(ctx context.Context, actorID, groupID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventGroupDeleted,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
	})
}

// MemberRemoved records a confirmed member removal.
func (l *Logger) MemberRemoved(ctx context.Context, actorID, groupID, memberID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventMemberRemoved,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
		Details:   map[string]string{"member_id": memberID.Hex()},
	})
}

// ContentDeleted records a confirmed content deletion.
func (l *Logger) ContentDeleted(ctx context.Context, actorID, groupID, contentID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventContentDeleted,
		ActorID:   &actorID,
		GroupID:   &groupID,
		Success:   true,
		Details:   map[string]string{"content_id": contentID.Hex()},
	})
}
