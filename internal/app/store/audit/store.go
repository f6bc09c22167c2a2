// internal/app/store/audit/store.go

// Package audit persists the access-control audit trail: denials,
// invite lifecycle events, confirmation round trips, and the destructive
// actions that follow them.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event categories
const (
	CategoryAccess = "access"
	CategoryInvite = "invite"
	CategoryAdmin  = "admin"
)

// Access event types
const (
	EventAccessDenied = "access_denied"
	EventRateLimited  = "rate_limited"
)

// Invite event types
const (
	EventInviteCreated  = "invite_created"
	EventInviteConsumed = "invite_consumed"
	EventInviteRejected = "invite_rejected"
	EventInviteRevoked  = "invite_revoked"
)

// Admin event types (gated actions and their confirmations)
const (
	EventConfirmationIssued   = "confirmation_issued"
	EventConfirmationRedeemed = "confirmation_redeemed"
	EventGroupCreated         = "group_created"
	EventGroupDeleted         = "group_deleted"
	EventMemberJoined         = "member_joined"
	EventMemberRemoved        = "member_removed"
	EventContentDeleted       = "content_deleted"
)

// Event is one audit record.
type Event struct {
	ID primitive.ObjectID `bson:"_id,omitempty"`
	// EventID is a globally unique identifier safe to hand to external
	// log shippers; it survives re-ingestion where _id may not.
	EventID   string    `bson:"event_id"`
	Timestamp time.Time `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// ActorID is the user who performed (or attempted) the action.
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty"`
	// GroupID is the group the event happened in, when there is one.
	GroupID *primitive.ObjectID `bson:"group_id,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// stamp fills in generated fields on a new event.
func stamp(e Event) Event {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}

// QueryFilter selects audit events. Zero-valued fields do not filter.
type QueryFilter struct {
	GroupID   *primitive.ObjectID
	ActorID   *primitive.ObjectID
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
}

// Store is the persistence contract for audit events.
type Store interface {
	// Log records one event, filling ID, EventID, and Timestamp when
	// unset.
	Log(ctx context.Context, e Event) error

	// Query returns matching events, most recent first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
}
