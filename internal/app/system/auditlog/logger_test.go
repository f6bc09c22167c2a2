// internal/app/system/auditlog/logger_test.go
package auditlog

import (
	"context"
	"testing"

	"github.com/studycove/studyhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestNilLoggerIsNoOp(t *testing.T) {
	var l *Logger
	// Must not panic.
	l.AccessDenied(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "view_content")
}

func TestCategoryRouting(t *testing.T) {
	store := audit.NewMemory()
	l := New(store, zap.NewNop(), Config{
		Access: "db",
		Invite: "off",
		Admin:  "all",
	})
	ctx := context.Background()
	actor := primitive.NewObjectID()
	group := primitive.NewObjectID()

	l.AccessDenied(ctx, actor, group, "delete_group")
	l.InviteCreated(ctx, actor, group) // off: dropped
	l.GroupDeleted(ctx, actor, group)

	events, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("stored events = %d, want 2", len(events))
	}
	for _, e := range events {
		if e.Category == audit.CategoryInvite {
			t.Fatalf("invite event stored despite off setting: %+v", e)
		}
		if e.EventID == "" {
			t.Fatal("event missing EventID")
		}
		if e.Timestamp.IsZero() {
			t.Fatal("event missing Timestamp")
		}
	}
}

func TestLogOnlySettingSkipsStore(t *testing.T) {
	store := audit.NewMemory()
	l := New(store, zap.NewNop(), Config{Access: "log"})
	ctx := context.Background()

	l.RateLimited(ctx, primitive.NewObjectID(), "join_group")

	events, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("stored events = %d, want 0 for log-only setting", len(events))
	}
}

func TestQueryFilters(t *testing.T) {
	store := audit.NewMemory()
	l := New(store, zap.NewNop(), Config{Access: "db", Invite: "db", Admin: "db"})
	ctx := context.Background()

	actor := primitive.NewObjectID()
	group := primitive.NewObjectID()
	other := primitive.NewObjectID()

	l.InviteCreated(ctx, actor, group)
	l.InviteConsumed(ctx, actor, group)
	l.InviteConsumed(ctx, actor, other)
	l.GroupDeleted(ctx, actor, other)

	byGroup, err := store.Query(ctx, audit.QueryFilter{GroupID: &group})
	if err != nil {
		t.Fatalf("query by group: %v", err)
	}
	if len(byGroup) != 2 {
		t.Fatalf("events for group = %d, want 2", len(byGroup))
	}

	byType, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventInviteConsumed})
	if err != nil {
		t.Fatalf("query by type: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("invite_consumed events = %d, want 2", len(byType))
	}

	admin, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil {
		t.Fatalf("query by category: %v", err)
	}
	if len(admin) != 1 {
		t.Fatalf("admin events = %d, want 1", len(admin))
	}
}
