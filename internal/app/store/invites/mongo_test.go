package invitestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/studycove/studyhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoConsumeUseStopsAtMaxUses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := NewMongo(db)
	ctx := context.Background()

	groupID := primitive.NewObjectID()
	maxUses := 3
	fx.CreateInvite(ctx, "tok-capped", groupID, primitive.NewObjectID(), &maxUses, time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	wins := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ConsumeUse(ctx, "tok-capped", time.Now()); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	got := 0
	for range wins {
		got++
	}
	if got != maxUses {
		t.Fatalf("successful consumes: got %d, want %d", got, maxUses)
	}

	inv, err := store.GetByToken(ctx, "tok-capped")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if inv.UsesConsumed != maxUses {
		t.Fatalf("uses_consumed: got %d, want %d", inv.UsesConsumed, maxUses)
	}
}

func TestMongoConsumeUseRejectsDeadInvites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := NewMongo(db)
	ctx := context.Background()

	groupID := primitive.NewObjectID()
	fx.CreateInvite(ctx, "tok-expired", groupID, primitive.NewObjectID(), nil, time.Now().Add(-time.Minute))
	fx.CreateInvite(ctx, "tok-revoked", groupID, primitive.NewObjectID(), nil, time.Now().Add(time.Hour))
	if err := store.Revoke(ctx, "tok-revoked"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	for _, token := range []string{"tok-expired", "tok-revoked", "tok-unknown"} {
		if _, err := store.ConsumeUse(ctx, token, time.Now()); !errors.Is(err, ErrNoActiveInvite) {
			t.Errorf("ConsumeUse(%q): got %v, want ErrNoActiveInvite", token, err)
		}
	}
}

func TestMongoInsertRejectsDuplicateToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := NewMongo(db)
	ctx := context.Background()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	inv := fx.CreateInvite(ctx, "tok-dup", primitive.NewObjectID(), primitive.NewObjectID(), nil, time.Now().Add(time.Hour))
	if _, err := store.Insert(ctx, inv); !errors.Is(err, ErrDuplicateToken) {
		t.Fatalf("Insert duplicate: got %v, want ErrDuplicateToken", err)
	}
}

func TestMongoRefundUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := NewMongo(db)
	ctx := context.Background()

	maxUses := 1
	fx.CreateInvite(ctx, "tok-refund", primitive.NewObjectID(), primitive.NewObjectID(), &maxUses, time.Now().Add(time.Hour))

	if _, err := store.ConsumeUse(ctx, "tok-refund", time.Now()); err != nil {
		t.Fatalf("ConsumeUse: %v", err)
	}
	if _, err := store.ConsumeUse(ctx, "tok-refund", time.Now()); !errors.Is(err, ErrNoActiveInvite) {
		t.Fatalf("exhausted consume: got %v, want ErrNoActiveInvite", err)
	}

	if err := store.RefundUse(ctx, "tok-refund"); err != nil {
		t.Fatalf("RefundUse: %v", err)
	}
	inv, err := store.ConsumeUse(ctx, "tok-refund", time.Now())
	if err != nil {
		t.Fatalf("consume after refund: %v", err)
	}
	if inv.UsesConsumed != 1 {
		t.Fatalf("uses_consumed: got %d, want 1", inv.UsesConsumed)
	}

	// Refunding below zero is a no-op.
	if err := store.RefundUse(ctx, "tok-missing"); err != nil {
		t.Fatalf("RefundUse on unknown token: %v", err)
	}
}

func TestMongoDeleteExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := NewMongo(db)
	ctx := context.Background()

	groupID := primitive.NewObjectID()
	fx.CreateInvite(ctx, "tok-dead", groupID, primitive.NewObjectID(), nil, time.Now().Add(-time.Hour))
	fx.CreateInvite(ctx, "tok-live", groupID, primitive.NewObjectID(), nil, time.Now().Add(time.Hour))

	n, err := store.DeleteExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted: got %d, want 1", n)
	}
	if _, err := store.GetByToken(ctx, "tok-live"); err != nil {
		t.Fatalf("live invite should survive: %v", err)
	}
}
