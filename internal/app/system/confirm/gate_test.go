// internal/app/system/confirm/gate_test.go
package confirm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	confirmstore "github.com/studycove/studyhub/internal/app/store/confirmations"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newGate(t *testing.T, opts ...Option) (*Gate, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	all := append([]Option{WithClock(clock.Now)}, opts...)
	return NewGate(confirmstore.NewMemory(), zap.NewNop(), all...), clock
}

// require issues a challenge and extracts the token from the error.
func require(t *testing.T, g *Gate, action, targetID string, user primitive.ObjectID) *ConfirmationRequiredError {
	t.Helper()
	err := g.Require(context.Background(), action, targetID, user)
	var cre *ConfirmationRequiredError
	if !errors.As(err, &cre) {
		t.Fatalf("Require returned %v, want *ConfirmationRequiredError", err)
	}
	return cre
}

func TestRequireThenRedeem(t *testing.T) {
	g, clock := newGate(t)
	user := primitive.NewObjectID()

	cre := require(t, g, "delete_group", "group-1", user)
	if cre.Token == "" {
		t.Fatal("challenge token is empty")
	}
	if want := clock.Now().Add(DefaultTTL); !cre.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", cre.ExpiresAt, want)
	}

	if err := g.Redeem(context.Background(), cre.Token, "delete_group", "group-1", user); err != nil {
		t.Fatalf("redeem: %v", err)
	}
}

func TestRedeemIsSingleUse(t *testing.T) {
	g, _ := newGate(t)
	user := primitive.NewObjectID()
	ctx := context.Background()

	cre := require(t, g, "delete_content", "content-9", user)

	if err := g.Redeem(ctx, cre.Token, "delete_content", "content-9", user); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	err := g.Redeem(ctx, cre.Token, "delete_content", "content-9", user)
	if !errors.Is(err, confirmstore.ErrNotRedeemable) {
		t.Fatalf("second redeem: err = %v, want ErrNotRedeemable", err)
	}
}

func TestRedeemRejectsBindingMismatch(t *testing.T) {
	g, _ := newGate(t)
	user := primitive.NewObjectID()
	ctx := context.Background()

	cre := require(t, g, "remove_member", "group-1/user-2", user)

	cases := map[string]struct {
		token, action, target string
		user                  primitive.ObjectID
	}{
		"wrong token":  {"bogus", "remove_member", "group-1/user-2", user},
		"wrong action": {cre.Token, "delete_group", "group-1/user-2", user},
		"wrong target": {cre.Token, "remove_member", "group-1/user-3", user},
		"wrong user":   {cre.Token, "remove_member", "group-1/user-2", primitive.NewObjectID()},
	}
	for name, tc := range cases {
		if err := g.Redeem(ctx, tc.token, tc.action, tc.target, tc.user); !errors.Is(err, confirmstore.ErrNotRedeemable) {
			t.Fatalf("%s: err = %v, want ErrNotRedeemable", name, err)
		}
	}

	// The binding failures above must not have burned the token.
	if err := g.Redeem(ctx, cre.Token, "remove_member", "group-1/user-2", user); err != nil {
		t.Fatalf("correct redeem after mismatches: %v", err)
	}
}

func TestRedeemRejectsExpiredToken(t *testing.T) {
	g, clock := newGate(t)
	user := primitive.NewObjectID()

	cre := require(t, g, "delete_group", "group-1", user)
	clock.Advance(DefaultTTL)

	err := g.Redeem(context.Background(), cre.Token, "delete_group", "group-1", user)
	if !errors.Is(err, confirmstore.ErrNotRedeemable) {
		t.Fatalf("err = %v, want ErrNotRedeemable", err)
	}
}

func TestConcurrentRedeemSingleWinner(t *testing.T) {
	g, _ := newGate(t)
	user := primitive.NewObjectID()
	ctx := context.Background()

	cre := require(t, g, "delete_group", "group-1", user)

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = g.Redeem(ctx, cre.Token, "delete_group", "group-1", user)
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, confirmstore.ErrNotRedeemable) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
}

func TestEachChallengeIsIndependent(t *testing.T) {
	g, _ := newGate(t)
	user := primitive.NewObjectID()
	ctx := context.Background()

	first := require(t, g, "delete_group", "group-1", user)
	second := require(t, g, "delete_group", "group-1", user)

	if first.Token == second.Token {
		t.Fatal("two challenges share a token")
	}
	if err := g.Redeem(ctx, second.Token, "delete_group", "group-1", user); err != nil {
		t.Fatalf("redeem second: %v", err)
	}
	if err := g.Redeem(ctx, first.Token, "delete_group", "group-1", user); err != nil {
		t.Fatalf("redeem first after second: %v", err)
	}
}

func TestCustomTTL(t *testing.T) {
	g, clock := newGate(t, WithTTL(30*time.Second))
	user := primitive.NewObjectID()

	cre := require(t, g, "delete_group", "group-1", user)
	if want := clock.Now().Add(30 * time.Second); !cre.ExpiresAt.Equal(want) {
		t.Fatalf("ExpiresAt = %v, want %v", cre.ExpiresAt, want)
	}
}
