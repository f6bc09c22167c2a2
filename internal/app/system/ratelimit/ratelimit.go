// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit provides fixed-window rate limiting keyed by
// (user, action). Buckets are in-memory and best-effort: losing them on
// restart only resets a user's budget early, it never grants access that
// the permission model would refuse.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action identifies a rate-limited operation class.
type Action string

const (
	ActionCreateInvite Action = "create_invite"
	ActionJoinGroup    Action = "join_group"
	ActionGatedAction  Action = "gated_action"
)

// Policy is the budget for one action: at most Limit requests per Window.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicies returns the built-in per-action budgets. These are abuse
// guards, not billing counters; operators can override them with a policy
// file (see LoadPolicies).
func DefaultPolicies() map[Action]Policy {
	return map[Action]Policy{
		ActionCreateInvite: {Limit: 10, Window: time.Hour},
		ActionJoinGroup:    {Limit: 20, Window: time.Hour},
		ActionGatedAction:  {Limit: 30, Window: time.Hour},
	}
}

// Outcome is the result of a TryAcquire call. When Allowed is false,
// ResetAt is when the caller's window rolls over and a retry can succeed.
type Outcome struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// LimitExceededError reports an exhausted budget for (user, action).
// It carries the window reset time so callers can surface a retry-after
// hint.
type LimitExceededError struct {
	Action  Action
	ResetAt time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Action, e.ResetAt.UTC().Format(time.RFC3339))
}

type window struct {
	count     int
	expiresAt time.Time
}

// Limiter provides fixed-window rate limiting per (user, action) key.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	policies map[Action]Policy
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a limiter with the given per-action policies. Actions
// without a policy are not limited.
func New(policies map[Action]Policy) *Limiter {
	return NewWithClock(policies, time.Now)
}

// NewWithClock creates a limiter with an injected clock. Tests use this to
// advance windows without sleeping.
func NewWithClock(policies map[Action]Policy, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		windows:  make(map[string]*window),
		policies: policies,
		now:      now,
		stopCh:   make(chan struct{}),
	}
}

func key(userID primitive.ObjectID, action Action) string {
	return userID.Hex() + ":" + string(action)
}

// TryAcquire consumes one unit of the user's budget for the action.
// Unlimited actions (no policy, or a non-positive limit) always succeed.
func (l *Limiter) TryAcquire(userID primitive.ObjectID, action Action) Outcome {
	pol, ok := l.policies[action]
	if !ok || pol.Limit <= 0 {
		return Outcome{Allowed: true, Remaining: -1}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := key(userID, action)
	w, exists := l.windows[k]

	// No window yet, or the previous window rolled over: start fresh.
	if !exists || !now.Before(w.expiresAt) {
		w = &window{count: 1, expiresAt: now.Add(pol.Window)}
		l.windows[k] = w
		return Outcome{Allowed: true, Remaining: pol.Limit - 1, ResetAt: w.expiresAt}
	}

	if w.count >= pol.Limit {
		return Outcome{Allowed: false, Remaining: 0, ResetAt: w.expiresAt}
	}

	w.count++
	return Outcome{Allowed: true, Remaining: pol.Limit - w.count, ResetAt: w.expiresAt}
}

// Remaining returns how much budget is left for (user, action) without
// consuming any.
func (l *Limiter) Remaining(userID primitive.ObjectID, action Action) int {
	pol, ok := l.policies[action]
	if !ok || pol.Limit <= 0 {
		return -1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key(userID, action)]
	if !exists || !l.now().Before(w.expiresAt) {
		return pol.Limit
	}
	remaining := pol.Limit - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reset clears the budget for (user, action).
func (l *Limiter) Reset(userID primitive.ObjectID, action Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key(userID, action))
}

// StartSweeper launches a background loop that evicts expired windows every
// interval. Eviction is storage hygiene only; expired windows are already
// ignored by TryAcquire.
func (l *Limiter) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.sweep()
			case <-l.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the sweeper loop, if one was started.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for k, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, k)
		}
	}
}
