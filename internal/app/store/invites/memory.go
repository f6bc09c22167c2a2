// internal/app/store/invites/memory.go
package invitestore

import (
	"context"
	"sync"
	"time"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process invite store. All mutations happen under one
// mutex, which gives ConsumeUse its check-and-increment atomicity.
type Memory struct {
	mu      sync.Mutex
	byToken map[string]*models.GroupInvite
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory invite store.
func NewMemory() *Memory {
	return &Memory{byToken: make(map[string]*models.GroupInvite)}
}

func (s *Memory) Insert(ctx context.Context, inv models.GroupInvite) (models.GroupInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byToken[inv.Token]; exists {
		return models.GroupInvite{}, ErrDuplicateToken
	}
	inv.ID = primitive.NewObjectID()
	stored := inv
	s.byToken[inv.Token] = &stored
	return inv, nil
}

func (s *Memory) GetByToken(ctx context.Context, token string) (models.GroupInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byToken[token]
	if !ok {
		return models.GroupInvite{}, ErrNotFound
	}
	return *inv, nil
}

func (s *Memory) ConsumeUse(ctx context.Context, token string, now time.Time) (models.GroupInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byToken[token]
	if !ok {
		return models.GroupInvite{}, ErrNoActiveInvite
	}
	if inv.StateAt(now) != models.InviteActive {
		return models.GroupInvite{}, ErrNoActiveInvite
	}
	inv.UsesConsumed++
	return *inv, nil
}

func (s *Memory) RefundUse(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byToken[token]
	if !ok || inv.UsesConsumed == 0 {
		return nil
	}
	inv.UsesConsumed--
	return nil
}

func (s *Memory) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.byToken[token]
	if !ok {
		return ErrNotFound
	}
	inv.Revoked = true
	return nil
}

func (s *Memory) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for tok, inv := range s.byToken {
		if inv.GroupID == groupID {
			delete(s.byToken, tok)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Memory) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for tok, inv := range s.byToken {
		if !now.Before(inv.ExpiresAt) {
			delete(s.byToken, tok)
			deleted++
		}
	}
	return deleted, nil
}
