// internal/app/store/confirmations/memory.go
package confirmstore

import (
	"context"
	"sync"
	"time"

	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process confirmation token store. The mutex makes
// MarkConsumed an atomic check-and-set.
type Memory struct {
	mu      sync.Mutex
	byToken map[string]*models.ConfirmationToken
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory confirmation store.
func NewMemory() *Memory {
	return &Memory{byToken: make(map[string]*models.ConfirmationToken)}
}

func (s *Memory) Insert(ctx context.Context, t models.ConfirmationToken) (models.ConfirmationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = primitive.NewObjectID()
	stored := t
	s.byToken[t.Token] = &stored
	return t, nil
}

func (s *Memory) MarkConsumed(ctx context.Context, token, action, targetID string, issuedTo primitive.ObjectID, now time.Time) (models.ConfirmationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byToken[token]
	if !ok || t.Consumed || t.ExpiredAt(now) {
		return models.ConfirmationToken{}, ErrNotRedeemable
	}
	if t.Action != action || t.TargetID != targetID || t.IssuedTo != issuedTo {
		return models.ConfirmationToken{}, ErrNotRedeemable
	}
	t.Consumed = true
	return *t, nil
}

func (s *Memory) DeleteDead(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for tok, t := range s.byToken {
		if t.Consumed || t.ExpiredAt(now) {
			delete(s.byToken, tok)
			deleted++
		}
	}
	return deleted, nil
}
