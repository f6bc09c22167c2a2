// internal/app/store/groups/memory.go
package groupstore

import (
	"context"
	"sync"
	"time"

	"github.com/studycove/studyhub/internal/app/system/status"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process group store.
type Memory struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Group
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory group store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[primitive.ObjectID]models.Group)}
}

func (s *Memory) Create(ctx context.Context, g models.Group) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	if g.Status == "" {
		g.Status = status.Active
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	s.rows[g.ID] = g
	return g, nil
}

func (s *Memory) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.rows[id]
	if !ok {
		return models.Group{}, ErrNotFound
	}
	return g, nil
}

func (s *Memory) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return ErrNotFound
	}
	delete(s.rows, id)
	return nil
}
