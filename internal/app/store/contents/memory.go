// internal/app/store/contents/memory.go
package contentstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process content metadata store.
type Memory struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.GroupContent
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory content store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[primitive.ObjectID]models.GroupContent)}
}

func (s *Memory) Insert(ctx context.Context, c models.GroupContent) (models.GroupContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = primitive.NewObjectID()
	if c.StorageKey == "" {
		c.StorageKey = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.rows[c.ID] = c
	return c, nil
}

func (s *Memory) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.rows[id]
	if !ok {
		return models.GroupContent{}, ErrNotFound
	}
	return c, nil
}

func (s *Memory) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.GroupContent
	for _, c := range s.rows {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	return out, nil
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

func (s *Memory) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, c := range s.rows {
		if c.GroupID == groupID {
			delete(s.rows, id)
			deleted++
		}
	}
	return deleted, nil
}
