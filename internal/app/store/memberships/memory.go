// internal/app/store/memberships/memory.go
package membershipstore

import (
	"context"
	"sync"
	"time"

	"github.com/studycove/studyhub/internal/app/system/perms"
	"github.com/studycove/studyhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memKey struct {
	groupID primitive.ObjectID
	userID  primitive.ObjectID
}

// Memory is an in-process membership store.
type Memory struct {
	mu   sync.Mutex
	rows map[memKey]models.GroupMembership
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory membership store.
func NewMemory() *Memory {
	return &Memory{rows: make(map[memKey]models.GroupMembership)}
}

func (s *Memory) Add(ctx context.Context, m models.GroupMembership) (models.GroupMembership, error) {
	if !perms.ValidRole(perms.Role(m.Role)) {
		return models.GroupMembership{}, ErrBadRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := memKey{groupID: m.GroupID, userID: m.UserID}
	if _, exists := s.rows[k]; exists {
		return models.GroupMembership{}, ErrDuplicateMembership
	}
	m.ID = primitive.NewObjectID()
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	s.rows[k] = m
	return m, nil
}

func (s *Memory) Get(ctx context.Context, groupID, userID primitive.ObjectID) (models.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.rows[memKey{groupID: groupID, userID: userID}]
	if !ok {
		return models.GroupMembership{}, ErrNotFound
	}
	return m, nil
}

func (s *Memory) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := memKey{groupID: groupID, userID: userID}
	m, ok := s.rows[k]
	if !ok {
		return ErrNotFound
	}
	// The admin count and the delete share the mutex, so two concurrent
	// removals of a group's two admins cannot both slip past the guard.
	if m.Role == string(perms.RoleAdmin) {
		var admins int
		for rk, row := range s.rows {
			if rk.groupID == groupID && row.Role == string(perms.RoleAdmin) {
				admins++
			}
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	delete(s.rows, k)
	return nil
}

func (s *Memory) CountByGroupRole(ctx context.Context, groupID primitive.ObjectID, role string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, m := range s.rows {
		if k.groupID == groupID && m.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *Memory) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.GroupMembership
	for k, m := range s.rows {
		if k.groupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Memory) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for k := range s.rows {
		if k.groupID == groupID {
			delete(s.rows, k)
			deleted++
		}
	}
	return deleted, nil
}
