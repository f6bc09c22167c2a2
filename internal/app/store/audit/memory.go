// internal/app/store/audit/memory.go
package audit

import (
	"context"
	"sort"
	"sync"
)

// Memory is the in-memory audit store for single-process deployments and
// tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory audit store.
func NewMemory() *Memory {
	return &Memory{}
}

func (s *Memory) Log(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, stamp(e))
	return nil
}

func (s *Memory) Query(_ context.Context, filter QueryFilter) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Event
	for _, e := range s.events {
		if filter.GroupID != nil && (e.GroupID == nil || *e.GroupID != *filter.GroupID) {
			continue
		}
		if filter.ActorID != nil && (e.ActorID == nil || *e.ActorID != *filter.ActorID) {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.StartTime != nil && e.Timestamp.Before(*filter.StartTime) {
			continue
		}
		if filter.EndTime != nil && e.Timestamp.After(*filter.EndTime) {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
