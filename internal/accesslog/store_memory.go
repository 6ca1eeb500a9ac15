package accesslog

import (
	"context"
	"sync"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
	nextID  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *e
	clone.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, &clone)
	e.ID = clone.ID
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Entry
	// Newest first: entries append in order, walk backwards.
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].UserID != userID {
			continue
		}
		clone := *s.entries[i]
		out = append(out, &clone)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
