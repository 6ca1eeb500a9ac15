package alert

import (
	"context"
	"sort"
	"sync"
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// MemoryStore keeps alerts in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	alerts map[id.AlertID]*Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[id.AlertID]*Alert)}
}

func (s *MemoryStore) Insert(_ context.Context, a *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *a
	s.alerts[a.ID] = &copied
	return nil
}

func (s *MemoryStore) FindOpen(_ context.Context, userID id.UserID, alertType Type, since time.Time) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *Alert
	for _, a := range s.alerts {
		if a.UserID != userID || a.Type != alertType || a.Resolved || a.CreatedAt.Before(since) {
			continue
		}
		if newest == nil || a.CreatedAt.After(newest.CreatedAt) {
			newest = a
		}
	}
	if newest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no open alert")
	}
	copied := *newest
	return &copied, nil
}

func (s *MemoryStore) UpdateSeverity(_ context.Context, alertID id.AlertID, severity Severity, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "alert not found")
	}
	a.Severity = severity
	a.UpdatedAt = at
	return nil
}

func (s *MemoryStore) Resolve(_ context.Context, userID id.UserID, alertID id.AlertID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok || a.UserID != userID {
		return dErrors.New(dErrors.CodeNotFound, "alert not found")
	}
	a.Resolved = true
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID, unresolvedOnly bool) ([]*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Alert
	for _, a := range s.alerts {
		if a.UserID != userID {
			continue
		}
		if unresolvedOnly && a.Resolved {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
