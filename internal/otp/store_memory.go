package otp

import (
	"context"
	"sync"
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// MemoryStore keeps challenges in process memory. Consume holds the store
// lock for the whole select-and-mark, which is what makes the
// at-most-one-winner guarantee hold under concurrent validation.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[id.UserID][]*Challenge
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{challenges: make(map[id.UserID][]*Challenge)}
}

func (s *MemoryStore) Save(_ context.Context, c *Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	s.challenges[c.UserID] = append(s.challenges[c.UserID], &copied)
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, userID id.UserID, code string, now time.Time) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Most recently issued matching challenge wins; older duplicates are
	// left untouched and age out.
	var winner *Challenge
	for _, c := range s.challenges[userID] {
		if c.Code != code || !c.ValidAt(now) {
			continue
		}
		if winner == nil || c.IssuedAt.After(winner.IssuedAt) {
			winner = c
		}
	}
	if winner == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no valid challenge")
	}

	winner.Consumed = true
	copied := *winner
	return &copied, nil
}
