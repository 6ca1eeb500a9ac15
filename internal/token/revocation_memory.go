package token

import (
	"context"
	"sync"
	"time"
)

// MemoryTRL is the in-process revocation list for tests and single-node runs.
type MemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   Clock
}

type MemoryTRLOption func(*MemoryTRL)

func WithMemoryClock(clock Clock) MemoryTRLOption {
	return func(t *MemoryTRL) {
		if clock != nil {
			t.clock = clock
		}
	}
}

func NewMemoryTRL(opts ...MemoryTRLOption) *MemoryTRL {
	trl := &MemoryTRL{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(trl)
	}
	return trl
}

func (t *MemoryTRL) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if jti == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.clock().Add(ttl)
	return nil
}

func (t *MemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	t.mu.RLock()
	expiresAt, ok := t.revoked[jti]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if t.clock().After(expiresAt) {
		t.mu.Lock()
		delete(t.revoked, jti)
		t.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (t *MemoryTRL) RevokeBatch(ctx context.Context, jtis []string, ttl time.Duration) error {
	for _, jti := range jtis {
		if err := t.Revoke(ctx, jti, ttl); err != nil {
			return err
		}
	}
	return nil
}
