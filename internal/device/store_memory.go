package device

import (
	"context"
	"sort"
	"sync"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// MemoryStore is the in-memory Store used by tests and single-node runs.
type MemoryStore struct {
	mu      sync.RWMutex
	devices map[id.UserID]map[string]*Device
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{devices: make(map[id.UserID]map[string]*Device)}
}

func (s *MemoryStore) Upsert(_ context.Context, d *Device) (*Device, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byFingerprint, ok := s.devices[d.UserID]
	if !ok {
		byFingerprint = make(map[string]*Device)
		s.devices[d.UserID] = byFingerprint
	}

	if existing, ok := byFingerprint[d.Fingerprint]; ok {
		ipChanged := existing.IP != "" && existing.IP != d.IP
		existing.Name = d.Name
		existing.IP = d.IP
		if d.Location != "" {
			existing.Location = d.Location
		}
		existing.LastSeenAt = d.LastSeenAt
		clone := *existing
		clone.SeenFromNewIP = ipChanged
		return &clone, false, nil
	}

	clone := *d
	byFingerprint[d.Fingerprint] = &clone
	out := clone
	return &out, true, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]*Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Device, 0, len(s.devices[userID]))
	for _, d := range s.devices[userID] {
		clone := *d
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeenAt.After(out[j].LastSeenAt) })
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID id.UserID, deviceID id.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for fp, d := range s.devices[userID] {
		if d.ID == deviceID {
			delete(s.devices[userID], fp)
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "device not found")
}
