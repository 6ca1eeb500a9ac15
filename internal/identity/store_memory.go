package identity

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

// MemoryStore keeps identities in process memory. It is the development and
// test implementation; it still enforces the same CAS semantics as the
// durable store so concurrency tests are meaningful.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*Identity
	byEmail map[string]id.UserID
	hashes  map[id.UserID]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[id.UserID]*Identity),
		byEmail: make(map[string]id.UserID),
		hashes:  make(map[id.UserID]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) Create(_ context.Context, ident *Identity, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalizeEmail(ident.Email)
	if _, exists := s.byEmail[key]; exists {
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	}
	copied := *ident
	s.byID[ident.ID] = &copied
	s.byEmail[key] = ident.ID
	s.hashes[ident.ID] = passwordHash
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, userID id.UserID) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.byID[userID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	copied := *ident
	return &copied, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	copied := *s.byID[userID]
	return &copied, nil
}

func (s *MemoryStore) VerifyCredentials(_ context.Context, email, password string) (*Identity, error) {
	s.mu.RLock()
	userID, ok := s.byEmail[normalizeEmail(email)]
	var hash string
	var ident Identity
	if ok {
		hash = s.hashes[userID]
		ident = *s.byID[userID]
	}
	s.mu.RUnlock()

	// Unknown user and wrong password take the same path and return the
	// same error, so response shape cannot be used for enumeration.
	if !ok {
		_ = bcrypt.CompareHashAndPassword(enumerationDecoyHash, []byte(password))
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}
	if !ident.Active {
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "invalid email or password")
	}
	return &ident, nil
}

// enumerationDecoyHash is a bcrypt hash of a random string, compared against
// when the email is unknown to keep timing close to the known-user path.
var enumerationDecoyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("trustgate-decoy"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()

func (s *MemoryStore) CompareAndSwapScore(ctx context.Context, userID id.UserID, expected, next int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[userID]
	if !ok {
		return false, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	if ident.TrustScore != expected {
		return false, nil
	}
	ident.TrustScore = next
	ident.UpdatedAt = requestcontext.Now(ctx)
	return true, nil
}

func (s *MemoryStore) SetBiometricEnabled(ctx context.Context, userID id.UserID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	ident.BiometricEnabled = enabled
	ident.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

func (s *MemoryStore) Deactivate(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	ident.Active = false
	ident.UpdatedAt = requestcontext.Now(ctx)
	return nil
}

// MemoryBiometricStore keeps biometric profiles in memory.
type MemoryBiometricStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*BiometricProfile
}

func NewMemoryBiometricStore() *MemoryBiometricStore {
	return &MemoryBiometricStore{profiles: make(map[id.UserID]*BiometricProfile)}
}

func (s *MemoryBiometricStore) Upsert(_ context.Context, profile *BiometricProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *profile
	s.profiles[profile.UserID] = &copied
	return nil
}

func (s *MemoryBiometricStore) FindByUser(_ context.Context, userID id.UserID) (*BiometricProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok || !profile.Active {
		return nil, dErrors.New(dErrors.CodeNotFound, "biometric profile not found")
	}
	copied := *profile
	return &copied, nil
}

func (s *MemoryBiometricStore) MarkVerified(ctx context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "biometric profile not found")
	}
	now := requestcontext.Now(ctx)
	profile.LastVerifiedAt = &now
	return nil
}
