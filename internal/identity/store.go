package identity

import (
	"context"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Store is the identity system-of-record port. Implementations own credential
// hashes and score persistence; callers treat every method as an external,
// cancellable call.
//
// CompareAndSwapScore is the only score mutator. It returns false (no error)
// when the stored score no longer matches expected, letting the trust engine
// run a per-identity read-modify-write retry loop without cross-identity
// contention.
type Store interface {
	Create(ctx context.Context, ident *Identity, passwordHash string) error
	GetByID(ctx context.Context, userID id.UserID) (*Identity, error)
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	// VerifyCredentials returns the identity on a correct email/password
	// pair and CodeInvalidCredentials otherwise, without distinguishing
	// unknown users from wrong passwords.
	VerifyCredentials(ctx context.Context, email, password string) (*Identity, error)
	CompareAndSwapScore(ctx context.Context, userID id.UserID, expected, next int) (bool, error)
	SetBiometricEnabled(ctx context.Context, userID id.UserID, enabled bool) error
	Deactivate(ctx context.Context, userID id.UserID) error
}

// BiometricStore persists the optional encrypted-template relation.
type BiometricStore interface {
	Upsert(ctx context.Context, profile *BiometricProfile) error
	FindByUser(ctx context.Context, userID id.UserID) (*BiometricProfile, error)
	MarkVerified(ctx context.Context, userID id.UserID) error
}
