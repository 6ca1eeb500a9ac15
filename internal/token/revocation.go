package token

import (
	"context"
	"time"

	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

// Clock is injected into revocation stores so tests can pin time.
type Clock func() time.Time

// RevocationList records revoked token JTIs until the underlying token would
// have expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeBatch revokes every JTI in one round trip where the backend
	// allows it. Used when a session's access and refresh tokens go
	// together.
	RevokeBatch(ctx context.Context, jtis []string, ttl time.Duration) error
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "ttl must be positive")
	}
	return nil
}
