package otp

import (
	"context"
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Store persists challenges.
//
// Consume is the concurrency-critical operation: among the identity's
// unconsumed, unexpired challenges matching code it must atomically mark
// exactly one (the most recently issued) as consumed. When two callers
// race on the same code, exactly one receives the challenge; the other gets
// CodeNotFound. Implementations must not delete expired rows (retention is
// an external job).
type Store interface {
	Save(ctx context.Context, c *Challenge) error
	Consume(ctx context.Context, userID id.UserID, code string, now time.Time) (*Challenge, error)
}
