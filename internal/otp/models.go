package otp

import (
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// CodeLength is the number of digits in a challenge code.
const CodeLength = 6

// DefaultTTL is the challenge validity window.
const DefaultTTL = 5 * time.Minute

// Challenge is a time-boxed one-time code. Lifecycle: issued (valid until
// TTL elapses), then consumed or expired. Consumption is monotonic
// false→true; expired challenges stay in the store for the external
// retention job to sweep.
type Challenge struct {
	ID        id.ChallengeID
	UserID    id.UserID
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// ValidAt reports whether the challenge can still be consumed at t.
func (c *Challenge) ValidAt(t time.Time) bool {
	return !c.Consumed && t.Before(c.ExpiresAt)
}
