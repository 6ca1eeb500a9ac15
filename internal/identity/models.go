package identity

import (
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Trust score bounds. Scores live in [MinTrustScore, MaxTrustScore] and new
// identities start at the ceiling.
const (
	MinTrustScore     = 0
	MaxTrustScore     = 100
	InitialTrustScore = 100
)

// Identity is the system-of-record view of a user that the auth core needs.
// Credential hashes stay inside the identity store; the core never sees them.
// Identities are deactivated, never deleted.
type Identity struct {
	ID               id.UserID
	Email            string
	TrustScore       int
	BiometricEnabled bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BiometricProfile is the optional one-to-one relation holding an encrypted
// template. Presence of a row is what "biometric enabled" means; there is no
// structural sniffing of the identity record.
type BiometricProfile struct {
	UserID            id.UserID
	EncryptedTemplate string
	Active            bool
	CreatedAt         time.Time
	LastVerifiedAt    *time.Time
}

// ClampScore bounds a raw score into the valid trust score range.
func ClampScore(score int) int {
	if score < MinTrustScore {
		return MinTrustScore
	}
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	return score
}
