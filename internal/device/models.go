package device

import (
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Device is one (identity, fingerprint) pair. The pair is unique: a
// re-sighted fingerprint updates last-seen fields instead of duplicating.
// Devices are trusted from first successful auth; the new-device trust
// penalty is applied by the scoring engine, not by withholding trust here.
type Device struct {
	ID          id.DeviceID
	UserID      id.UserID
	Fingerprint string
	Name        string
	IP          string
	Location    string
	Trusted     bool
	FirstSeenAt time.Time
	LastSeenAt  time.Time

	// SeenFromNewIP is derived at classification time: a known device
	// re-sighted from a different IP than its previous one. Never persisted.
	SeenFromNewIP bool
}
