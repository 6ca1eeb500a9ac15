package alert

import (
	"time"

	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// Type enumerates detected anomaly categories.
type Type string

const (
	TypeSuspiciousLogin        Type = "suspicious_login"
	TypeMultipleFailedAttempts Type = "multiple_failed_attempts"
	TypeNewDevice              Type = "new_device"
	TypeUnusualLocation        Type = "unusual_location"
)

// IsValid checks the type is one of the supported enum values.
func (t Type) IsValid() bool {
	switch t {
	case TypeSuspiciousLogin, TypeMultipleFailedAttempts, TypeNewDevice, TypeUnusualLocation:
		return true
	}
	return false
}

// Severity ranks alert urgency. Ordering matters: dedup upgrades severity
// but never downgrades it.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// IsValid checks the severity is one of the supported enum values.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// OutranksOrEqual reports whether s is at least as severe as other.
func (s Severity) OutranksOrEqual(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// Alert is an immutable record of a detected anomaly. Only the resolved flag
// and (via dedup) the severity ever change after creation.
type Alert struct {
	ID        id.AlertID
	UserID    id.UserID // zero when the anomaly has no known identity
	Type      Type
	Severity  Severity
	Message   string
	Resolved  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WithinDedupWindow reports whether the alert was created recently enough to
// absorb a duplicate instead of spawning a new record.
func (a *Alert) WithinDedupWindow(now time.Time, window time.Duration) bool {
	return !a.Resolved && now.Sub(a.CreatedAt) <= window
}
