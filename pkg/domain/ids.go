// Package domain defines the typed identifiers shared across trustgate.
//
// IDs are distinct types over uuid.UUID so the compiler rejects passing a
// device ID where a user ID is expected. Parse helpers enforce the trust
// boundary invariant: IDs must be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

type (
	// UserID identifies an Identity.
	UserID uuid.UUID
	// DeviceID identifies a registered device record.
	DeviceID uuid.UUID
	// ChallengeID identifies an OTP challenge.
	ChallengeID uuid.UUID
	// AlertID identifies a security alert.
	AlertID uuid.UUID
	// SessionID identifies an issued session.
	SessionID uuid.UUID
)

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewDeviceID returns a fresh random DeviceID.
func NewDeviceID() DeviceID { return DeviceID(uuid.New()) }

// NewChallengeID returns a fresh random ChallengeID.
func NewChallengeID() ChallengeID { return ChallengeID(uuid.New()) }

// NewAlertID returns a fresh random AlertID.
func NewAlertID() AlertID { return AlertID(uuid.New()) }

// NewSessionID returns a fresh random SessionID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id DeviceID) String() string    { return uuid.UUID(id).String() }
func (id ChallengeID) String() string { return uuid.UUID(id).String() }
func (id AlertID) String() string     { return uuid.UUID(id).String() }
func (id SessionID) String() string   { return uuid.UUID(id).String() }

// IsZero reports whether the ID is the nil UUID.
func (id UserID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DeviceID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}

// ParseUserID parses and validates a UserID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseDeviceID parses and validates a DeviceID from its string form.
func ParseDeviceID(s string) (DeviceID, error) {
	u, err := parseUUID(s, "device")
	return DeviceID(u), err
}

// ParseChallengeID parses and validates a ChallengeID from its string form.
func ParseChallengeID(s string) (ChallengeID, error) {
	u, err := parseUUID(s, "challenge")
	return ChallengeID(u), err
}

// ParseAlertID parses and validates an AlertID from its string form.
func ParseAlertID(s string) (AlertID, error) {
	u, err := parseUUID(s, "alert")
	return AlertID(u), err
}

// ParseSessionID parses and validates a SessionID from its string form.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session")
	return SessionID(u), err
}
