// Package session orchestrates authentication: credential and biometric
// verification, device classification, risk scoring, step-up challenges, and
// finally token issuance.
package session

import (
	"time"

	"github.com/belgacembalti/trustgate/internal/token"
	id "github.com/belgacembalti/trustgate/pkg/domain"
)

type Status string

const (
	// StatusGranted means tokens were issued.
	StatusGranted Status = "granted"
	// StatusPendingOTP means credentials were correct but the risk policy
	// demands a one-time code before tokens are issued.
	StatusPendingOTP Status = "pending_otp"
	// StatusDenied means the attempt failed.
	StatusDenied Status = "denied"
)

// Credentials is a password login request.
type Credentials struct {
	Email    string
	Password string
}

// AuthResult is the outcome of one authentication step.
type AuthResult struct {
	Status     Status
	UserID     id.UserID
	TrustScore int
	// Tokens is set only when Status is StatusGranted.
	Tokens *token.Pair
	// ChallengeExpiresAt is set only when Status is StatusPendingOTP.
	ChallengeExpiresAt time.Time
	SessionID          id.SessionID
}
