package session

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/belgacembalti/trustgate/internal/accesslog"
	"github.com/belgacembalti/trustgate/internal/alert"
	"github.com/belgacembalti/trustgate/internal/device"
	"github.com/belgacembalti/trustgate/internal/identity"
	"github.com/belgacembalti/trustgate/internal/otp"
	"github.com/belgacembalti/trustgate/internal/token"
	"github.com/belgacembalti/trustgate/internal/trust"
	id "github.com/belgacembalti/trustgate/pkg/domain"
)

// IdentityStore is the slice of the identity port the issuer needs.
type IdentityStore interface {
	VerifyCredentials(ctx context.Context, email, password string) (*identity.Identity, error)
	GetByID(ctx context.Context, userID id.UserID) (*identity.Identity, error)
	GetByEmail(ctx context.Context, email string) (*identity.Identity, error)
}

// BiometricReader resolves the optional biometric relation.
type BiometricReader interface {
	FindByUser(ctx context.Context, userID id.UserID) (*identity.BiometricProfile, error)
	MarkVerified(ctx context.Context, userID id.UserID) error
}

// BiometricMatcher is the opaque template comparator.
type BiometricMatcher interface {
	Match(presented, stored string) bool
}

// TrustEvaluator scores authentication events.
type TrustEvaluator interface {
	Evaluate(ctx context.Context, userID id.UserID, event trust.Event) (*trust.Result, error)
	RequiresStepUp(score int) bool
}

// DeviceRegistrar classifies the device behind an attempt.
type DeviceRegistrar interface {
	RecordAndClassify(ctx context.Context, userID id.UserID, fingerprint, ip, label string) (*device.Device, bool, error)
}

// ChallengeService issues and validates step-up codes.
type ChallengeService interface {
	Issue(ctx context.Context, userID id.UserID) (*otp.Challenge, error)
	Validate(ctx context.Context, userID id.UserID, code string) error
}

// TokenMinter mints the session token pair.
type TokenMinter interface {
	Issue(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*token.Pair, error)
}

// AlertRecorder routes anomalies to the security alert sink.
type AlertRecorder interface {
	Record(ctx context.Context, a *alert.Alert) (id.AlertID, error)
}

// AttemptLogger appends to the access log. Implementations swallow their own
// failures.
type AttemptLogger interface {
	Record(ctx context.Context, e *accesslog.Entry)
}
