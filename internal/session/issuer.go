package session

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/belgacembalti/trustgate/internal/accesslog"
	"github.com/belgacembalti/trustgate/internal/identity"
	"github.com/belgacembalti/trustgate/internal/platform/metrics"
	"github.com/belgacembalti/trustgate/internal/trust"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

// Issuer drives the authentication state machine:
// CredentialCheck -> (Denied | OTPRequired -> OTPCheck -> (Denied | Granted)) | Granted.
//
// Store timeouts pass through as CodeTimeout and are never converted into a
// denial. Idempotent reads are retried once on CodeUnavailable; writes never
// are, and a failed alert or score write aborts the grant.
type Issuer struct {
	identities IdentityStore
	biometrics BiometricReader
	matcher    BiometricMatcher
	engine     TrustEvaluator
	devices    DeviceRegistrar
	challenges ChallengeService
	tokens     TokenMinter
	alerts     AlertRecorder
	attempts   AttemptLogger
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Issuer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Issuer) { i.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Issuer) { i.metrics = m }
}

func WithBiometrics(reader BiometricReader, matcher BiometricMatcher) Option {
	return func(i *Issuer) {
		i.biometrics = reader
		i.matcher = matcher
	}
}

func NewIssuer(
	identities IdentityStore,
	engine TrustEvaluator,
	devices DeviceRegistrar,
	challenges ChallengeService,
	tokens TokenMinter,
	alerts AlertRecorder,
	attempts AttemptLogger,
	opts ...Option,
) *Issuer {
	iss := &Issuer{
		identities: identities,
		engine:     engine,
		devices:    devices,
		challenges: challenges,
		tokens:     tokens,
		alerts:     alerts,
		attempts:   attempts,
		logger:     slog.Default(),
		tracer:     otel.Tracer("trustgate/session"),
	}
	for _, opt := range opts {
		opt(iss)
	}
	return iss
}

// Authenticate runs the password flow. wantsStepUp lets a client opt into
// OTP; the trust floor forces it regardless of that preference.
func (i *Issuer) Authenticate(ctx context.Context, creds Credentials, wantsStepUp bool) (*AuthResult, error) {
	ctx, span := i.tracer.Start(ctx, "session.Authenticate")
	defer span.End()

	ident, err := i.verifyCredentials(ctx, creds.Email, creds.Password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidCredentials) {
			return i.denyCredentialFailure(ctx, creds.Email, err)
		}
		// Timeouts and outages are infrastructure failures, not denials.
		return nil, err
	}

	if res, err := i.checkActive(ctx, ident); res != nil || err != nil {
		return res, err
	}

	if wantsStepUp || i.engine.RequiresStepUp(ident.TrustScore) {
		return i.beginStepUp(ctx, ident)
	}
	return i.grant(ctx, ident)
}

// CompleteOTP finishes a pending step-up. A failed code costs more trust
// than a failed password.
func (i *Issuer) CompleteOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	ctx, span := i.tracer.Start(ctx, "session.CompleteOTP")
	defer span.End()

	ident, err := i.getByEmail(ctx, email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			// Same shape as a bad code; no identity enumeration here either.
			return i.denied(), dErrors.New(dErrors.CodeInvalidOrExpired, "invalid or expired code")
		}
		return nil, err
	}
	if res, err := i.checkActive(ctx, ident); res != nil || err != nil {
		return res, err
	}

	if err := i.challenges.Validate(ctx, ident.ID, code); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidOrExpired) {
			return i.denyOTPFailure(ctx, ident, err)
		}
		return nil, err
	}
	return i.grant(ctx, ident)
}

// AuthenticateBiometric runs the biometric flow against the identity's
// enrolled template, then follows the normal device/trust/grant path.
func (i *Issuer) AuthenticateBiometric(ctx context.Context, email, presentedTemplate string) (*AuthResult, error) {
	ctx, span := i.tracer.Start(ctx, "session.AuthenticateBiometric")
	defer span.End()

	if i.biometrics == nil || i.matcher == nil {
		return nil, dErrors.New(dErrors.CodeBiometricNotEnabled, "biometric authentication is not configured")
	}

	ident, err := i.getByEmail(ctx, email)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return i.denied(), dErrors.New(dErrors.CodeBiometricMismatch, "biometric verification failed")
		}
		return nil, err
	}
	if res, err := i.checkActive(ctx, ident); res != nil || err != nil {
		return res, err
	}
	if !ident.BiometricEnabled {
		return i.denied(), dErrors.New(dErrors.CodeBiometricNotEnabled, "biometric login is not enabled")
	}

	profile, err := i.biometrics.FindByUser(ctx, ident.ID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return i.denied(), dErrors.New(dErrors.CodeBiometricNotEnabled, "biometric login is not enabled")
		}
		return nil, err
	}
	if !profile.Active {
		return i.denied(), dErrors.New(dErrors.CodeBiometricNotEnabled, "biometric login is not enabled")
	}

	if !i.matcher.Match(presentedTemplate, profile.EncryptedTemplate) {
		if res, err := i.scoreFailure(ctx, ident, trust.EventFailure); err != nil {
			return res, err
		}
		i.logAttempt(ctx, ident.ID, ident.Email, accesslog.StatusFailed, "biometric mismatch")
		i.countLogin("denied")
		return i.denied(), dErrors.New(dErrors.CodeBiometricMismatch, "biometric verification failed")
	}

	if err := i.biometrics.MarkVerified(ctx, ident.ID); err != nil {
		i.logger.WarnContext(ctx, "marking biometric verification failed", "error", err)
	}

	// The trust floor binds every factor.
	if i.engine.RequiresStepUp(ident.TrustScore) {
		return i.beginStepUp(ctx, ident)
	}
	return i.grant(ctx, ident)
}

// beginStepUp issues a challenge and parks the attempt in PendingOTP.
func (i *Issuer) beginStepUp(ctx context.Context, ident *identity.Identity) (*AuthResult, error) {
	challenge, err := i.challenges.Issue(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	if i.metrics != nil {
		i.metrics.StepUpsRequired.Inc()
	}
	i.countLogin("pending_otp")
	i.logAttempt(ctx, ident.ID, ident.Email, accesslog.StatusSuccess, "otp challenge issued")
	i.logger.InfoContext(ctx, "step-up challenge issued", "user_id", ident.ID.String())
	return &AuthResult{
		Status:             StatusPendingOTP,
		UserID:             ident.ID,
		TrustScore:         ident.TrustScore,
		ChallengeExpiresAt: challenge.ExpiresAt,
	}, nil
}

// grant classifies the device, scores the success event, and mints tokens.
// Any write failure along the way aborts with no session issued.
func (i *Issuer) grant(ctx context.Context, ident *identity.Identity) (*AuthResult, error) {
	event := trust.Event{
		Kind: trust.EventSuccess,
		IP:   requestcontext.ClientIP(ctx),
		At:   requestcontext.Now(ctx),
	}

	if fingerprint := requestcontext.DeviceFingerprint(ctx); fingerprint != "" {
		dev, isNew, err := i.devices.RecordAndClassify(ctx, ident.ID, fingerprint,
			event.IP, requestcontext.DeviceName(ctx))
		if err != nil {
			return nil, err
		}
		event.Fingerprint = fingerprint
		event.NewDevice = isNew
		event.UnusualLocation = dev.SeenFromNewIP
	}

	result, err := i.engine.Evaluate(ctx, ident.ID, event)
	if err != nil {
		return nil, err
	}
	if err := i.recordAlert(ctx, result); err != nil {
		return nil, err
	}

	sessionID := id.NewSessionID()
	pair, err := i.tokens.Issue(ctx, ident.ID, sessionID)
	if err != nil {
		return nil, err
	}

	i.logAttempt(ctx, ident.ID, ident.Email, accesslog.StatusSuccess, "")
	i.countLogin("granted")
	i.logger.InfoContext(ctx, "session granted",
		"user_id", ident.ID.String(),
		"session_id", sessionID.String(),
		"trust_score", result.NewScore,
	)
	return &AuthResult{
		Status:     StatusGranted,
		UserID:     ident.ID,
		TrustScore: result.NewScore,
		Tokens:     pair,
		SessionID:  sessionID,
	}, nil
}

func (i *Issuer) denyCredentialFailure(ctx context.Context, email string, cause error) (*AuthResult, error) {
	// Score the failure when the email maps to a real identity; the caller
	// still sees the same generic denial either way.
	ident, err := i.getByEmail(ctx, email)
	switch {
	case err == nil:
		if res, err := i.scoreFailure(ctx, ident, trust.EventFailure); err != nil {
			return res, err
		}
		i.logAttempt(ctx, ident.ID, ident.Email, accesslog.StatusFailed, "invalid credentials")
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		i.logAttempt(ctx, id.UserID{}, email, accesslog.StatusFailed, "invalid credentials")
	default:
		return nil, err
	}
	i.countLogin("denied")
	return i.denied(), cause
}

func (i *Issuer) denyOTPFailure(ctx context.Context, ident *identity.Identity, cause error) (*AuthResult, error) {
	if res, err := i.scoreFailure(ctx, ident, trust.EventOTPFailure); err != nil {
		return res, err
	}
	i.logAttempt(ctx, ident.ID, ident.Email, accesslog.StatusFailed, "invalid or expired code")
	i.countLogin("denied")
	return i.denied(), cause
}

// scoreFailure applies the penalty for a failed factor and routes any alert.
func (i *Issuer) scoreFailure(ctx context.Context, ident *identity.Identity, kind trust.EventKind) (*AuthResult, error) {
	result, err := i.engine.Evaluate(ctx, ident.ID, trust.Event{
		Kind:        kind,
		IP:          requestcontext.ClientIP(ctx),
		Fingerprint: requestcontext.DeviceFingerprint(ctx),
		At:          requestcontext.Now(ctx),
	})
	if err != nil {
		return nil, err
	}
	if err := i.recordAlert(ctx, result); err != nil {
		return nil, err
	}
	return nil, nil
}

func (i *Issuer) recordAlert(ctx context.Context, result *trust.Result) error {
	if result.Alert == nil {
		return nil
	}
	_, err := i.alerts.Record(ctx, result.Alert)
	return err
}

func (i *Issuer) checkActive(ctx context.Context, ident *identity.Identity) (*AuthResult, error) {
	if ident.Active {
		return nil, nil
	}
	i.logAttempt(ctx, ident.ID, ident.Email, accesslog.StatusBlocked, "account deactivated")
	i.countLogin("blocked")
	return i.denied(), dErrors.New(dErrors.CodeUnauthorized, "account is deactivated")
}

func (i *Issuer) verifyCredentials(ctx context.Context, email, password string) (*identity.Identity, error) {
	ident, err := i.identities.VerifyCredentials(ctx, email, password)
	if err != nil && dErrors.HasCode(err, dErrors.CodeUnavailable) {
		ident, err = i.identities.VerifyCredentials(ctx, email, password)
	}
	return ident, err
}

func (i *Issuer) getByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	ident, err := i.identities.GetByEmail(ctx, email)
	if err != nil && dErrors.HasCode(err, dErrors.CodeUnavailable) {
		ident, err = i.identities.GetByEmail(ctx, email)
	}
	return ident, err
}

func (i *Issuer) logAttempt(ctx context.Context, userID id.UserID, email string, status accesslog.Status, reason string) {
	i.attempts.Record(ctx, &accesslog.Entry{
		UserID:     userID,
		Email:      email,
		IP:         requestcontext.ClientIP(ctx),
		DeviceName: deviceLabel(ctx),
		Status:     status,
		Reason:     reason,
	})
}

func deviceLabel(ctx context.Context) string {
	if name := requestcontext.DeviceName(ctx); name != "" {
		return name
	}
	return requestcontext.UserAgent(ctx)
}

func (i *Issuer) countLogin(outcome string) {
	if i.metrics != nil {
		i.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}

func (i *Issuer) denied() *AuthResult {
	return &AuthResult{Status: StatusDenied}
}
