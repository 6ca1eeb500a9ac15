package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/belgacembalti/trustgate/internal/alert"
	"github.com/belgacembalti/trustgate/internal/device"
	"github.com/belgacembalti/trustgate/internal/identity"
	"github.com/belgacembalti/trustgate/internal/otp"
	"github.com/belgacembalti/trustgate/internal/session/mocks"
	"github.com/belgacembalti/trustgate/internal/token"
	"github.com/belgacembalti/trustgate/internal/trust"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

type issuerFixture struct {
	identities *mocks.MockIdentityStore
	biometrics *mocks.MockBiometricReader
	matcher    *mocks.MockBiometricMatcher
	engine     *mocks.MockTrustEvaluator
	devices    *mocks.MockDeviceRegistrar
	challenges *mocks.MockChallengeService
	tokens     *mocks.MockTokenMinter
	alerts     *mocks.MockAlertRecorder
	attempts   *mocks.MockAttemptLogger
	issuer     *Issuer
}

func newIssuerFixture(t *testing.T) *issuerFixture {
	ctrl := gomock.NewController(t)
	f := &issuerFixture{
		identities: mocks.NewMockIdentityStore(ctrl),
		biometrics: mocks.NewMockBiometricReader(ctrl),
		matcher:    mocks.NewMockBiometricMatcher(ctrl),
		engine:     mocks.NewMockTrustEvaluator(ctrl),
		devices:    mocks.NewMockDeviceRegistrar(ctrl),
		challenges: mocks.NewMockChallengeService(ctrl),
		tokens:     mocks.NewMockTokenMinter(ctrl),
		alerts:     mocks.NewMockAlertRecorder(ctrl),
		attempts:   mocks.NewMockAttemptLogger(ctrl),
	}
	f.attempts.EXPECT().Record(gomock.Any(), gomock.Any()).AnyTimes()
	f.issuer = NewIssuer(
		f.identities, f.engine, f.devices, f.challenges, f.tokens, f.alerts, f.attempts,
		WithBiometrics(f.biometrics, f.matcher),
	)
	return f
}

func authCtx(fingerprint string) context.Context {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "test-agent")
	if fingerprint != "" {
		ctx = requestcontext.WithDeviceFingerprint(ctx, fingerprint)
		ctx = requestcontext.WithDeviceName(ctx, "Chrome on Mac OS X")
	}
	return ctx
}

func activeIdentity(score int) *identity.Identity {
	return &identity.Identity{
		ID:         id.NewUserID(),
		Email:      "user@example.com",
		TrustScore: score,
		Active:     true,
	}
}

func TestAuthenticate_Granted(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("fp-1")
	ident := activeIdentity(80)
	pair := &token.Pair{AccessToken: "access", RefreshToken: "refresh"}

	f.identities.EXPECT().VerifyCredentials(gomock.Any(), "user@example.com", "hunter22").Return(ident, nil)
	f.engine.EXPECT().RequiresStepUp(80).Return(false)
	f.devices.EXPECT().
		RecordAndClassify(gomock.Any(), ident.ID, "fp-1", "203.0.113.9", "Chrome on Mac OS X").
		Return(&device.Device{Fingerprint: "fp-1"}, false, nil)
	f.engine.EXPECT().
		Evaluate(gomock.Any(), ident.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.UserID, event trust.Event) (*trust.Result, error) {
			assert.Equal(t, trust.EventSuccess, event.Kind)
			assert.False(t, event.NewDevice)
			return &trust.Result{NewScore: 80}, nil
		})
	f.tokens.EXPECT().Issue(gomock.Any(), ident.ID, gomock.Any()).Return(pair, nil)

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "hunter22"}, false)
	require.NoError(t, err)
	assert.Equal(t, StatusGranted, result.Status)
	assert.Equal(t, pair, result.Tokens)
	assert.Equal(t, 80, result.TrustScore)
	assert.False(t, result.SessionID.IsZero())
}

func TestAuthenticate_NewDevicePenaltyFlows(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("fp-fresh")
	ident := activeIdentity(90)

	f.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(ident, nil)
	f.engine.EXPECT().RequiresStepUp(90).Return(false)
	f.devices.EXPECT().
		RecordAndClassify(gomock.Any(), ident.ID, "fp-fresh", gomock.Any(), gomock.Any()).
		Return(&device.Device{Fingerprint: "fp-fresh"}, true, nil)
	f.engine.EXPECT().
		Evaluate(gomock.Any(), ident.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.UserID, event trust.Event) (*trust.Result, error) {
			assert.True(t, event.NewDevice)
			return &trust.Result{NewScore: 85}, nil
		})
	f.tokens.EXPECT().Issue(gomock.Any(), ident.ID, gomock.Any()).Return(&token.Pair{}, nil)

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "pw"}, false)
	require.NoError(t, err)
	assert.Equal(t, 85, result.TrustScore)
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("")
	ident := activeIdentity(70)

	f.identities.EXPECT().
		VerifyCredentials(gomock.Any(), "user@example.com", "wrong").
		Return(nil, dErrors.New(dErrors.CodeInvalidCredentials, "invalid credentials"))
	f.identities.EXPECT().GetByEmail(gomock.Any(), "user@example.com").Return(ident, nil)
	f.engine.EXPECT().
		Evaluate(gomock.Any(), ident.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ id.UserID, event trust.Event) (*trust.Result, error) {
			assert.Equal(t, trust.EventFailure, event.Kind)
			return &trust.Result{NewScore: 60}, nil
		})

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "wrong"}, false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	assert.Equal(t, StatusDenied, result.Status)
	assert.Nil(t, result.Tokens)
}

func TestAuthenticate_UnknownEmailStaysGeneric(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("")

	f.identities.EXPECT().
		VerifyCredentials(gomock.Any(), "ghost@example.com", "pw").
		Return(nil, dErrors.New(dErrors.CodeInvalidCredentials, "invalid credentials"))
	f.identities.EXPECT().
		GetByEmail(gomock.Any(), "ghost@example.com").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "identity not found"))

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "ghost@example.com", Password: "pw"}, false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	assert.Equal(t, StatusDenied, result.Status)
}

func TestAuthenticate_StepUp(t *testing.T) {
	challenge := &otp.Challenge{ExpiresAt: time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)}

	t.Run("trust floor forces otp", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("fp-1")
		ident := activeIdentity(35)

		f.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(ident, nil)
		f.engine.EXPECT().RequiresStepUp(35).Return(true)
		f.challenges.EXPECT().Issue(gomock.Any(), ident.ID).Return(challenge, nil)

		result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "pw"}, false)
		require.NoError(t, err)
		assert.Equal(t, StatusPendingOTP, result.Status)
		assert.Equal(t, challenge.ExpiresAt, result.ChallengeExpiresAt)
		assert.Nil(t, result.Tokens)
	})

	t.Run("client preference forces otp without consulting the floor", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("fp-1")
		ident := activeIdentity(95)

		f.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(ident, nil)
		f.challenges.EXPECT().Issue(gomock.Any(), ident.ID).Return(challenge, nil)

		result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "pw"}, true)
		require.NoError(t, err)
		assert.Equal(t, StatusPendingOTP, result.Status)
	})
}

func TestAuthenticate_TimeoutIsNotDenial(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("")

	f.identities.EXPECT().
		VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeTimeout, "verify credentials"))

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "pw"}, false)
	assert.Nil(t, result)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
}

func TestAuthenticate_UnavailableReadRetriedOnce(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("")
	ident := activeIdentity(80)
	challenge := &otp.Challenge{ExpiresAt: time.Now().Add(5 * time.Minute)}

	gomock.InOrder(
		f.identities.EXPECT().
			VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "store down")),
		f.identities.EXPECT().
			VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(ident, nil),
	)
	f.challenges.EXPECT().Issue(gomock.Any(), ident.ID).Return(challenge, nil)

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "pw"}, true)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingOTP, result.Status)
}

func TestAuthenticate_DeactivatedAccount(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("")
	ident := activeIdentity(100)
	ident.Active = false

	f.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(ident, nil)

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "pw"}, false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Equal(t, StatusDenied, result.Status)
}

func TestAuthenticate_AlertWriteFailureAbortsGrant(t *testing.T) {
	f := newIssuerFixture(t)
	ctx := authCtx("fp-1")
	ident := activeIdentity(55)

	f.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(ident, nil)
	f.engine.EXPECT().RequiresStepUp(55).Return(false)
	f.devices.EXPECT().
		RecordAndClassify(gomock.Any(), ident.ID, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&device.Device{}, true, nil)
	f.engine.EXPECT().
		Evaluate(gomock.Any(), ident.ID, gomock.Any()).
		Return(&trust.Result{
			NewScore: 50,
			Alert:    &alert.Alert{UserID: ident.ID, Type: alert.TypeNewDevice, Severity: alert.SeverityMedium},
		}, nil)
	f.alerts.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		Return(id.AlertID{}, dErrors.New(dErrors.CodeUnavailable, "insert alert failed"))

	result, err := f.issuer.Authenticate(ctx, Credentials{Email: "user@example.com", Password: "pw"}, false)
	assert.Nil(t, result)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestCompleteOTP(t *testing.T) {
	t.Run("valid code grants session", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("fp-1")
		ident := activeIdentity(38)

		f.identities.EXPECT().GetByEmail(gomock.Any(), ident.Email).Return(ident, nil)
		f.challenges.EXPECT().Validate(gomock.Any(), ident.ID, "123456").Return(nil)
		f.devices.EXPECT().
			RecordAndClassify(gomock.Any(), ident.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&device.Device{}, false, nil)
		f.engine.EXPECT().
			Evaluate(gomock.Any(), ident.ID, gomock.Any()).
			Return(&trust.Result{NewScore: 38}, nil)
		f.tokens.EXPECT().Issue(gomock.Any(), ident.ID, gomock.Any()).Return(&token.Pair{}, nil)

		result, err := f.issuer.CompleteOTP(ctx, ident.Email, "123456")
		require.NoError(t, err)
		assert.Equal(t, StatusGranted, result.Status)
	})

	t.Run("bad code costs otp penalty", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("")
		ident := activeIdentity(38)

		f.identities.EXPECT().GetByEmail(gomock.Any(), ident.Email).Return(ident, nil)
		f.challenges.EXPECT().
			Validate(gomock.Any(), ident.ID, "000000").
			Return(dErrors.New(dErrors.CodeInvalidOrExpired, "invalid or expired code"))
		f.engine.EXPECT().
			Evaluate(gomock.Any(), ident.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.UserID, event trust.Event) (*trust.Result, error) {
				assert.Equal(t, trust.EventOTPFailure, event.Kind)
				return &trust.Result{NewScore: 23}, nil
			})

		result, err := f.issuer.CompleteOTP(ctx, ident.Email, "000000")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
		assert.Equal(t, StatusDenied, result.Status)
	})

	t.Run("unknown email mirrors a bad code", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("")

		f.identities.EXPECT().
			GetByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "identity not found"))

		result, err := f.issuer.CompleteOTP(ctx, "ghost@example.com", "123456")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
		assert.Equal(t, StatusDenied, result.Status)
	})
}

func TestAuthenticateBiometric(t *testing.T) {
	t.Run("match grants session", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("fp-1")
		ident := activeIdentity(75)
		ident.BiometricEnabled = true

		f.identities.EXPECT().GetByEmail(gomock.Any(), ident.Email).Return(ident, nil)
		f.biometrics.EXPECT().FindByUser(gomock.Any(), ident.ID).
			Return(&identity.BiometricProfile{UserID: ident.ID, EncryptedTemplate: "tpl", Active: true}, nil)
		f.matcher.EXPECT().Match("tpl", "tpl").Return(true)
		f.biometrics.EXPECT().MarkVerified(gomock.Any(), ident.ID).Return(nil)
		f.engine.EXPECT().RequiresStepUp(75).Return(false)
		f.devices.EXPECT().
			RecordAndClassify(gomock.Any(), ident.ID, gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&device.Device{}, false, nil)
		f.engine.EXPECT().Evaluate(gomock.Any(), ident.ID, gomock.Any()).
			Return(&trust.Result{NewScore: 75}, nil)
		f.tokens.EXPECT().Issue(gomock.Any(), ident.ID, gomock.Any()).Return(&token.Pair{}, nil)

		result, err := f.issuer.AuthenticateBiometric(ctx, ident.Email, "tpl")
		require.NoError(t, err)
		assert.Equal(t, StatusGranted, result.Status)
	})

	t.Run("mismatch is scored as a failure", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("")
		ident := activeIdentity(75)
		ident.BiometricEnabled = true

		f.identities.EXPECT().GetByEmail(gomock.Any(), ident.Email).Return(ident, nil)
		f.biometrics.EXPECT().FindByUser(gomock.Any(), ident.ID).
			Return(&identity.BiometricProfile{UserID: ident.ID, EncryptedTemplate: "tpl", Active: true}, nil)
		f.matcher.EXPECT().Match("other", "tpl").Return(false)
		f.engine.EXPECT().
			Evaluate(gomock.Any(), ident.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.UserID, event trust.Event) (*trust.Result, error) {
				assert.Equal(t, trust.EventFailure, event.Kind)
				return &trust.Result{NewScore: 65}, nil
			})

		result, err := f.issuer.AuthenticateBiometric(ctx, ident.Email, "other")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBiometricMismatch))
		assert.Equal(t, StatusDenied, result.Status)
	})

	t.Run("not enrolled", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("")
		ident := activeIdentity(75)

		f.identities.EXPECT().GetByEmail(gomock.Any(), ident.Email).Return(ident, nil)

		result, err := f.issuer.AuthenticateBiometric(ctx, ident.Email, "tpl")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBiometricNotEnabled))
		assert.Equal(t, StatusDenied, result.Status)
	})

	t.Run("floor forces step-up even on a matched template", func(t *testing.T) {
		f := newIssuerFixture(t)
		ctx := authCtx("fp-1")
		ident := activeIdentity(30)
		ident.BiometricEnabled = true

		f.identities.EXPECT().GetByEmail(gomock.Any(), ident.Email).Return(ident, nil)
		f.biometrics.EXPECT().FindByUser(gomock.Any(), ident.ID).
			Return(&identity.BiometricProfile{UserID: ident.ID, EncryptedTemplate: "tpl", Active: true}, nil)
		f.matcher.EXPECT().Match("tpl", "tpl").Return(true)
		f.biometrics.EXPECT().MarkVerified(gomock.Any(), ident.ID).Return(nil)
		f.engine.EXPECT().RequiresStepUp(30).Return(true)
		f.challenges.EXPECT().Issue(gomock.Any(), ident.ID).
			Return(&otp.Challenge{ExpiresAt: time.Now().Add(5 * time.Minute)}, nil)

		result, err := f.issuer.AuthenticateBiometric(ctx, ident.Email, "tpl")
		require.NoError(t, err)
		assert.Equal(t, StatusPendingOTP, result.Status)
	})
}
