// Package otp implements the step-up challenge state machine: issue a
// short-lived 6-digit code, validate it at most once.
package otp

import (
	"context"
	"crypto/rand"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/belgacembalti/trustgate/internal/platform/metrics"
	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

// Service issues and validates challenges. Codes come from a
// cryptographically secure source; the reader is injectable so tests can
// pin codes, but the default is crypto/rand.
type Service struct {
	store      Store
	ttl        time.Duration
	randSource io.Reader
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithRandSource overrides the entropy source. Tests only.
func WithRandSource(r io.Reader) Option {
	return func(s *Service) { s.randSource = r }
}

func NewService(store Store, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		ttl:        DefaultTTL,
		randSource: rand.Reader,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Issue creates and persists a fresh challenge. Outstanding earlier
// challenges stay live; validation picks the newest matching one.
func (s *Service) Issue(ctx context.Context, userID id.UserID) (*Challenge, error) {
	code, err := s.generateCode()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generate challenge code")
	}

	now := requestcontext.Now(ctx)
	challenge := &Challenge{
		ID:        id.NewChallengeID(),
		UserID:    userID,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, challenge); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OTPIssued.Inc()
	}
	s.logger.InfoContext(ctx, "otp challenge issued",
		"user_id", userID.String(),
		"challenge_id", challenge.ID.String(),
		"expires_at", challenge.ExpiresAt,
	)
	return challenge, nil
}

// Validate consumes the newest valid challenge matching code. Unknown,
// expired, and already-consumed codes are indistinguishable to the caller:
// all return CodeInvalidOrExpired. Retry limits are the caller's concern.
func (s *Service) Validate(ctx context.Context, userID id.UserID, code string) error {
	if len(code) != CodeLength {
		s.countValidation("invalid")
		return dErrors.New(dErrors.CodeInvalidOrExpired, "invalid or expired code")
	}

	_, err := s.store.Consume(ctx, userID, code, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.countValidation("invalid")
			return dErrors.New(dErrors.CodeInvalidOrExpired, "invalid or expired code")
		}
		return err
	}

	s.countValidation("ok")
	s.logger.InfoContext(ctx, "otp challenge consumed", "user_id", userID.String())
	return nil
}

func (s *Service) countValidation(result string) {
	if s.metrics != nil {
		s.metrics.OTPValidations.WithLabelValues(result).Inc()
	}
}

var codeMax = big.NewInt(1_000_000)

func (s *Service) generateCode() (string, error) {
	n, err := rand.Int(s.randSource, codeMax)
	if err != nil {
		return "", err
	}
	code := n.String()
	for len(code) < CodeLength {
		code = "0" + code
	}
	return code, nil
}
