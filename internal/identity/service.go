package identity

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

// Service owns identity lifecycle: registration, biometric enrollment,
// deactivation. Authentication decisions live in the session issuer; this
// service only mutates the system of record.
type Service struct {
	store      Store
	biometrics BiometricStore
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(store Store, biometrics BiometricStore, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		biometrics: biometrics,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates a new identity with the initial trust score. The password
// is hashed here so plaintext never reaches a store implementation.
func (s *Service) Register(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	now := requestcontext.Now(ctx)
	ident := &Identity{
		ID:         id.NewUserID(),
		Email:      email,
		TrustScore: InitialTrustScore,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, ident, string(hash)); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "identity registered", "user_id", ident.ID.String())
	return ident, nil
}

// EnrollBiometric upserts the encrypted template and flips the identity
// flag. The flag write happens after the profile write; a crash in between
// leaves biometric login disabled, which fails safe.
func (s *Service) EnrollBiometric(ctx context.Context, userID id.UserID, encryptedTemplate string) error {
	if encryptedTemplate == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "encrypted template is required")
	}
	if _, err := s.store.GetByID(ctx, userID); err != nil {
		return err
	}

	profile := &BiometricProfile{
		UserID:            userID,
		EncryptedTemplate: encryptedTemplate,
		Active:            true,
		CreatedAt:         requestcontext.Now(ctx),
	}
	if err := s.biometrics.Upsert(ctx, profile); err != nil {
		return err
	}
	if err := s.store.SetBiometricEnabled(ctx, userID, true); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "biometric profile enrolled", "user_id", userID.String())
	return nil
}

// Deactivate disables an identity. Records are never deleted.
func (s *Service) Deactivate(ctx context.Context, userID id.UserID) error {
	return s.store.Deactivate(ctx, userID)
}

// TemplateMatcher compares a presented biometric template against the stored
// encrypted one. Real template matching is an external concern; this
// comparator is deliberately opaque and constant-time.
type TemplateMatcher struct{}

func NewTemplateMatcher() TemplateMatcher { return TemplateMatcher{} }

func (TemplateMatcher) Match(presented, stored string) bool {
	if len(presented) == 0 || len(stored) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}
