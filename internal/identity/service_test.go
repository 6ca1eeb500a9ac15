package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

type ServiceTestSuite struct {
	suite.Suite
	store      *MemoryStore
	biometrics *MemoryBiometricStore
	service    *Service
	ctx        context.Context
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.biometrics = NewMemoryBiometricStore()
	s.service = NewService(s.store, s.biometrics)
	s.ctx = requestcontext.WithTime(context.Background(),
		time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
}

func (s *ServiceTestSuite) TestRegister() {
	s.Run("happy path", func() {
		ident, err := s.service.Register(s.ctx, "alice@example.com", "correct-horse")
		s.Require().NoError(err)
		s.Equal(InitialTrustScore, ident.TrustScore)
		s.True(ident.Active)
		s.False(ident.ID.IsZero())
	})

	s.Run("the stored hash verifies the original password", func() {
		ident, err := s.store.VerifyCredentials(s.ctx, "alice@example.com", "correct-horse")
		s.Require().NoError(err)
		s.Equal("alice@example.com", ident.Email)
	})

	s.Run("a wrong password is rejected", func() {
		_, err := s.store.VerifyCredentials(s.ctx, "alice@example.com", "wrong-password")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.service.Register(s.ctx, "alice@example.com", "another-pass")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("email is trimmed and validated", func() {
		ident, err := s.service.Register(s.ctx, "  bob@example.com ", "correct-horse")
		s.Require().NoError(err)
		s.Equal("bob@example.com", ident.Email)

		_, err = s.service.Register(s.ctx, "not-an-email", "correct-horse")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("short passwords are rejected before hashing", func() {
		_, err := s.service.Register(s.ctx, "carol@example.com", "short")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceTestSuite) TestEnrollBiometric() {
	ident, err := s.service.Register(s.ctx, "dave@example.com", "correct-horse")
	s.Require().NoError(err)

	s.Run("enrollment flips the identity flag", func() {
		s.Require().NoError(s.service.EnrollBiometric(s.ctx, ident.ID, "tpl-encrypted"))

		stored, err := s.store.GetByID(s.ctx, ident.ID)
		s.Require().NoError(err)
		s.True(stored.BiometricEnabled)

		profile, err := s.biometrics.FindByUser(s.ctx, ident.ID)
		s.Require().NoError(err)
		s.Equal("tpl-encrypted", profile.EncryptedTemplate)
		s.True(profile.Active)
	})

	s.Run("re-enrollment replaces the template", func() {
		s.Require().NoError(s.service.EnrollBiometric(s.ctx, ident.ID, "tpl-rotated"))
		profile, err := s.biometrics.FindByUser(s.ctx, ident.ID)
		s.Require().NoError(err)
		s.Equal("tpl-rotated", profile.EncryptedTemplate)
	})

	s.Run("empty template rejected", func() {
		err := s.service.EnrollBiometric(s.ctx, ident.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown identity", func() {
		err := s.service.EnrollBiometric(s.ctx, id.NewUserID(), "tpl")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceTestSuite) TestDeactivate() {
	ident, err := s.service.Register(s.ctx, "erin@example.com", "correct-horse")
	s.Require().NoError(err)
	s.Require().NoError(s.service.Deactivate(s.ctx, ident.ID))

	stored, err := s.store.GetByID(s.ctx, ident.ID)
	s.Require().NoError(err)
	s.False(stored.Active)

	// Inactive identities look identical to a wrong password from outside.
	_, err = s.store.VerifyCredentials(s.ctx, "erin@example.com", "correct-horse")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCredentials))
}

func TestTemplateMatcher(t *testing.T) {
	m := NewTemplateMatcher()

	cases := []struct {
		name      string
		presented string
		stored    string
		want      bool
	}{
		{"exact match", "tpl-1", "tpl-1", true},
		{"mismatch", "tpl-1", "tpl-2", false},
		{"empty presented", "", "tpl-1", false},
		{"empty stored", "tpl-1", "", false},
		{"both empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Match(tc.presented, tc.stored); got != tc.want {
				t.Fatalf("Match(%q, %q) = %v, want %v", tc.presented, tc.stored, got, tc.want)
			}
		})
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-10, MinTrustScore},
		{0, 0},
		{57, 57},
		{100, 100},
		{150, MaxTrustScore},
	}
	for _, tc := range cases {
		if got := ClampScore(tc.in); got != tc.want {
			t.Fatalf("ClampScore(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
