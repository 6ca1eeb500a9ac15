package otp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
	"github.com/belgacembalti/trustgate/pkg/requestcontext"
)

type ServiceTestSuite struct {
	suite.Suite
	service *Service
	userID  id.UserID
	now     time.Time
	ctx     context.Context
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) SetupTest() {
	s.service = NewService(NewMemoryStore())
	s.userID = id.NewUserID()
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceTestSuite) at(offset time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(offset))
}

func (s *ServiceTestSuite) TestIssue() {
	challenge, err := s.service.Issue(s.ctx, s.userID)
	s.Require().NoError(err)

	s.Len(challenge.Code, CodeLength)
	s.Equal(s.now, challenge.IssuedAt)
	s.Equal(s.now.Add(DefaultTTL), challenge.ExpiresAt)
	s.False(challenge.Consumed)
}

func (s *ServiceTestSuite) TestValidate() {
	challenge, err := s.service.Issue(s.ctx, s.userID)
	s.Require().NoError(err)

	s.Run("valid code consumes once", func() {
		s.Require().NoError(s.service.Validate(s.ctx, s.userID, challenge.Code))
	})

	s.Run("replay fails with the same generic error", func() {
		err := s.service.Validate(s.ctx, s.userID, challenge.Code)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
	})

	s.Run("unknown code", func() {
		err := s.service.Validate(s.ctx, s.userID, "999999")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
	})

	s.Run("wrong length short-circuits", func() {
		err := s.service.Validate(s.ctx, s.userID, "123")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
	})

	s.Run("another user's code does not transfer", func() {
		other, err := s.service.Issue(s.ctx, id.NewUserID())
		s.Require().NoError(err)
		err = s.service.Validate(s.ctx, s.userID, other.Code)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
	})
}

func (s *ServiceTestSuite) TestExpiry() {
	challenge, err := s.service.Issue(s.ctx, s.userID)
	s.Require().NoError(err)

	s.Run("valid one second before the deadline", func() {
		s.NoError(s.service.Validate(s.at(DefaultTTL-time.Second), s.userID, challenge.Code))
	})

	s.Run("dead exactly at the deadline", func() {
		late, err := s.service.Issue(s.ctx, s.userID)
		s.Require().NoError(err)
		err = s.service.Validate(s.at(DefaultTTL), s.userID, late.Code)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
	})
}

func (s *ServiceTestSuite) TestMostRecentWins() {
	store := NewMemoryStore()
	service := NewService(store)

	// Force a code collision across two issues: the newer challenge must be
	// the one consumed.
	first := &Challenge{
		ID: id.NewChallengeID(), UserID: s.userID, Code: "123456",
		IssuedAt: s.now, ExpiresAt: s.now.Add(DefaultTTL),
	}
	second := &Challenge{
		ID: id.NewChallengeID(), UserID: s.userID, Code: "123456",
		IssuedAt: s.now.Add(time.Minute), ExpiresAt: s.now.Add(time.Minute + DefaultTTL),
	}
	s.Require().NoError(store.Save(s.ctx, first))
	s.Require().NoError(store.Save(s.ctx, second))

	consumed, err := store.Consume(s.ctx, s.userID, "123456", s.now.Add(2*time.Minute))
	s.Require().NoError(err)
	s.Equal(second.ID, consumed.ID)

	// The older duplicate is still live, so one more validation succeeds.
	s.NoError(service.Validate(s.at(2*time.Minute), s.userID, "123456"))
	err = service.Validate(s.at(2*time.Minute), s.userID, "123456")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidOrExpired))
}

func (s *ServiceTestSuite) TestConcurrentValidationSingleWinner() {
	challenge, err := s.service.Issue(s.ctx, s.userID)
	s.Require().NoError(err)

	const attempts = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for n := 0; n < attempts; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.service.Validate(s.ctx, s.userID, challenge.Code) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
}

func (s *ServiceTestSuite) TestGeneratedCodesAreZeroPadded() {
	service := NewService(NewMemoryStore(), WithRandSource(zeroReader{}))
	challenge, err := service.Issue(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal("000000", challenge.Code)
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
