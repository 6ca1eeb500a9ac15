package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "github.com/belgacembalti/trustgate/pkg/domain"
	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

const challengeKeyPrefix = "otp:challenge:"

// RedisStore keeps challenges in Redis, keyed per (user, code) with the
// challenge TTL as the key TTL. Re-issuing the same code for a user
// overwrites the key, which is exactly the most-recent-wins rule. Consume
// uses GETDEL so concurrent validations of one code have exactly one
// winner. Expiry is enforced by Redis itself; nothing is deleted early.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func challengeKey(userID id.UserID, code string) string {
	return fmt.Sprintf("%s%s:%s", challengeKeyPrefix, userID.String(), code)
}

type storedChallenge struct {
	ID       string    `json:"id"`
	IssuedAt time.Time `json:"issued_at"`
	Expires  time.Time `json:"expires_at"`
}

func (s *RedisStore) Save(ctx context.Context, c *Challenge) error {
	payload, err := json.Marshal(storedChallenge{
		ID:       c.ID.String(),
		IssuedAt: c.IssuedAt,
		Expires:  c.ExpiresAt,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal challenge")
	}
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "challenge already expired")
	}
	if err := s.client.Set(ctx, challengeKey(c.UserID, c.Code), payload, ttl).Err(); err != nil {
		return mapRedisErr(err, "save challenge")
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, userID id.UserID, code string, now time.Time) (*Challenge, error) {
	raw, err := s.client.GetDel(ctx, challengeKey(userID, code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no valid challenge")
	}
	if err != nil {
		return nil, mapRedisErr(err, "consume challenge")
	}

	var stored storedChallenge
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal challenge")
	}
	// Redis TTL should have expired the key already; double-check against
	// request time to stay exact at the boundary.
	if !now.Before(stored.Expires) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no valid challenge")
	}

	challengeID, err := id.ParseChallengeID(stored.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored challenge id is corrupt")
	}
	return &Challenge{
		ID:        challengeID,
		UserID:    userID,
		Code:      code,
		IssuedAt:  stored.IssuedAt,
		ExpiresAt: stored.Expires,
		Consumed:  true,
	}, nil
}

func mapRedisErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, fmt.Sprintf("%s failed", op))
}
