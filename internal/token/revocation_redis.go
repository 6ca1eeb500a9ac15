package token

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "github.com/belgacembalti/trustgate/pkg/domain-errors"
)

const revokedKeyPrefix = "trl:jti:"

// RedisTRL shares revocation state across instances. Key existence is the
// marker; Redis expiry clears entries once the token would be dead anyway.
type RedisTRL struct {
	client redis.Cmdable
}

func NewRedisTRL(client redis.Cmdable) *RedisTRL {
	return &RedisTRL{client: client}
}

func (t *RedisTRL) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validateTTL(ttl); err != nil {
		return err
	}
	if jti == "" {
		return nil
	}
	if err := t.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return mapRedisErr(err, "revoke token")
	}
	return nil
}

func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, mapRedisErr(err, "check token revocation")
	}
	return true, nil
}

func (t *RedisTRL) RevokeBatch(ctx context.Context, jtis []string, ttl time.Duration) error {
	if len(jtis) == 0 {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}

	pipe := t.client.Pipeline()
	for _, jti := range jtis {
		if jti != "" {
			pipe.Set(ctx, revokedKeyPrefix+jti, "1", ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return mapRedisErr(err, "revoke token batch")
	}
	return nil
}

func mapRedisErr(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, op+" failed")
}
