package authn

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocations stores revoked token ids in Redis, keyed by jti with a
// TTL equal to the remaining token life. Once the token would have expired
// anyway the record disappears on its own.
type RedisRevocations struct {
	client *redis.Client
}

// NewRedisRevocations constructs a Redis-backed revocation store.
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

func revocationKey(tokenID string) string {
	return "revoked:" + tokenID
}

// Revoke marks the token id as revoked for the given duration.
func (s *RedisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (s *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, revocationKey(tokenID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ RevocationStore = (*RedisRevocations)(nil)
