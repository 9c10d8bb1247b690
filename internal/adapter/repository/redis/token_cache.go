package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache implements usecase.TokenCache. It remembers recently applied
// idempotency tokens so retry storms short-circuit without a database round
// trip. The unique token index in Postgres stays authoritative.
type TokenCache struct {
	client *redis.Client
	prefix string
}

// NewTokenCache creates a new TokenCache.
func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{
		client: client,
		prefix: "applied:",
	}
}

// Seen reports whether the token was marked applied within its TTL.
func (c *TokenCache) Seen(ctx context.Context, token string) (bool, error) {
	err := c.client.Get(ctx, c.prefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// MarkApplied records the token for ttl.
func (c *TokenCache) MarkApplied(ctx context.Context, token string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+token, "1", ttl).Err()
}
