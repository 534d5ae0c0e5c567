package cache

import (
	"context"
	"fmt"
	"time"
)

// SessionCache tracks issued session token ids so that logout revokes a
// token before its JWT expiry.
type SessionCache struct {
	redis *RedisClient
}

// NewSessionCache creates a new SessionCache.
func NewSessionCache(redis *RedisClient) *SessionCache {
	return &SessionCache{redis: redis}
}

func (c *SessionCache) key(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// Put registers a session id for the token's lifetime.
func (c *SessionCache) Put(ctx context.Context, jti, userID string, ttl time.Duration) error {
	return c.redis.Set(ctx, c.key(jti), userID, ttl)
}

// Active reports whether a session id is still registered.
func (c *SessionCache) Active(ctx context.Context, jti string) (bool, error) {
	return c.redis.Exists(ctx, c.key(jti))
}

// Revoke drops a session id, invalidating the token immediately.
func (c *SessionCache) Revoke(ctx context.Context, jti string) error {
	return c.redis.Delete(ctx, c.key(jti))
}
