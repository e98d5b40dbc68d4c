package flightdeck

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// defaultRevocationRetention bounds how long a revocation without a
// readable expiry claim is kept. Such tokens cannot outlive any TTL the
// service would ever have signed them with.
const defaultRevocationRetention = 48 * time.Hour

// RedisBlacklist is the Redis-backed revocation store. Keys carry a TTL
// equal to the token's remaining life, so expired revocations purge
// themselves.
type RedisBlacklist struct {
	rdb    *redis.Client
	prefix string
}

var _ BlacklistStore = (*RedisBlacklist)(nil)

// NewRedisBlacklist creates a Redis revocation store from a URL
// (for example redis://:pass@host:6379/0). An empty prefix defaults to
// "auth:blacklist:".
func NewRedisBlacklist(redisURL, prefix string) (*RedisBlacklist, error) {
	if prefix == "" {
		prefix = "auth:blacklist:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid redis URL")
	}

	rdb := redis.NewClient(opt)

	// Fail fast on startup.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "redis ping failed")
	}

	return &RedisBlacklist{rdb: rdb, prefix: prefix}, nil
}

func (c *RedisBlacklist) key(token string) string { return c.prefix + token }

// Contains is an exact-string membership test.
func (c *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(token)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryOperation, "blacklist lookup failed")
	}
	return n > 0, nil
}

// Add records the revocation. The TTL is sized from the token's expiry
// claim; revocation semantics never depend on it.
func (c *RedisBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := defaultRevocationRetention
	if !expiresAt.IsZero() {
		if remaining := time.Until(expiresAt); remaining > 0 {
			ttl = remaining
		} else {
			ttl = time.Minute
		}
	}

	if err := c.rdb.Set(ctx, c.key(token), time.Now().Unix(), ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "blacklist insert failed")
	}

	return nil
}

// Close closes the underlying Redis client.
func (c *RedisBlacklist) Close() error {
	return c.rdb.Close()
}
