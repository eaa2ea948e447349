package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores values as plain strings under BackendKey(key).
type Redis struct {
	client    *redis.Client
	maxValue  int
	clientTTL time.Duration
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	// MaxValueBytes > 0 rejects larger values as quota exceeded, emulating
	// a bounded medium.
	MaxValueBytes int
	// ClientTTL > 0 expires client keys ("<client>:<key>") that were
	// neither read nor written for that long. Unprefixed keys never expire.
	ClientTTL time.Duration
}

// NewRedis wraps an established client.
func NewRedis(client *redis.Client, opts RedisOptions) *Redis {
	return &Redis{
		client:    client,
		maxValue:  opts.MaxValueBytes,
		clientTTL: opts.ClientTTL,
	}
}

// ttl returns the expiration applied to key, 0 for none.
func (r *Redis) ttl(key string) time.Duration {
	if Namespace(key) == "" {
		return 0
	}
	return r.clientTTL
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	var cmd *redis.StringCmd
	if ttl := r.ttl(key); ttl > 0 {
		cmd = r.client.GetEx(ctx, BackendKey(key), ttl)
	} else {
		cmd = r.client.Get(ctx, BackendKey(key))
	}
	v, err := cmd.Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if r.maxValue > 0 && len(value) > r.maxValue {
		return quotaError(key, fmt.Errorf("value is %d bytes, limit is %d", len(value), r.maxValue))
	}

	if err := r.client.Set(ctx, BackendKey(key), value, r.ttl(key)).Err(); err != nil {
		return classifyRedisError(key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, BackendKey(key)).Err(); err != nil {
		return unavailableError(key, err)
	}
	return nil
}

// classifyRedisError maps a redis failure to a WriteError.
// "OOM" replies are the only capacity signal; everything else (network,
// READONLY replicas, MISCONF persistence errors) is unavailable.
func classifyRedisError(key string, err error) error {
	if strings.HasPrefix(err.Error(), "OOM") {
		return quotaError(key, err)
	}
	return unavailableError(key, err)
}

// Close is a no-op: the client is owned by the caller.
func (r *Redis) Close() error { return nil }
