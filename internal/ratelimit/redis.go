package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingMarker = "pending"
	doneMarker    = "done"

	// DefaultInFlightTTL bounds how long a crashed replica can hold a reservation.
	DefaultInFlightTTL = 5 * time.Minute
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisBackend shares markers across replicas. Expiry is handled by Redis TTLs.
type RedisBackend struct {
	client      redis.UniversalClient
	inFlightTTL time.Duration
}

// NewRedisBackend wraps client. A non-positive inFlightTTL uses DefaultInFlightTTL.
func NewRedisBackend(client redis.UniversalClient, inFlightTTL time.Duration) *RedisBackend {
	if inFlightTTL <= 0 {
		inFlightTTL = DefaultInFlightTTL
	}
	return &RedisBackend{client: client, inFlightTTL: inFlightTTL}
}

func (r *RedisBackend) TryReserve(ctx context.Context, key string, cooldown time.Duration) (bool, time.Duration, error) {
	// A marker can expire between SETNX and the read; one retry covers that window.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := r.client.SetNX(ctx, key, pendingMarker, r.inFlightTTL).Result()
		if err != nil {
			return false, 0, err
		}
		if ok {
			return true, 0, nil
		}
		remaining, err := r.Remaining(ctx, key, cooldown)
		if err != nil {
			return false, 0, err
		}
		if remaining > 0 {
			return false, remaining, nil
		}
	}
	return false, cooldown, nil
}

func (r *RedisBackend) Commit(ctx context.Context, key string, cooldown time.Duration) error {
	return r.client.Set(ctx, key, doneMarker, cooldown).Err()
}

func (r *RedisBackend) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, r.client, []string{key}, pendingMarker).Err()
}

func (r *RedisBackend) Remaining(ctx context.Context, key string, cooldown time.Duration) (time.Duration, error) {
	pipe := r.client.Pipeline()
	get := pipe.Get(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, err
	}
	val, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if val == pendingMarker {
		return cooldown, nil
	}
	left := ttl.Val()
	if left <= 0 {
		return 0, nil
	}
	if left > cooldown {
		left = cooldown
	}
	return left, nil
}

var _ Backend = (*RedisBackend)(nil)
