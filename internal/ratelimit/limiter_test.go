package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker-backend/internal/shared/apperr"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemoryLimiter(t *testing.T) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := New(NewMemoryBackend(clock.Now), map[Class]time.Duration{
		ClassGenerate: 60 * time.Second,
		ClassAnalyze:  30 * time.Second,
	})
	return l, clock
}

func TestReserveCommitStartsCooldown(t *testing.T) {
	ctx := context.Background()
	l, clock := newMemoryLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Commit(ctx))

	clock.Advance(20 * time.Second)
	_, err = l.Reserve(ctx, "u1", ClassGenerate)
	var rl *apperr.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, "generate", rl.Operation)
	assert.Equal(t, 40, rl.RemainingSeconds())

	clock.Advance(40 * time.Second)
	res, err = l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Release(ctx))
}

func TestMemoryBackendEvictsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	backend := NewMemoryBackend(clock.Now)
	l := New(backend, map[Class]time.Duration{ClassGenerate: 60 * time.Second})

	for _, user := range []string{"u1", "u2", "u3"} {
		res, err := l.Reserve(ctx, user, ClassGenerate)
		require.NoError(t, err)
		require.NoError(t, res.Commit(ctx))
	}
	assert.Equal(t, 3, backend.Len())

	clock.Advance(61 * time.Second)
	d, err := l.Check(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, backend.Len())

	res, err := l.Reserve(ctx, "u2", ClassGenerate)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.Len(), "a fresh reservation replaces the expired entry")
	require.NoError(t, res.Release(ctx))
	assert.Equal(t, 1, backend.Len())

	_, err = l.Check(ctx, "u3", ClassGenerate)
	require.NoError(t, err)
	assert.Equal(t, 0, backend.Len())
}

func TestReleaseDoesNotConsumeCooldown(t *testing.T) {
	ctx := context.Background()
	l, _ := newMemoryLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Release(ctx))

	d, err := l.Check(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	res, err = l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Commit(ctx))
}

func TestReleaseAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	l, _ := newMemoryLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassAnalyze)
	require.NoError(t, err)
	require.NoError(t, res.Commit(ctx))
	require.NoError(t, res.Release(ctx))

	d, err := l.Check(ctx, "u1", ClassAnalyze)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 30, d.RemainingSeconds())
}

func TestPendingReservationDeniesWithFullCooldown(t *testing.T) {
	ctx := context.Background()
	l, _ := newMemoryLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	defer res.Release(ctx)

	_, err = l.Reserve(ctx, "u1", ClassGenerate)
	rl, ok := apperr.AsRateLimit(err)
	require.True(t, ok)
	assert.Equal(t, 60, rl.RemainingSeconds())
}

func TestClassesAndUsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	l, _ := newMemoryLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Commit(ctx))

	other, err := l.Reserve(ctx, "u1", ClassAnalyze)
	require.NoError(t, err)
	require.NoError(t, other.Commit(ctx))

	second, err := l.Reserve(ctx, "u2", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, second.Commit(ctx))
}

func TestRemainingSecondsStaysWithinCooldown(t *testing.T) {
	ctx := context.Background()
	l, clock := newMemoryLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Commit(ctx))

	for _, step := range []time.Duration{0, 1 * time.Millisecond, 999 * time.Millisecond, 30 * time.Second, 28*time.Second + 500*time.Millisecond} {
		clock.Advance(step)
		d, err := l.Check(ctx, "u1", ClassGenerate)
		require.NoError(t, err)
		require.False(t, d.Allowed)
		secs := d.RemainingSeconds()
		assert.Greater(t, secs, 0)
		assert.LessOrEqual(t, secs, 60)
	}

	clock.Advance(time.Second)
	d, err := l.Check(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.RemainingSeconds())
}

func TestConcurrentReserveAdmitsOne(t *testing.T) {
	ctx := context.Background()
	l, _ := newMemoryLimiter(t)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Reserve(ctx, "u1", ClassGenerate); err == nil {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted.Load())
}

func TestDefaultCooldown(t *testing.T) {
	l := New(NewMemoryBackend(nil), map[Class]time.Duration{ClassAnalyze: 0})
	assert.Equal(t, DefaultCooldown, l.Cooldown(ClassAnalyze))
	assert.Equal(t, DefaultCooldown, l.Cooldown(ClassGenerate))
}

func newRedisLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := New(NewRedisBackend(client, time.Minute), map[Class]time.Duration{
		ClassGenerate: 60 * time.Second,
	})
	return l, mr
}

func TestRedisReserveCommitCooldown(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Commit(ctx))

	_, err = l.Reserve(ctx, "u1", ClassGenerate)
	rl, ok := apperr.AsRateLimit(err)
	require.True(t, ok)
	assert.Equal(t, 60, rl.RemainingSeconds())

	mr.FastForward(45 * time.Second)
	d, err := l.Check(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 15, d.RemainingSeconds())

	mr.FastForward(16 * time.Second)
	res, err = l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Release(ctx))
}

func TestRedisReleaseKeepsCompletedCooldown(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Release(ctx))
	assert.False(t, mr.Exists(Key("u1", ClassGenerate)))

	res, err = l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	require.NoError(t, res.Commit(ctx))

	// Release on the backend must not clear a cooldown marker.
	backend := NewRedisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	require.NoError(t, backend.Release(ctx, Key("u1", ClassGenerate)))
	assert.True(t, mr.Exists(Key("u1", ClassGenerate)))
}

func TestRedisPendingDenied(t *testing.T) {
	ctx := context.Background()
	l, _ := newRedisLimiter(t)

	res, err := l.Reserve(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	defer res.Release(ctx)

	d, err := l.Check(ctx, "u1", ClassGenerate)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 60, d.RemainingSeconds())
}
