// Package ratelimit gates expensive operations with a per-user, per-class cooldown.
// A cooldown starts when an operation completes, so failed attempts cost nothing.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"jobtracker-backend/internal/shared/apperr"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/shared/util"
)

// Class is an operation class with its own cooldown window.
type Class string

const (
	ClassGenerate Class = "generate"
	ClassAnalyze  Class = "analyze"

	// DefaultCooldown applies to classes without a configured window.
	DefaultCooldown = 60 * time.Second
)

// Backend stores in-flight and cooldown markers. Each call reads the clock once.
type Backend interface {
	// TryReserve marks key in flight unless it is already in flight or cooling down.
	// A denial reports the remaining wait.
	TryReserve(ctx context.Context, key string, cooldown time.Duration) (bool, time.Duration, error)
	// Commit replaces the in-flight marker with a cooldown lasting cooldown.
	Commit(ctx context.Context, key string, cooldown time.Duration) error
	// Release drops an in-flight marker without starting a cooldown.
	Release(ctx context.Context, key string) error
	// Remaining reports the wait before key may be reserved, zero when free.
	Remaining(ctx context.Context, key string, cooldown time.Duration) (time.Duration, error)
}

// Decision is the read-only view of a user's limit for one class.
type Decision struct {
	Allowed   bool
	Remaining time.Duration
}

// RemainingSeconds rounds up, so a denied caller never sees zero.
func (d Decision) RemainingSeconds() int {
	if d.Allowed || d.Remaining <= 0 {
		return 0
	}
	return int(math.Ceil(d.Remaining.Seconds()))
}

// Limiter applies per-class cooldowns on top of a Backend.
type Limiter struct {
	backend   Backend
	cooldowns map[Class]time.Duration
}

// New constructs a Limiter. Missing or non-positive cooldowns fall back to DefaultCooldown.
func New(backend Backend, cooldowns map[Class]time.Duration) *Limiter {
	c := map[Class]time.Duration{}
	for class, d := range cooldowns {
		if d > 0 {
			c[class] = d
		}
	}
	return &Limiter{backend: backend, cooldowns: c}
}

// Cooldown returns the window for class.
func (l *Limiter) Cooldown(class Class) time.Duration {
	if d, ok := l.cooldowns[class]; ok {
		return d
	}
	return DefaultCooldown
}

// Reserve atomically checks and reserves class for userID. A denial is an
// *apperr.RateLimitError. The caller must Commit on success or Release on failure.
func (l *Limiter) Reserve(ctx context.Context, userID string, class Class) (*Reservation, error) {
	key := Key(userID, class)
	cooldown := l.Cooldown(class)
	ok, remaining, err := l.backend.TryReserve(ctx, key, cooldown)
	if err != nil {
		return nil, fmt.Errorf("reserve %s: %w", class, err)
	}
	if !ok {
		metrics.IncRateLimitDenied(string(class))
		telemetry.Info("ratelimit.denied", map[string]any{
			"user_id":      userID,
			"operation":    string(class),
			"remaining_ms": remaining.Milliseconds(),
		})
		return nil, &apperr.RateLimitError{Operation: string(class), RetryAfter: remaining}
	}
	return &Reservation{limiter: l, key: key, class: class, cooldown: cooldown}, nil
}

// Check reports whether userID could reserve class now, without reserving.
func (l *Limiter) Check(ctx context.Context, userID string, class Class) (Decision, error) {
	remaining, err := l.backend.Remaining(ctx, Key(userID, class), l.Cooldown(class))
	if err != nil {
		return Decision{}, fmt.Errorf("check %s: %w", class, err)
	}
	if remaining <= 0 {
		return Decision{Allowed: true}, nil
	}
	return Decision{Remaining: remaining}, nil
}

// Key is the backend key for a user and class. User ids are hashed so shared
// backends never hold them in clear text.
func Key(userID string, class Class) string {
	return "ratelimit:" + string(class) + ":" + util.HashUserKey(userID)
}

// Reservation is an in-flight slot. Only the first of Commit or Release has an effect.
type Reservation struct {
	limiter  *Limiter
	key      string
	class    Class
	cooldown time.Duration

	once sync.Once
}

// Commit starts the cooldown. Call it after the operation's result is stored.
func (r *Reservation) Commit(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var err error
	r.once.Do(func() {
		err = r.limiter.backend.Commit(ctx, r.key, r.cooldown)
	})
	return err
}

// Release frees the slot without a cooldown. It is a no-op after Commit.
func (r *Reservation) Release(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var err error
	r.once.Do(func() {
		err = r.limiter.backend.Release(ctx, r.key)
	})
	return err
}

// Class returns the reserved operation class.
func (r *Reservation) Class() Class {
	return r.class
}
