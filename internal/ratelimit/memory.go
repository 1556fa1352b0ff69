package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	inFlight    bool
	completedAt time.Time
}

// MemoryBackend keeps markers in process memory. It suits a single replica.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryBackend constructs a MemoryBackend; now defaults to time.Now.
func NewMemoryBackend(now func() time.Time) *MemoryBackend {
	if now == nil {
		now = time.Now
	}
	return &MemoryBackend{entries: make(map[string]memoryEntry), now: now}
}

func (m *MemoryBackend) TryReserve(ctx context.Context, key string, cooldown time.Duration) (bool, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if remaining := m.remainingLocked(key, now, cooldown); remaining > 0 {
		return false, remaining, nil
	}
	m.entries[key] = memoryEntry{inFlight: true}
	return true, 0, nil
}

func (m *MemoryBackend) Commit(ctx context.Context, key string, cooldown time.Duration) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{completedAt: now}
	return nil
}

func (m *MemoryBackend) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if e.completedAt.IsZero() {
		delete(m.entries, key)
		return nil
	}
	e.inFlight = false
	m.entries[key] = e
	return nil
}

func (m *MemoryBackend) Remaining(ctx context.Context, key string, cooldown time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingLocked(key, now, cooldown), nil
}

// remainingLocked evicts entries whose cooldown has passed with nothing in flight.
func (m *MemoryBackend) remainingLocked(key string, now time.Time, cooldown time.Duration) time.Duration {
	e, ok := m.entries[key]
	if !ok {
		return 0
	}
	remaining := e.remaining(now, cooldown)
	if remaining == 0 {
		delete(m.entries, key)
	}
	return remaining
}

// Len reports the number of tracked keys.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// remaining reports a pending reservation as a full cooldown.
func (e memoryEntry) remaining(now time.Time, cooldown time.Duration) time.Duration {
	if e.inFlight {
		return cooldown
	}
	if e.completedAt.IsZero() {
		return 0
	}
	if elapsed := now.Sub(e.completedAt); elapsed < cooldown {
		return cooldown - elapsed
	}
	return 0
}

var _ Backend = (*MemoryBackend)(nil)
