// Package cooldown enforces a fixed wait between repeated actions, such as
// resending a verification code. It is a countdown, not a retry mechanism.
package cooldown

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter grants an action for key at most once per window.
type Limiter interface {
	// Acquire starts the window for key. If a window is still running it
	// returns false and the time left.
	Acquire(ctx context.Context, key string) (bool, time.Duration, error)
	// Remaining reports the time left for key, zero if none.
	Remaining(ctx context.Context, key string) (time.Duration, error)
	// Reset ends the window for key early.
	Reset(ctx context.Context, key string) error
}

// ==============================================
// IN-MEMORY
// ==============================================

type Memory struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	expires map[string]time.Time
}

func NewMemory(window time.Duration) *Memory {
	return &Memory{window: window, now: time.Now, expires: make(map[string]time.Time)}
}

// WithClock replaces the time source; used by tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Acquire(ctx context.Context, key string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.expires[key]; ok && now.Before(until) {
		return false, until.Sub(now), nil
	}
	m.expires[key] = now.Add(m.window)
	return true, 0, nil
}

func (m *Memory) Remaining(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.expires[key]
	if !ok {
		return 0, nil
	}
	left := until.Sub(m.now())
	if left <= 0 {
		delete(m.expires, key)
		return 0, nil
	}
	return left, nil
}

func (m *Memory) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, key)
	return nil
}

// ==============================================
// REDIS
// ==============================================

// Redis shares windows across service instances.
type Redis struct {
	client *redis.Client
	window time.Duration
	prefix string
}

func NewRedis(client *redis.Client, window time.Duration) *Redis {
	return &Redis{client: client, window: window, prefix: "cooldown:"}
}

func (r *Redis) Acquire(ctx context.Context, key string) (bool, time.Duration, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, 1, r.window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to set cooldown: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	left, err := r.Remaining(ctx, key)
	if err != nil {
		return false, 0, err
	}
	return false, left, nil
}

func (r *Redis) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.PTTL(ctx, r.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read cooldown: %w", err)
	}
	// -2: no key, -1: no expiry
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset cooldown: %w", err)
	}
	return nil
}
