// Package debounce suppresses repeated events for the same key within a
// cooldown window, e.g. a badge held in front of the scanner for a second too
// long.
package debounce

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Debouncer decides whether an event for key may proceed at now. Allow starts
// the cooldown only when it returns true; a call it rejects does not extend
// the window. Release ends the cooldown early for an admitted event the
// caller could not complete.
type Debouncer interface {
	Allow(ctx context.Context, key string, now time.Time) (bool, error)
	Release(ctx context.Context, key string) error
}

// Memory keeps last-seen timestamps in process. Use Redis when more than one
// instance serves the same scanners.
type Memory struct {
	cooldown time.Duration
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

func NewMemory(cooldown time.Duration) *Memory {
	return &Memory{
		cooldown: cooldown,
		lastSeen: make(map[string]time.Time),
	}
}

func (m *Memory) Allow(_ context.Context, key string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.lastSeen[key]; ok && now.Sub(last) < m.cooldown {
		return false, nil
	}
	m.lastSeen[key] = now
	return true, nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lastSeen, key)
	return nil
}

// Sweep forgets keys whose cooldown has passed and returns how many were dropped.
func (m *Memory) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for key, last := range m.lastSeen {
		if now.Sub(last) >= m.cooldown {
			delete(m.lastSeen, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of keys currently inside their cooldown or not yet swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lastSeen)
}

// Redis shares the cooldown between instances with SET NX and a TTL.
type Redis struct {
	client   redis.Cmdable
	cooldown time.Duration
	prefix   string
}

func NewRedis(client redis.Cmdable, cooldown time.Duration, prefix string) *Redis {
	return &Redis{
		client:   client,
		cooldown: cooldown,
		prefix:   prefix,
	}
}

// Key returns the Redis key used for key.
func (r *Redis) Key(key string) string {
	return r.prefix + key
}

func (r *Redis) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.Key(key), strconv.FormatInt(now.UnixMilli(), 10), r.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("debounce %s: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.Key(key)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
