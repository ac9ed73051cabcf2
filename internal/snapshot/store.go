// Package snapshot provides the session-cache store behind search state
// restoration: a small key-value interface with a Redis implementation for
// deployments and an in-memory implementation for tests and single-node runs.
package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no snapshot exists under a key.
var ErrNotFound = errors.New("snapshot not found")

// ErrTooLarge is returned by stores with a value size limit.
var ErrTooLarge = errors.New("snapshot exceeds store limit")

// Store is the injected session-cache interface. A zero TTL means the entry
// does not expire.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// RedisStore keeps snapshots in Redis; expiry rides on the key TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an established Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// ─── Memory ──────────────────────────────────────────────────────────────────

type entry struct {
	value     []byte
	expiresAt time.Time // zero means never
}

// MemoryStore is a process-local Store. MaxValueBytes, when positive, caps
// entry size the way a browser session store caps its quota; oversized Sets
// fail with ErrTooLarge so callers exercise their degrade path.
type MemoryStore struct {
	MaxValueBytes int

	mu sync.Mutex
	m  map[string]entry
}

// NewMemoryStore returns an empty MemoryStore with no size limit.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.m, key)
		return nil, ErrNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if s.MaxValueBytes > 0 && len(value) > s.MaxValueBytes {
		return ErrTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m == nil {
		s.m = make(map[string]entry)
	}
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	s.m[key] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
// Called by the janitor; Get also lazily drops expired entries it touches.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range s.m {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.m, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
