package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnswerCache memoizes complete generated answers against the exact query
// text, scoped per chain identity. Only finished answers are ever stored; a
// cached answer is delivered as one unit, not re-streamed.
type AnswerCache interface {
	// Get returns the cached answer for (chain, query) and whether it was found
	Get(ctx context.Context, chain, query string) (string, bool, error)

	// Put stores a complete answer for (chain, query)
	Put(ctx context.Context, chain, query, answer string) error
}

func answerKey(chain, query string) string {
	// exact query text, no normalization
	return fmt.Sprintf("answer:%s:%s", chain, query)
}

// RedisAnswerCache is the Redis-backed answer cache. Entries expire after a
// configurable TTL so stale answers age out after re-ingestions.
type RedisAnswerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAnswerCache creates a Redis-backed answer cache
func NewRedisAnswerCache(client *redis.Client, ttl time.Duration) *RedisAnswerCache {
	return &RedisAnswerCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached answer, if any
func (c *RedisAnswerCache) Get(ctx context.Context, chain, query string) (string, bool, error) {
	val, err := c.client.Get(ctx, answerKey(chain, query)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache read failed: %w", err)
	}
	return val, true, nil
}

// Put stores a complete answer with the configured TTL
func (c *RedisAnswerCache) Put(ctx context.Context, chain, query, answer string) error {
	if err := c.client.Set(ctx, answerKey(chain, query), answer, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// MemoryAnswerCache is an in-process answer cache with TTL eviction, used in
// tests and when no Redis is configured
type MemoryAnswerCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	ttl     time.Duration
}

type memoryCacheEntry struct {
	answer    string
	expiresAt time.Time
}

// NewMemoryAnswerCache creates an in-memory answer cache
func NewMemoryAnswerCache(ttl time.Duration) *MemoryAnswerCache {
	return &MemoryAnswerCache{
		entries: make(map[string]memoryCacheEntry),
		ttl:     ttl,
	}
}

// Get returns the cached answer, if present and not expired
func (c *MemoryAnswerCache) Get(ctx context.Context, chain, query string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[answerKey(chain, query)]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.answer, true, nil
}

// Put stores a complete answer
func (c *MemoryAnswerCache) Put(ctx context.Context, chain, query, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[answerKey(chain, query)] = memoryCacheEntry{
		answer:    answer,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}
